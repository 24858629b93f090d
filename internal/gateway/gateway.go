// Package gateway holds the HTTP client for the hosted payment page
// provider. The provider exposes a single create endpoint that returns
// a checkout URL; settlement comes back asynchronously on a signed
// callback.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rentkart-backend/internal/logger"
)

type Client struct {
	baseURL     string
	storeID     string
	authKey     string
	callbackURL string
	httpClient  *http.Client
}

func NewClient(baseURL, storeID, authKey, callbackURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     baseURL,
		storeID:     storeID,
		authKey:     authKey,
		callbackURL: callbackURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type createRequest struct {
	Method  string      `json:"method"`
	Store   string      `json:"store"`
	AuthKey string      `json:"authkey"`
	Order   orderDetail `json:"order"`
	Return  returnURLs  `json:"return"`
}

type orderDetail struct {
	Reference   string `json:"reference"`
	AmountPaise int64  `json:"amount_paise"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

type returnURLs struct {
	Callback string `json:"callback"`
}

type createResponse struct {
	Order struct {
		Ref string `json:"ref"`
		URL string `json:"url"`
	} `json:"order"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// CreateIntent registers a checkout with the provider and returns the
// hosted payment page URL.
func (c *Client) CreateIntent(ctx context.Context, reference string, amountPaise int64, description string) (string, error) {
	payload := createRequest{
		Method:  "create",
		Store:   c.storeID,
		AuthKey: c.authKey,
		Order: orderDetail{
			Reference:   reference,
			AmountPaise: amountPaise,
			Currency:    "INR",
			Description: description,
		},
		Return: returnURLs{Callback: c.callbackURL},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	logger.ExternalServiceCall("payment_gateway", "create_intent", "reference", reference)
	resp, err := c.httpClient.Do(req)
	logger.ExternalServiceResult("payment_gateway", "create_intent", err, "reference", reference)
	if err != nil {
		return "", fmt.Errorf("reach gateway: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway returned %d: %s", resp.StatusCode, respBody)
	}

	var parsed createResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parse gateway response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("gateway error %s: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if parsed.Order.URL == "" {
		return "", fmt.Errorf("gateway returned empty checkout url")
	}
	return parsed.Order.URL, nil
}
