package http

import (
	"net/http"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/service"
)

type PaymentHandler struct {
	payments service.PaymentService
}

func NewPaymentHandler(payments service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type createIntentRequest struct {
	OrderID     *int64 `json:"order_id,omitempty"`
	InvoiceID   *int64 `json:"invoice_id,omitempty"`
	AmountPaise int64  `json:"amount_paise"`
}

type createIntentResponse struct {
	Payment     *domain.Payment `json:"payment"`
	CheckoutURL string          `json:"checkout_url"`
}

func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r)
	var req createIntentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	payment, checkoutURL, err := h.payments.CreateIntent(r.Context(), principal, req.OrderID, req.InvoiceID, req.AmountPaise)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createIntentResponse{Payment: payment, CheckoutURL: checkoutURL})
}

func (h *PaymentHandler) ListForOrder(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r)
	orderID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	payments, err := h.payments.ListForOrder(r.Context(), principal, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

// Callback is unauthenticated; the confirmation carries its own
// HMAC signature.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	var conf domain.GatewayConfirmation
	if err := decodeBody(r, &conf); err != nil {
		writeError(w, err)
		return
	}
	payment, err := h.payments.HandleCallback(r.Context(), &conf)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}
