package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"rentkart-backend/internal/domain"
)

// CallbackVerifier authenticates gateway confirmations. The gateway
// signs the pipe-joined canonical fields with HMAC-SHA256 over the
// shared secret; comparison is constant-time.
type CallbackVerifier struct {
	secret []byte
}

func NewCallbackVerifier(secret string) *CallbackVerifier {
	return &CallbackVerifier{secret: []byte(secret)}
}

// canonical is the exact byte string both sides sign.
func canonical(conf *domain.GatewayConfirmation) string {
	return strings.Join([]string{
		conf.TransactionID,
		conf.Reference,
		fmt.Sprintf("%d", conf.AmountPaise),
		conf.Status,
	}, "|")
}

// Sign computes the signature for a confirmation. Used by tests and by
// sandbox tooling that emulates the gateway.
func (v *CallbackVerifier) Sign(conf *domain.GatewayConfirmation) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(canonical(conf)))
	return hex.EncodeToString(mac.Sum(nil))
}

func (v *CallbackVerifier) Verify(conf *domain.GatewayConfirmation) bool {
	expected, err := hex.DecodeString(conf.Signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(canonical(conf)))
	return hmac.Equal(mac.Sum(nil), expected)
}
