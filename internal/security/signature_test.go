package security

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rentkart-backend/internal/domain"
)

func sampleConfirmation() *domain.GatewayConfirmation {
	return &domain.GatewayConfirmation{
		TransactionID: "txn-12345",
		Reference:     "9f0cdd8a-1f3a-4a2e-9c70-2d4b6e8a1f00",
		AmountPaise:   76700,
		Status:        "SUCCESS",
	}
}

func TestCallbackVerifier(t *testing.T) {
	verifier := NewCallbackVerifier("shared-callback-secret")

	t.Run("SignedConfirmationVerifies", func(t *testing.T) {
		conf := sampleConfirmation()
		conf.Signature = verifier.Sign(conf)
		assert.True(t, verifier.Verify(conf))
	})

	t.Run("TamperedAmountFails", func(t *testing.T) {
		conf := sampleConfirmation()
		conf.Signature = verifier.Sign(conf)
		conf.AmountPaise = 100
		assert.False(t, verifier.Verify(conf))
	})

	t.Run("TamperedStatusFails", func(t *testing.T) {
		conf := sampleConfirmation()
		conf.Signature = verifier.Sign(conf)
		conf.Status = "FAILED"
		assert.False(t, verifier.Verify(conf))
	})

	t.Run("WrongSecretFails", func(t *testing.T) {
		conf := sampleConfirmation()
		conf.Signature = NewCallbackVerifier("some-other-secret").Sign(conf)
		assert.False(t, verifier.Verify(conf))
	})

	t.Run("MalformedHexFails", func(t *testing.T) {
		conf := sampleConfirmation()
		conf.Signature = "not hex at all"
		assert.False(t, verifier.Verify(conf))
	})

	t.Run("EmptySignatureFails", func(t *testing.T) {
		conf := sampleConfirmation()
		assert.False(t, verifier.Verify(conf))
	})
}
