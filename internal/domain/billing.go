package domain

import "time"

type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "DRAFT"
	InvoiceStatusPartial InvoiceStatus = "PARTIAL"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
)

// Invoice aggregates the amount owed for an order, or for a standalone
// fee assessed at return time.
type Invoice struct {
	ID              int64         `json:"id"`
	Number          string        `json:"number"`
	OrderID         *int64        `json:"order_id,omitempty"`
	SubtotalPaise   int64         `json:"subtotal_paise"`
	TaxPaise        int64         `json:"tax_paise"`
	TotalPaise      int64         `json:"total_paise"`
	AmountPaidPaise int64         `json:"amount_paid_paise"`
	Status          InvoiceStatus `json:"status"`
	CreatedOn       time.Time     `json:"created_on"`
	UpdatedOn       time.Time     `json:"updated_on"`
}

// DeriveStatus recomputes the paid status from the amounts. PAID wins
// when amount paid covers the total, PARTIAL when anything has been
// received, DRAFT otherwise.
func (i *Invoice) DeriveStatus() InvoiceStatus {
	switch {
	case i.AmountPaidPaise >= i.TotalPaise:
		return InvoiceStatusPaid
	case i.AmountPaidPaise > 0:
		return InvoiceStatusPartial
	default:
		return InvoiceStatusDraft
	}
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// Payment is an append-only record of money received. TransactionID is
// the gateway's transaction id and doubles as the idempotency key: a
// replayed confirmation with the same id is never applied twice.
type Payment struct {
	ID            int64         `json:"id"`
	Reference     string        `json:"reference"` // our side, uuid
	TransactionID string        `json:"transaction_id"`
	OrderID       *int64        `json:"order_id,omitempty"`
	InvoiceID     *int64        `json:"invoice_id,omitempty"`
	AmountPaise   int64         `json:"amount_paise"`
	Status        PaymentStatus `json:"status"`
	CreatedOn     time.Time     `json:"created_on"`
}

// GatewayConfirmation is the signed callback payload the payment
// gateway posts after a customer completes payment.
type GatewayConfirmation struct {
	TransactionID string `json:"transaction_id"`
	Reference     string `json:"reference"`
	AmountPaise   int64  `json:"amount_paise"`
	Status        string `json:"status"`
	Signature     string `json:"signature"`
}
