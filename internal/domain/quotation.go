package domain

import "time"

type QuotationStatus string

const (
	QuotationStatusDraft     QuotationStatus = "DRAFT"
	QuotationStatusConfirmed QuotationStatus = "CONFIRMED"
	QuotationStatusExpired   QuotationStatus = "EXPIRED"
	QuotationStatusCancelled QuotationStatus = "CANCELLED"
)

type LineType string

const (
	LineTypeRental LineType = "RENTAL"
	LineTypeSale   LineType = "SALE"
)

// RentalWindow is the period a rental line is priced and reserved over.
type RentalWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// QuotationLine belongs to exactly one quotation. The unit price is
// captured when the line is added and never re-read from the product.
type QuotationLine struct {
	ID             int64         `json:"id"`
	QuotationID    int64         `json:"quotation_id"`
	ProductID      int64         `json:"product_id"`
	Type           LineType      `json:"type"`
	Quantity       int32         `json:"quantity"`
	UnitPricePaise int64         `json:"unit_price_paise"`
	TotalPaise     int64         `json:"total_paise"`
	Window         *RentalWindow `json:"window,omitempty"` // nil for SALE lines
	CreatedOn      time.Time     `json:"created_on"`
}

// Quotation is the mutable cart: a draft price quotation. A customer
// holds at most one in DRAFT status at a time.
type Quotation struct {
	ID            int64           `json:"id"`
	CustomerID    int64           `json:"customer_id"`
	Status        QuotationStatus `json:"status"`
	Window        *RentalWindow   `json:"window,omitempty"` // default for undated rental lines
	Lines         []QuotationLine `json:"lines"`
	SubtotalPaise int64           `json:"subtotal_paise"`
	TaxPaise      int64           `json:"tax_paise"`
	TotalPaise    int64           `json:"total_paise"`
	CouponCode    string          `json:"coupon_code,omitempty"`
	DiscountPaise int64           `json:"discount_paise"`
	ExpiresOn     time.Time       `json:"expires_on"`
	CreatedOn     time.Time       `json:"created_on"`
	UpdatedOn     time.Time       `json:"updated_on"`
}

// PayableTotalPaise is the tax-inclusive total after the coupon
// discount, clamped at zero.
func (q *Quotation) PayableTotalPaise() int64 {
	payable := q.TotalPaise - q.DiscountPaise
	if payable < 0 {
		payable = 0
	}
	return payable
}
