package domain

import "time"

type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusPickedUp  OrderStatus = "PICKED_UP"
	OrderStatusReturned  OrderStatus = "RETURNED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderLine is a snapshot of a quotation line taken at confirmation.
// It is never repriced.
type OrderLine struct {
	ID             int64         `json:"id"`
	OrderID        int64         `json:"order_id"`
	ProductID      int64         `json:"product_id"`
	Type           LineType      `json:"type"`
	Quantity       int32         `json:"quantity"`
	UnitPricePaise int64         `json:"unit_price_paise"`
	TotalPaise     int64         `json:"total_paise"`
	Window         *RentalWindow `json:"window,omitempty"`
}

// Order is the confirmed, immutable-intent transaction derived from a
// quotation.
//
// DailyRatePaise and RentalDays are contracted-rate snapshots taken at
// confirmation time; late fees always use them rather than recomputing
// from whatever the rental window looks like at return time.
type Order struct {
	ID              int64         `json:"id"`
	Number          string        `json:"number"`
	QuotationID     int64         `json:"quotation_id"`
	CustomerID      int64         `json:"customer_id"`
	VendorID        int64         `json:"vendor_id"`
	Status          OrderStatus   `json:"status"`
	SubtotalPaise   int64         `json:"subtotal_paise"`
	TaxPaise        int64         `json:"tax_paise"`
	DiscountPaise   int64         `json:"discount_paise"`
	TotalPaise      int64         `json:"total_paise"`
	AmountPaidPaise int64         `json:"amount_paid_paise"`
	DailyRatePaise  int64         `json:"daily_rate_paise"`
	RentalDays      int32         `json:"rental_days"`
	Window          *RentalWindow `json:"window,omitempty"`
	Lines           []OrderLine   `json:"lines"`
	Reservations    []Reservation `json:"reservations,omitempty"`
	InvoiceID       *int64        `json:"invoice_id,omitempty"`
	CreatedOn       time.Time     `json:"created_on"`
	UpdatedOn       time.Time     `json:"updated_on"`
}

// CanTransitionTo enforces the one-directional lifecycle
// CONFIRMED -> PICKED_UP -> RETURNED, with CANCELLED reachable from
// CONFIRMED or PICKED_UP.
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	switch next {
	case OrderStatusPickedUp:
		return o.Status == OrderStatusConfirmed
	case OrderStatusReturned:
		// CONFIRMED is tolerated so a skipped pickup step does not
		// wedge the order.
		return o.Status == OrderStatusPickedUp || o.Status == OrderStatusConfirmed
	case OrderStatusCancelled:
		return o.Status == OrderStatusConfirmed || o.Status == OrderStatusPickedUp
	}
	return false
}

// Reservation withholds the ordered quantity from availability for the
// line's rental period. Deleted once the order reaches RETURNED.
type Reservation struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int32     `json:"quantity"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	CreatedOn time.Time `json:"created_on"`
}
