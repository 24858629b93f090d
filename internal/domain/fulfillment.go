package domain

import "time"

// Pickup is the one-to-one fulfillment record created when a vendor
// hands the order over.
type Pickup struct {
	ID         int64     `json:"id"`
	OrderID    int64     `json:"order_id"`
	PickedUpOn time.Time `json:"picked_up_on"`
	Note       string    `json:"note"`
}

type ItemCondition string

const (
	ItemConditionGood    ItemCondition = "GOOD"
	ItemConditionDamaged ItemCondition = "DAMAGED"
)

// ReturnItem records the condition of one returned product line.
type ReturnItem struct {
	ID        int64         `json:"id"`
	ReturnID  int64         `json:"return_id"`
	ProductID int64         `json:"product_id"`
	Type      LineType      `json:"type"`
	Quantity  int32         `json:"quantity"`
	Condition ItemCondition `json:"condition"`
}

// Return is the one-to-one record of an order coming back, with the
// fees assessed at that moment.
type Return struct {
	ID              int64        `json:"id"`
	OrderID         int64        `json:"order_id"`
	ReturnedOn      time.Time    `json:"returned_on"`
	LateDays        int32        `json:"late_days"`
	LateFeePaise    int64        `json:"late_fee_paise"`
	DamageFeePaise  int64        `json:"damage_fee_paise"`
	FeeInvoiceID    *int64       `json:"fee_invoice_id,omitempty"`
	Items           []ReturnItem `json:"items"`
}
