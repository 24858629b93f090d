package domain

import "time"

type MovementType string

const (
	MovementTypeReserve    MovementType = "RESERVE"
	MovementTypeReturn     MovementType = "RETURN"
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
)

// StockMovement is an append-only journal entry. The on-hand quantity
// of a product is always the running sum of its movement deltas; a
// movement is never mutated or deleted after creation.
type StockMovement struct {
	ID          int64        `json:"id"`
	ProductID   int64        `json:"product_id"`
	Delta       int64        `json:"delta"` // negative for reservation, positive for restore
	Type        MovementType `json:"type"`
	ReferenceID *int64       `json:"reference_id,omitempty"` // originating order or return
	Note        string       `json:"note"`
	CreatedOn   time.Time    `json:"created_on"`
}
