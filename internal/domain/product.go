package domain

import "time"

type RentalUnit string

const (
	RentalUnitHour  RentalUnit = "HOUR"
	RentalUnitDay   RentalUnit = "DAY"
	RentalUnitWeek  RentalUnit = "WEEK"
	RentalUnitMonth RentalUnit = "MONTH"
)

// RentalTier is one configured rental price point for a product.
type RentalTier struct {
	ID         int64      `json:"id"`
	ProductID  int64      `json:"product_id"`
	Unit       RentalUnit `json:"unit"`
	Duration   int32      `json:"duration"`
	PricePaise int64      `json:"price_paise"`
}

type Product struct {
	ID       int64  `json:"id"`
	VendorID int64  `json:"vendor_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	// SalePricePaise is 0 when the product is rental-only.
	SalePricePaise int64        `json:"sale_price_paise"`
	Tiers          []RentalTier `json:"tiers,omitempty"`
	OnHand         int64        `json:"on_hand"`
	DeletedOn      *time.Time   `json:"deleted_on,omitempty"`
	CreatedOn      time.Time    `json:"created_on"`
	UpdatedOn      time.Time    `json:"updated_on"`
}

func (p *Product) IsDeleted() bool { return p.DeletedOn != nil }
