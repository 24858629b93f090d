package domain

import "time"

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	DiscountTypeFixed      DiscountType = "FIXED"
)

type Coupon struct {
	ID   int64        `json:"id"`
	Code string       `json:"code"`
	Type DiscountType `json:"type"`
	// Value is a percentage for PERCENTAGE coupons and a paise amount
	// for FIXED coupons.
	Value            int64     `json:"value"`
	MaxDiscountPaise int64     `json:"max_discount_paise"` // 0 = no cap
	ValidFrom        time.Time `json:"valid_from"`
	ValidTo          time.Time `json:"valid_to"`
	UsageLimit       int32     `json:"usage_limit"`    // 0 = unlimited
	PerUserLimit     int32     `json:"per_user_limit"` // 0 = unlimited
	MinOrderPaise    int64     `json:"min_order_paise"`
	Active           bool      `json:"active"`
	CreatedOn        time.Time `json:"created_on"`
}

// CouponUsage is an append-only consumption record, used to enforce the
// global and per-user limits.
type CouponUsage struct {
	ID       int64     `json:"id"`
	CouponID int64     `json:"coupon_id"`
	UserID   int64     `json:"user_id"`
	OrderID  int64     `json:"order_id"`
	UsedOn   time.Time `json:"used_on"`
}
