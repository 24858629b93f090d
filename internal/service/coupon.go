package service

import (
	"context"
	"time"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/pricing"
	"rentkart-backend/internal/repository"
)

type couponService struct {
	couponRepo repository.CouponRepository
	now        func() time.Time
}

func NewCouponService(couponRepo repository.CouponRepository) CouponService {
	return &couponService{couponRepo: couponRepo, now: time.Now}
}

func (s *couponService) Validate(ctx context.Context, code string, orderAmountPaise int64, userID int64) (*domain.Coupon, int64, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, 0, err
	}

	// Check order is fixed: the first failing constraint names the
	// error the customer sees.
	if !coupon.Active {
		return nil, 0, domain.ErrCouponInactive
	}
	now := s.now()
	if now.Before(coupon.ValidFrom) {
		return nil, 0, domain.ErrCouponNotYetValid
	}
	if now.After(coupon.ValidTo) {
		return nil, 0, domain.ErrCouponExpired
	}
	if coupon.UsageLimit > 0 {
		used, err := s.couponRepo.UsageCount(ctx, coupon.ID)
		if err != nil {
			return nil, 0, err
		}
		if used >= int64(coupon.UsageLimit) {
			return nil, 0, domain.ErrCouponUsageLimit
		}
	}
	if coupon.PerUserLimit > 0 {
		used, err := s.couponRepo.UserUsageCount(ctx, coupon.ID, userID)
		if err != nil {
			return nil, 0, err
		}
		if used >= int64(coupon.PerUserLimit) {
			return nil, 0, domain.ErrCouponPerUserLimit
		}
	}
	if orderAmountPaise < coupon.MinOrderPaise {
		return nil, 0, domain.ErrCouponBelowMinimum
	}

	return coupon, discountFor(coupon, orderAmountPaise), nil
}

// discountFor computes the raw discount and clamps it so a coupon can
// never produce a negative payable amount.
func discountFor(coupon *domain.Coupon, orderAmountPaise int64) int64 {
	var discount int64
	switch coupon.Type {
	case domain.DiscountTypePercentage:
		discount = pricing.Percent(orderAmountPaise, coupon.Value)
		if coupon.MaxDiscountPaise > 0 && discount > coupon.MaxDiscountPaise {
			discount = coupon.MaxDiscountPaise
		}
	case domain.DiscountTypeFixed:
		discount = coupon.Value
	}
	if discount > orderAmountPaise {
		discount = orderAmountPaise
	}
	return discount
}
