package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rentkart-backend/internal/domain"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

func validCoupon() *domain.Coupon {
	return &domain.Coupon{
		ID:            7,
		Code:          "SAVE10",
		Type:          domain.DiscountTypePercentage,
		Value:         10,
		ValidFrom:     fixedNow().Add(-24 * time.Hour),
		ValidTo:       fixedNow().Add(24 * time.Hour),
		UsageLimit:    100,
		PerUserLimit:  2,
		MinOrderPaise: 10000,
		Active:        true,
	}
}

func newTestCouponService(repo *MockCouponRepo) *couponService {
	return &couponService{couponRepo: repo, now: fixedNow}
}

func TestCouponService_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("HappyPath", func(t *testing.T) {
		repo := new(MockCouponRepo)
		svc := newTestCouponService(repo)
		repo.On("GetByCode", ctx, "SAVE10").Return(validCoupon(), nil)
		repo.On("UsageCount", ctx, int64(7)).Return(int64(5), nil)
		repo.On("UserUsageCount", ctx, int64(7), int64(42)).Return(int64(0), nil)

		coupon, discount, err := svc.Validate(ctx, "SAVE10", 65000, 42)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), coupon.ID)
		assert.Equal(t, int64(6500), discount)
		repo.AssertExpectations(t)
	})

	t.Run("Inactive", func(t *testing.T) {
		repo := new(MockCouponRepo)
		svc := newTestCouponService(repo)
		c := validCoupon()
		c.Active = false
		repo.On("GetByCode", ctx, "SAVE10").Return(c, nil)

		_, _, err := svc.Validate(ctx, "SAVE10", 65000, 42)
		assert.ErrorIs(t, err, domain.ErrCouponInactive)
	})

	t.Run("NotYetValid", func(t *testing.T) {
		repo := new(MockCouponRepo)
		svc := newTestCouponService(repo)
		c := validCoupon()
		c.ValidFrom = fixedNow().Add(time.Hour)
		repo.On("GetByCode", ctx, "SAVE10").Return(c, nil)

		_, _, err := svc.Validate(ctx, "SAVE10", 65000, 42)
		assert.ErrorIs(t, err, domain.ErrCouponNotYetValid)
	})

	t.Run("Expired", func(t *testing.T) {
		repo := new(MockCouponRepo)
		svc := newTestCouponService(repo)
		c := validCoupon()
		c.ValidTo = fixedNow().Add(-time.Hour)
		repo.On("GetByCode", ctx, "SAVE10").Return(c, nil)

		_, _, err := svc.Validate(ctx, "SAVE10", 65000, 42)
		assert.ErrorIs(t, err, domain.ErrCouponExpired)
	})

	t.Run("UsageLimitExhausted", func(t *testing.T) {
		repo := new(MockCouponRepo)
		svc := newTestCouponService(repo)
		repo.On("GetByCode", ctx, "SAVE10").Return(validCoupon(), nil)
		repo.On("UsageCount", ctx, int64(7)).Return(int64(100), nil)

		_, _, err := svc.Validate(ctx, "SAVE10", 65000, 42)
		assert.ErrorIs(t, err, domain.ErrCouponUsageLimit)
	})

	t.Run("PerUserLimitExhausted", func(t *testing.T) {
		repo := new(MockCouponRepo)
		svc := newTestCouponService(repo)
		repo.On("GetByCode", ctx, "SAVE10").Return(validCoupon(), nil)
		repo.On("UsageCount", ctx, int64(7)).Return(int64(5), nil)
		repo.On("UserUsageCount", ctx, int64(7), int64(42)).Return(int64(2), nil)

		_, _, err := svc.Validate(ctx, "SAVE10", 65000, 42)
		assert.ErrorIs(t, err, domain.ErrCouponPerUserLimit)
	})

	t.Run("BelowMinimumOrder", func(t *testing.T) {
		repo := new(MockCouponRepo)
		svc := newTestCouponService(repo)
		repo.On("GetByCode", ctx, "SAVE10").Return(validCoupon(), nil)
		repo.On("UsageCount", ctx, int64(7)).Return(int64(5), nil)
		repo.On("UserUsageCount", ctx, int64(7), int64(42)).Return(int64(0), nil)

		_, _, err := svc.Validate(ctx, "SAVE10", 9999, 42)
		assert.ErrorIs(t, err, domain.ErrCouponBelowMinimum)
	})

	t.Run("UnknownCode", func(t *testing.T) {
		repo := new(MockCouponRepo)
		svc := newTestCouponService(repo)
		repo.On("GetByCode", ctx, "NOPE").Return(nil, &domain.NotFoundError{Entity: "coupon", Key: "NOPE"})

		_, _, err := svc.Validate(ctx, "NOPE", 65000, 42)
		var notFound *domain.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestDiscountFor(t *testing.T) {
	t.Run("PercentageCapped", func(t *testing.T) {
		c := validCoupon()
		c.MaxDiscountPaise = 5000
		assert.Equal(t, int64(5000), discountFor(c, 65000))
	})

	t.Run("PercentageUncapped", func(t *testing.T) {
		assert.Equal(t, int64(6500), discountFor(validCoupon(), 65000))
	})

	t.Run("FixedClampedToOrderAmount", func(t *testing.T) {
		c := &domain.Coupon{Type: domain.DiscountTypeFixed, Value: 50000}
		assert.Equal(t, int64(50000), discountFor(c, 65000))
		// A fixed coupon larger than the order never goes negative.
		assert.Equal(t, int64(30000), discountFor(c, 30000))
	})
}
