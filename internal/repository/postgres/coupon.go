package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/repository"
)

type couponRepository struct {
	db DBTX
}

func NewCouponRepository(db DBTX) repository.CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) Create(ctx context.Context, c *domain.Coupon) error {
	query := `INSERT INTO coupons (code, discount_type, value, max_discount_paise, valid_from, valid_to,
	                               usage_limit, per_user_limit, min_order_paise, active, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW()) RETURNING id, created_on`
	err := r.db.QueryRowContext(ctx, query,
		c.Code, c.Type, c.Value, c.MaxDiscountPaise, c.ValidFrom, c.ValidTo,
		c.UsageLimit, c.PerUserLimit, c.MinOrderPaise, c.Active).
		Scan(&c.ID, &c.CreatedOn)
	if isUniqueViolation(err) {
		return &domain.ConflictError{Reason: "coupon code already exists: " + c.Code}
	}
	return err
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	query := `SELECT id, code, discount_type, value, max_discount_paise, valid_from, valid_to,
	                 usage_limit, per_user_limit, min_order_paise, active, created_on
	          FROM coupons WHERE code = $1`
	var c domain.Coupon
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&c.ID, &c.Code, &c.Type, &c.Value, &c.MaxDiscountPaise, &c.ValidFrom, &c.ValidTo,
		&c.UsageLimit, &c.PerUserLimit, &c.MinOrderPaise, &c.Active, &c.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "coupon", Key: code}
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *couponRepository) UsageCount(ctx context.Context, couponID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM coupon_usages WHERE coupon_id = $1`, couponID).Scan(&count)
	return count, err
}

func (r *couponRepository) UserUsageCount(ctx context.Context, couponID, userID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM coupon_usages WHERE coupon_id = $1 AND user_id = $2`, couponID, userID).Scan(&count)
	return count, err
}

func (r *couponRepository) RecordUsage(ctx context.Context, usage *domain.CouponUsage) error {
	query := `INSERT INTO coupon_usages (coupon_id, user_id, order_id, used_on)
	          VALUES ($1, $2, $3, NOW()) RETURNING id, used_on`
	return r.db.QueryRowContext(ctx, query, usage.CouponID, usage.UserID, usage.OrderID).
		Scan(&usage.ID, &usage.UsedOn)
}
