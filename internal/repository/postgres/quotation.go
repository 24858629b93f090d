package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/repository"
)

type quotationRepository struct {
	db DBTX
}

func NewQuotationRepository(db DBTX) repository.QuotationRepository {
	return &quotationRepository{db: db}
}

func (r *quotationRepository) Create(ctx context.Context, q *domain.Quotation) error {
	query := `INSERT INTO quotations
	            (customer_id, status, window_start, window_end, subtotal_paise, tax_paise, total_paise,
	             coupon_code, discount_paise, expires_on, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	          RETURNING id, created_on, updated_on`
	start, end := windowBounds(q.Window)
	err := r.db.QueryRowContext(ctx, query,
		q.CustomerID, q.Status, start, end, q.SubtotalPaise, q.TaxPaise, q.TotalPaise,
		q.CouponCode, q.DiscountPaise, q.ExpiresOn).
		Scan(&q.ID, &q.CreatedOn, &q.UpdatedOn)
	if isUniqueViolation(err) {
		// Partial unique index: one DRAFT quotation per customer.
		return &domain.ConflictError{Reason: "customer already has a draft quotation"}
	}
	return err
}

func (r *quotationRepository) GetByID(ctx context.Context, id int64) (*domain.Quotation, error) {
	query := `SELECT id, customer_id, status, window_start, window_end, subtotal_paise, tax_paise, total_paise,
	                 COALESCE(coupon_code, ''), discount_paise, expires_on, created_on, updated_on
	          FROM quotations WHERE id = $1`
	q, err := r.scanQuotation(r.db.QueryRowContext(ctx, query, id), id)
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *quotationRepository) GetDraftByCustomer(ctx context.Context, customerID int64) (*domain.Quotation, error) {
	query := `SELECT id, customer_id, status, window_start, window_end, subtotal_paise, tax_paise, total_paise,
	                 COALESCE(coupon_code, ''), discount_paise, expires_on, created_on, updated_on
	          FROM quotations WHERE customer_id = $1 AND status = 'DRAFT'`
	q, err := r.scanQuotation(r.db.QueryRowContext(ctx, query, customerID), customerID)
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *quotationRepository) Update(ctx context.Context, q *domain.Quotation) error {
	query := `UPDATE quotations
	          SET status = $1, window_start = $2, window_end = $3, subtotal_paise = $4, tax_paise = $5,
	              total_paise = $6, coupon_code = $7, discount_paise = $8, expires_on = $9, updated_on = NOW()
	          WHERE id = $10`
	start, end := windowBounds(q.Window)
	result, err := r.db.ExecContext(ctx, query,
		q.Status, start, end, q.SubtotalPaise, q.TaxPaise, q.TotalPaise,
		q.CouponCode, q.DiscountPaise, q.ExpiresOn, q.ID)
	if err != nil {
		return err
	}
	return requireRow(result, "quotation", q.ID)
}

func (r *quotationRepository) CreateLine(ctx context.Context, line *domain.QuotationLine) error {
	query := `INSERT INTO quotation_lines
	            (quotation_id, product_id, line_type, quantity, unit_price_paise, total_paise,
	             window_start, window_end, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW()) RETURNING id, created_on`
	start, end := windowBounds(line.Window)
	return r.db.QueryRowContext(ctx, query,
		line.QuotationID, line.ProductID, line.Type, line.Quantity,
		line.UnitPricePaise, line.TotalPaise, start, end).
		Scan(&line.ID, &line.CreatedOn)
}

func (r *quotationRepository) UpdateLine(ctx context.Context, line *domain.QuotationLine) error {
	query := `UPDATE quotation_lines
	          SET quantity = $1, unit_price_paise = $2, total_paise = $3, window_start = $4, window_end = $5
	          WHERE id = $6`
	start, end := windowBounds(line.Window)
	result, err := r.db.ExecContext(ctx, query,
		line.Quantity, line.UnitPricePaise, line.TotalPaise, start, end, line.ID)
	if err != nil {
		return err
	}
	return requireRow(result, "quotation line", line.ID)
}

func (r *quotationRepository) DeleteLine(ctx context.Context, lineID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM quotation_lines WHERE id = $1`, lineID)
	if err != nil {
		return err
	}
	return requireRow(result, "quotation line", lineID)
}

func (r *quotationRepository) DeleteDraftByCustomer(ctx context.Context, customerID int64) error {
	// Idempotent: clearing an absent cart is a no-op. Lines cascade.
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM quotations WHERE customer_id = $1 AND status = 'DRAFT'`, customerID)
	return err
}

func (r *quotationRepository) ExpireStale(ctx context.Context, asOf time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE quotations SET status = 'EXPIRED', updated_on = NOW() WHERE status = 'DRAFT' AND expires_on < $1`,
		asOf)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *quotationRepository) scanQuotation(row *sql.Row, key any) (*domain.Quotation, error) {
	var q domain.Quotation
	var start, end sql.NullTime
	err := row.Scan(&q.ID, &q.CustomerID, &q.Status, &start, &end,
		&q.SubtotalPaise, &q.TaxPaise, &q.TotalPaise, &q.CouponCode, &q.DiscountPaise,
		&q.ExpiresOn, &q.CreatedOn, &q.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "quotation", Key: key}
	}
	if err != nil {
		return nil, err
	}
	q.Window = windowFromBounds(start, end)
	return &q, nil
}

func (r *quotationRepository) loadLines(ctx context.Context, q *domain.Quotation) error {
	query := `SELECT id, quotation_id, product_id, line_type, quantity, unit_price_paise, total_paise,
	                 window_start, window_end, created_on
	          FROM quotation_lines WHERE quotation_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, q.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var line domain.QuotationLine
		var start, end sql.NullTime
		if err := rows.Scan(&line.ID, &line.QuotationID, &line.ProductID, &line.Type, &line.Quantity,
			&line.UnitPricePaise, &line.TotalPaise, &start, &end, &line.CreatedOn); err != nil {
			return err
		}
		line.Window = windowFromBounds(start, end)
		q.Lines = append(q.Lines, line)
	}
	return rows.Err()
}

func windowBounds(w *domain.RentalWindow) (start, end any) {
	if w == nil {
		return nil, nil
	}
	return w.Start, w.End
}

func windowFromBounds(start, end sql.NullTime) *domain.RentalWindow {
	if !start.Valid || !end.Valid {
		return nil
	}
	return &domain.RentalWindow{Start: start.Time, End: end.Time}
}
