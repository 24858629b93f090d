package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/repository"
)

type orderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) repository.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_number, quotation_id, customer_id, vendor_id, status,
	subtotal_paise, tax_paise, discount_paise, total_paise, amount_paid_paise,
	daily_rate_paise, rental_days, window_start, window_end, invoice_id, created_on, updated_on`

func (r *orderRepository) Create(ctx context.Context, o *domain.Order) error {
	query := `INSERT INTO orders
	            (order_number, quotation_id, customer_id, vendor_id, status,
	             subtotal_paise, tax_paise, discount_paise, total_paise, amount_paid_paise,
	             daily_rate_paise, rental_days, window_start, window_end, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
	          RETURNING id, created_on, updated_on`
	start, end := windowBounds(o.Window)
	err := r.db.QueryRowContext(ctx, query,
		o.Number, o.QuotationID, o.CustomerID, o.VendorID, o.Status,
		o.SubtotalPaise, o.TaxPaise, o.DiscountPaise, o.TotalPaise, o.AmountPaidPaise,
		o.DailyRatePaise, o.RentalDays, start, end).
		Scan(&o.ID, &o.CreatedOn, &o.UpdatedOn)
	if err != nil {
		return err
	}

	for i := range o.Lines {
		line := &o.Lines[i]
		line.OrderID = o.ID
		lstart, lend := windowBounds(line.Window)
		err := r.db.QueryRowContext(ctx,
			`INSERT INTO order_lines (order_id, product_id, line_type, quantity, unit_price_paise, total_paise, window_start, window_end)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
			line.OrderID, line.ProductID, line.Type, line.Quantity,
			line.UnitPricePaise, line.TotalPaise, lstart, lend).Scan(&line.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	var start, end sql.NullTime
	err := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id).Scan(
		&o.ID, &o.Number, &o.QuotationID, &o.CustomerID, &o.VendorID, &o.Status,
		&o.SubtotalPaise, &o.TaxPaise, &o.DiscountPaise, &o.TotalPaise, &o.AmountPaidPaise,
		&o.DailyRatePaise, &o.RentalDays, &start, &end, &o.InvoiceID, &o.CreatedOn, &o.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "order", Key: id}
	}
	if err != nil {
		return nil, err
	}
	o.Window = windowFromBounds(start, end)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, product_id, line_type, quantity, unit_price_paise, total_paise, window_start, window_end
		 FROM order_lines WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var line domain.OrderLine
		var lstart, lend sql.NullTime
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Type, &line.Quantity,
			&line.UnitPricePaise, &line.TotalPaise, &lstart, &lend); err != nil {
			return nil, err
		}
		line.Window = windowFromBounds(lstart, lend)
		o.Lines = append(o.Lines, line)
	}
	return &o, rows.Err()
}

func (r *orderRepository) SetStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_on = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return requireRow(result, "order", id)
}

func (r *orderRepository) SetInvoice(ctx context.Context, id int64, invoiceID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET invoice_id = $1, updated_on = NOW() WHERE id = $2`, invoiceID, id)
	if err != nil {
		return err
	}
	return requireRow(result, "order", id)
}

func (r *orderRepository) AddAmountPaid(ctx context.Context, id int64, amountPaise int64) error {
	// The guard keeps amount_paid from ever exceeding the order total.
	query := `UPDATE orders SET amount_paid_paise = amount_paid_paise + $1, updated_on = NOW()
	          WHERE id = $2 AND amount_paid_paise + $1 <= total_paise`
	result, err := r.db.ExecContext(ctx, query, amountPaise, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.ConflictError{Reason: "payment would exceed order total"}
	}
	return nil
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID int64, page, pageSize int32) ([]domain.Order, int64, error) {
	return r.list(ctx, `customer_id`, customerID, page, pageSize)
}

func (r *orderRepository) ListByVendor(ctx context.Context, vendorID int64, page, pageSize int32) ([]domain.Order, int64, error) {
	return r.list(ctx, `vendor_id`, vendorID, page, pageSize)
}

func (r *orderRepository) list(ctx context.Context, column string, id int64, page, pageSize int32) ([]domain.Order, int64, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + column + ` = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, id, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		var start, end sql.NullTime
		if err := rows.Scan(&o.ID, &o.Number, &o.QuotationID, &o.CustomerID, &o.VendorID, &o.Status,
			&o.SubtotalPaise, &o.TaxPaise, &o.DiscountPaise, &o.TotalPaise, &o.AmountPaidPaise,
			&o.DailyRatePaise, &o.RentalDays, &start, &end, &o.InvoiceID, &o.CreatedOn, &o.UpdatedOn); err != nil {
			return nil, 0, err
		}
		o.Window = windowFromBounds(start, end)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var count int64
	err = r.db.QueryRowContext(ctx, `SELECT count(*) FROM orders WHERE `+column+` = $1`, id).Scan(&count)
	return orders, count, err
}

func (r *orderRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
	          WHERE status = 'PICKED_UP' AND window_end IS NOT NULL AND window_end < $1 ORDER BY window_end`
	rows, err := r.db.QueryContext(ctx, query, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		var start, end sql.NullTime
		if err := rows.Scan(&o.ID, &o.Number, &o.QuotationID, &o.CustomerID, &o.VendorID, &o.Status,
			&o.SubtotalPaise, &o.TaxPaise, &o.DiscountPaise, &o.TotalPaise, &o.AmountPaidPaise,
			&o.DailyRatePaise, &o.RentalDays, &start, &end, &o.InvoiceID, &o.CreatedOn, &o.UpdatedOn); err != nil {
			return nil, err
		}
		o.Window = windowFromBounds(start, end)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *orderRepository) CreateReservation(ctx context.Context, res *domain.Reservation) error {
	query := `INSERT INTO reservations (order_id, product_id, quantity, window_start, window_end, created_on)
	          VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id, created_on`
	return r.db.QueryRowContext(ctx, query,
		res.OrderID, res.ProductID, res.Quantity, res.Start, res.End).
		Scan(&res.ID, &res.CreatedOn)
}

func (r *orderRepository) ListReservations(ctx context.Context, orderID int64) ([]domain.Reservation, error) {
	query := `SELECT id, order_id, product_id, quantity, window_start, window_end, created_on
	          FROM reservations WHERE order_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ID, &res.OrderID, &res.ProductID, &res.Quantity, &res.Start, &res.End, &res.CreatedOn); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func (r *orderRepository) ReservedQuantity(ctx context.Context, productID int64, w domain.RentalWindow) (int64, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM reservations
	          WHERE product_id = $1 AND window_start < $3 AND window_end > $2`
	var quantity int64
	err := r.db.QueryRowContext(ctx, query, productID, w.Start, w.End).Scan(&quantity)
	return quantity, err
}

func (r *orderRepository) TruncateReservations(ctx context.Context, orderID int64, end time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET window_end = $1 WHERE order_id = $2 AND window_end > $1`, end, orderID)
	return err
}

func (r *orderRepository) DeleteReservations(ctx context.Context, orderID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE order_id = $1`, orderID)
	return err
}

func (r *orderRepository) CreatePickup(ctx context.Context, p *domain.Pickup) error {
	query := `INSERT INTO pickups (order_id, picked_up_on, note) VALUES ($1, $2, $3) RETURNING id`
	return r.db.QueryRowContext(ctx, query, p.OrderID, p.PickedUpOn, p.Note).Scan(&p.ID)
}

func (r *orderRepository) GetPickup(ctx context.Context, orderID int64) (*domain.Pickup, error) {
	var p domain.Pickup
	err := r.db.QueryRowContext(ctx,
		`SELECT id, order_id, picked_up_on, COALESCE(note, '') FROM pickups WHERE order_id = $1`, orderID).
		Scan(&p.ID, &p.OrderID, &p.PickedUpOn, &p.Note)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "pickup", Key: orderID}
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *orderRepository) CreateReturn(ctx context.Context, ret *domain.Return) error {
	query := `INSERT INTO returns (order_id, returned_on, late_days, late_fee_paise, damage_fee_paise, fee_invoice_id)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		ret.OrderID, ret.ReturnedOn, ret.LateDays, ret.LateFeePaise, ret.DamageFeePaise, ret.FeeInvoiceID).
		Scan(&ret.ID)
	if isUniqueViolation(err) {
		return domain.ErrReturnAlreadyProcessed
	}
	if err != nil {
		return err
	}
	for i := range ret.Items {
		item := &ret.Items[i]
		item.ReturnID = ret.ID
		err := r.db.QueryRowContext(ctx,
			`INSERT INTO return_items (return_id, product_id, line_type, quantity, condition) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			item.ReturnID, item.ProductID, item.Type, item.Quantity, item.Condition).Scan(&item.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepository) GetReturn(ctx context.Context, orderID int64) (*domain.Return, error) {
	var ret domain.Return
	err := r.db.QueryRowContext(ctx,
		`SELECT id, order_id, returned_on, late_days, late_fee_paise, damage_fee_paise, fee_invoice_id
		 FROM returns WHERE order_id = $1`, orderID).
		Scan(&ret.ID, &ret.OrderID, &ret.ReturnedOn, &ret.LateDays, &ret.LateFeePaise, &ret.DamageFeePaise, &ret.FeeInvoiceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "return", Key: orderID}
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, return_id, product_id, line_type, quantity, condition FROM return_items WHERE return_id = $1 ORDER BY id`, ret.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item domain.ReturnItem
		if err := rows.Scan(&item.ID, &item.ReturnID, &item.ProductID, &item.Type, &item.Quantity, &item.Condition); err != nil {
			return nil, err
		}
		ret.Items = append(ret.Items, item)
	}
	return &ret, rows.Err()
}
