package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/repository"
)

type billingRepository struct {
	db DBTX
}

func NewBillingRepository(db DBTX) repository.BillingRepository {
	return &billingRepository{db: db}
}

func (r *billingRepository) CreateInvoice(ctx context.Context, inv *domain.Invoice) error {
	query := `INSERT INTO invoices (invoice_number, order_id, subtotal_paise, tax_paise, total_paise, amount_paid_paise, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW()) RETURNING id, created_on, updated_on`
	return r.db.QueryRowContext(ctx, query,
		inv.Number, inv.OrderID, inv.SubtotalPaise, inv.TaxPaise, inv.TotalPaise, inv.AmountPaidPaise, inv.Status).
		Scan(&inv.ID, &inv.CreatedOn, &inv.UpdatedOn)
}

const invoiceColumns = `id, invoice_number, order_id, subtotal_paise, tax_paise, total_paise, amount_paid_paise, status, created_on, updated_on`

func (r *billingRepository) GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error) {
	return r.scanInvoice(r.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id), id)
}

func (r *billingRepository) GetInvoiceByOrder(ctx context.Context, orderID int64) (*domain.Invoice, error) {
	return r.scanInvoice(r.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE order_id = $1 ORDER BY id LIMIT 1`, orderID), orderID)
}

func (r *billingRepository) scanInvoice(row *sql.Row, key any) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.OrderID, &inv.SubtotalPaise, &inv.TaxPaise,
		&inv.TotalPaise, &inv.AmountPaidPaise, &inv.Status, &inv.CreatedOn, &inv.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "invoice", Key: key}
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *billingRepository) ApplyToInvoice(ctx context.Context, invoiceID int64, amountPaise int64) error {
	// The status CASE mirrors Invoice.DeriveStatus; the guard keeps the
	// applied sum from exceeding the invoice total.
	query := `UPDATE invoices
	          SET amount_paid_paise = amount_paid_paise + $1,
	              status = CASE
	                         WHEN amount_paid_paise + $1 >= total_paise THEN 'PAID'
	                         WHEN amount_paid_paise + $1 > 0 THEN 'PARTIAL'
	                         ELSE status
	                       END,
	              updated_on = NOW()
	          WHERE id = $2 AND amount_paid_paise + $1 <= total_paise`
	result, err := r.db.ExecContext(ctx, query, amountPaise, invoiceID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.ConflictError{Reason: "payment would exceed invoice total"}
	}
	return nil
}

func (r *billingRepository) CreatePayment(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (reference, transaction_id, order_id, invoice_id, amount_paise, status, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW()) RETURNING id, created_on`
	err := r.db.QueryRowContext(ctx, query,
		p.Reference, p.TransactionID, p.OrderID, p.InvoiceID, p.AmountPaise, p.Status).
		Scan(&p.ID, &p.CreatedOn)
	if isUniqueViolation(err) {
		// transaction_id carries a unique index: the idempotency key.
		return &domain.ConflictError{Reason: "payment already recorded for transaction " + p.TransactionID}
	}
	return err
}

func (r *billingRepository) CompletePayment(ctx context.Context, reference, transactionID string) error {
	query := `UPDATE payments SET transaction_id = $1, status = 'COMPLETED' WHERE reference = $2 AND status = 'PENDING'`
	result, err := r.db.ExecContext(ctx, query, transactionID, reference)
	if isUniqueViolation(err) {
		return &domain.ConflictError{Reason: "transaction already applied: " + transactionID}
	}
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.ConflictError{Reason: "payment is not pending: " + reference}
	}
	return nil
}

const paymentColumns = `id, reference, transaction_id, order_id, invoice_id, amount_paise, status, created_on`

func (r *billingRepository) GetPaymentByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	return r.scanPayment(r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE transaction_id = $1`, transactionID), transactionID)
}

func (r *billingRepository) GetPaymentByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	return r.scanPayment(r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE reference = $1`, reference), reference)
}

func (r *billingRepository) scanPayment(row *sql.Row, key any) (*domain.Payment, error) {
	var p domain.Payment
	var transactionID sql.NullString
	err := row.Scan(&p.ID, &p.Reference, &transactionID, &p.OrderID, &p.InvoiceID, &p.AmountPaise, &p.Status, &p.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "payment", Key: key}
	}
	if err != nil {
		return nil, err
	}
	p.TransactionID = transactionID.String
	return &p, nil
}

func (r *billingRepository) SetPaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE payments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return requireRow(result, "payment", id)
}

func (r *billingRepository) ListPaymentsByOrder(ctx context.Context, orderID int64) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		var transactionID sql.NullString
		if err := rows.Scan(&p.ID, &p.Reference, &transactionID, &p.OrderID, &p.InvoiceID, &p.AmountPaise, &p.Status, &p.CreatedOn); err != nil {
			return nil, err
		}
		p.TransactionID = transactionID.String
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
