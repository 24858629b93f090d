package postgres

import (
	"context"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/repository"
)

type stockRepository struct {
	db DBTX
}

func NewStockRepository(db DBTX) repository.StockRepository {
	return &stockRepository{db: db}
}

// Reserve decrements on-hand with a conditional update so two
// concurrent reservations can never both succeed on the last units,
// then journals the movement. Callers run it inside a transaction.
func (r *stockRepository) Reserve(ctx context.Context, productID int64, quantity int64, referenceID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET on_hand = on_hand - $1, updated_on = NOW() WHERE id = $2 AND on_hand >= $1`,
		quantity, productID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrInsufficientStock
	}
	return r.append(ctx, &domain.StockMovement{
		ProductID:   productID,
		Delta:       -quantity,
		Type:        domain.MovementTypeReserve,
		ReferenceID: &referenceID,
	})
}

func (r *stockRepository) Restore(ctx context.Context, productID int64, quantity int64, movType domain.MovementType, referenceID int64, note string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET on_hand = on_hand + $1, updated_on = NOW() WHERE id = $2`,
		quantity, productID)
	if err != nil {
		return err
	}
	if err := requireRow(result, "product", productID); err != nil {
		return err
	}
	return r.append(ctx, &domain.StockMovement{
		ProductID:   productID,
		Delta:       quantity,
		Type:        movType,
		ReferenceID: &referenceID,
		Note:        note,
	})
}

func (r *stockRepository) Adjust(ctx context.Context, productID int64, delta int64, note string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET on_hand = on_hand + $1, updated_on = NOW() WHERE id = $2 AND on_hand + $1 >= 0`,
		delta, productID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrInsufficientStock
	}
	return r.append(ctx, &domain.StockMovement{
		ProductID: productID,
		Delta:     delta,
		Type:      domain.MovementTypeAdjustment,
		Note:      note,
	})
}

func (r *stockRepository) append(ctx context.Context, m *domain.StockMovement) error {
	query := `INSERT INTO stock_movements (product_id, delta, movement_type, reference_id, note, created_on)
	          VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id, created_on`
	return r.db.QueryRowContext(ctx, query,
		m.ProductID, m.Delta, m.Type, m.ReferenceID, m.Note).
		Scan(&m.ID, &m.CreatedOn)
}

func (r *stockRepository) OnHand(ctx context.Context, productID int64) (int64, error) {
	var onHand int64
	err := r.db.QueryRowContext(ctx, `SELECT on_hand FROM products WHERE id = $1`, productID).Scan(&onHand)
	return onHand, err
}

func (r *stockRepository) ListMovements(ctx context.Context, productID int64, page, pageSize int32) ([]domain.StockMovement, int64, error) {
	offset := (page - 1) * pageSize
	query := `SELECT id, product_id, delta, movement_type, reference_id, COALESCE(note, ''), created_on
	          FROM stock_movements WHERE product_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, productID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var movements []domain.StockMovement
	for rows.Next() {
		var m domain.StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Delta, &m.Type, &m.ReferenceID, &m.Note, &m.CreatedOn); err != nil {
			return nil, 0, err
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var count int64
	err = r.db.QueryRowContext(ctx, `SELECT count(*) FROM stock_movements WHERE product_id = $1`, productID).Scan(&count)
	return movements, count, err
}

// Drifting compares each product's on-hand against the fold of its
// journal. The initial quantity of a product enters the journal as an
// ADJUSTMENT movement at creation, so the sums must match exactly.
func (r *stockRepository) Drifting(ctx context.Context) ([]repository.StockDrift, error) {
	query := `SELECT p.id, p.on_hand, COALESCE(SUM(m.delta), 0) AS journal_sum
	          FROM products p
	          LEFT JOIN stock_movements m ON m.product_id = p.id
	          GROUP BY p.id, p.on_hand
	          HAVING p.on_hand <> COALESCE(SUM(m.delta), 0)`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drifts []repository.StockDrift
	for rows.Next() {
		var d repository.StockDrift
		if err := rows.Scan(&d.ProductID, &d.OnHand, &d.JournalSum); err != nil {
			return nil, err
		}
		drifts = append(drifts, d)
	}
	return drifts, rows.Err()
}
