package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/repository"
)

type productRepository struct {
	db DBTX
}

func NewProductRepository(db DBTX) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (vendor_id, name, category, sale_price_paise, on_hand, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id, created_on, updated_on`
	err := r.db.QueryRowContext(ctx, query, p.VendorID, p.Name, p.Category, p.SalePricePaise, p.OnHand).
		Scan(&p.ID, &p.CreatedOn, &p.UpdatedOn)
	if err != nil {
		return err
	}
	for i := range p.Tiers {
		tier := &p.Tiers[i]
		tier.ProductID = p.ID
		err := r.db.QueryRowContext(ctx,
			`INSERT INTO rental_tiers (product_id, unit, duration, price_paise) VALUES ($1, $2, $3, $4) RETURNING id`,
			tier.ProductID, tier.Unit, tier.Duration, tier.PricePaise).Scan(&tier.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT id, vendor_id, name, category, sale_price_paise, on_hand, deleted_on, created_on, updated_on
	          FROM products WHERE id = $1`
	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.VendorID, &p.Name, &p.Category, &p.SalePricePaise, &p.OnHand,
		&p.DeletedOn, &p.CreatedOn, &p.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "product", Key: id}
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, product_id, unit, duration, price_paise FROM rental_tiers WHERE product_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t domain.RentalTier
		if err := rows.Scan(&t.ID, &t.ProductID, &t.Unit, &t.Duration, &t.PricePaise); err != nil {
			return nil, err
		}
		p.Tiers = append(p.Tiers, t)
	}
	return &p, rows.Err()
}

func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `UPDATE products SET name = $1, category = $2, sale_price_paise = $3, updated_on = NOW() WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, p.Name, p.Category, p.SalePricePaise, p.ID)
	if err != nil {
		return err
	}
	return requireRow(result, "product", p.ID)
}

func (r *productRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE products SET deleted_on = NOW(), updated_on = NOW() WHERE id = $1 AND deleted_on IS NULL`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireRow(result, "product", id)
}

func (r *productRepository) List(ctx context.Context, page, pageSize int32) ([]domain.Product, int64, error) {
	offset := (page - 1) * pageSize
	query := `SELECT id, vendor_id, name, category, sale_price_paise, on_hand, deleted_on, created_on, updated_on
	          FROM products WHERE deleted_on IS NULL ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.VendorID, &p.Name, &p.Category, &p.SalePricePaise, &p.OnHand,
			&p.DeletedOn, &p.CreatedOn, &p.UpdatedOn); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var count int64
	err = r.db.QueryRowContext(ctx, `SELECT count(*) FROM products WHERE deleted_on IS NULL`).Scan(&count)
	return products, count, err
}

// requireRow converts a zero-rows-affected update into a NotFoundError.
func requireRow(result sql.Result, entity string, key any) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.NotFoundError{Entity: entity, Key: key}
	}
	return nil
}
