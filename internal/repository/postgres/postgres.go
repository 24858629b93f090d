package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/repository"
)

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// isSerializationFailure reports whether err is a serialization failure
// (40001) or deadlock (40P01), both of which callers may safely retry.
func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && (pqErr.Code == "40001" || pqErr.Code == "40P01")
}

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository can
// run against a shared transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB

	users     repository.UserRepository
	products  repository.ProductRepository
	quotes    repository.QuotationRepository
	orders    repository.OrderRepository
	stock     repository.StockRepository
	billing   repository.BillingRepository
	coupons   repository.CouponRepository
}

func NewStore(db *sql.DB) *Store {
	s := newStore(db)
	s.db = db
	return s
}

func newStore(dbtx DBTX) *Store {
	return &Store{
		users:    NewUserRepository(dbtx),
		products: NewProductRepository(dbtx),
		quotes:   NewQuotationRepository(dbtx),
		orders:   NewOrderRepository(dbtx),
		stock:    NewStockRepository(dbtx),
		billing:  NewBillingRepository(dbtx),
		coupons:  NewCouponRepository(dbtx),
	}
}

func (s *Store) Users() repository.UserRepository           { return s.users }
func (s *Store) Products() repository.ProductRepository     { return s.products }
func (s *Store) Quotations() repository.QuotationRepository { return s.quotes }
func (s *Store) Orders() repository.OrderRepository         { return s.orders }
func (s *Store) Stock() repository.StockRepository          { return s.stock }
func (s *Store) Billing() repository.BillingRepository      { return s.billing }
func (s *Store) Coupons() repository.CouponRepository       { return s.coupons }

// WithinTx runs fn against a store bound to a single transaction.
// A nil db means this store is already transaction-bound; fn simply
// reuses it rather than opening a nested transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newStore(tx)); err != nil {
		if isSerializationFailure(err) {
			return domain.ErrTxConflict
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return domain.ErrTxConflict
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
