package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/repository"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (email, name, password_hash, role, created_on)
	          VALUES ($1, $2, $3, $4, NOW()) RETURNING id, created_on`
	var createdOn time.Time
	if err := r.db.QueryRowContext(ctx, query, user.Email, user.Name, user.PasswordHash, user.Role).
		Scan(&user.ID, &createdOn); err != nil {
		return err
	}
	user.CreatedOn = createdOn.Format("2006-01-02")
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT id, email, name, password_hash, role, created_on FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id), id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, email, name, password_hash, role, created_on FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email), email)
}

func (r *userRepository) scanUser(row *sql.Row, key any) (*domain.User, error) {
	var u domain.User
	var createdOn time.Time
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &createdOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "user", Key: key}
	}
	if err != nil {
		return nil, err
	}
	u.CreatedOn = createdOn.Format("2006-01-02")
	return &u, nil
}
