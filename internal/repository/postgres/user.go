package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/esportlife/site/internal/domain"
	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// UserRepository implements domain.UserRepository using PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	const q = `
INSERT INTO users (name, email, tax_id, password_hash)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, q, user.Name, user.Email, user.TaxID, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateRegistration
		}
		return fmt.Errorf("%w: insert user: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `SELECT id, name, email, tax_id, password_hash, created_at FROM users WHERE id = $1`
	return r.scanOne(ctx, "query user by id", q, id)
}

func (r *UserRepository) FindByLogin(ctx context.Context, login string) ([]*domain.User, error) {
	const q = `SELECT id, name, email, tax_id, password_hash, created_at FROM users WHERE email = $1 OR tax_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, login)
	if err != nil {
		return nil, fmt.Errorf("%w: query user by login: %w", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user := &domain.User{}
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.TaxID, &user.PasswordHash, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan user: %w", domain.ErrStorageUnavailable, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate users: %w", domain.ErrStorageUnavailable, err)
	}
	if len(users) == 0 {
		return nil, domain.ErrNotFound
	}
	return users, nil
}

func (r *UserRepository) scanOne(ctx context.Context, op, q string, arg any) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx, q, arg).
		Scan(&user.ID, &user.Name, &user.Email, &user.TaxID, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrStorageUnavailable, op, err)
	}
	return user, nil
}
