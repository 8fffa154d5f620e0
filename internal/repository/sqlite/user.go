package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/esportlife/site/internal/domain"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	db *sql.DB
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, tax_id, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.Name, user.Email, user.TaxID, user.PasswordHash, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateRegistration
		}
		return fmt.Errorf("%w: insert user: %w", domain.ErrStorageUnavailable, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("%w: get last insert id: %w", domain.ErrStorageUnavailable, err)
	}

	user.ID = id
	user.CreatedAt = now
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, tax_id, password_hash, created_at
		 FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &user.Name, &user.Email, &user.TaxID, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: query user by id: %w", domain.ErrStorageUnavailable, err)
	}
	return user, nil
}

func (r *UserRepository) FindByLogin(ctx context.Context, login string) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, tax_id, password_hash, created_at
		 FROM users WHERE email = ? OR tax_id = ? ORDER BY id`, login, login,
	)
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

// isUniqueConstraintError checks if the error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
