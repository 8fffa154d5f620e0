// Package postgres implements the credential store on PostgreSQL via lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/esportlife/site/internal/domain"

	_ "github.com/lib/pq"
)

// DB wraps a PostgreSQL connection pool and implements domain.Database.
type DB struct {
	SqlDB *sql.DB
	users *UserRepository
}

// New opens a connection pool for the given DSN and verifies it is reachable.
func New(ctx context.Context, dsn string) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database url is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return Wrap(db), nil
}

// Wrap builds a DB around an already opened *sql.DB.
func Wrap(db *sql.DB) *DB {
	return &DB{SqlDB: db, users: &UserRepository{db: db}}
}

// Migrate creates the users table if it does not exist yet.
func (d *DB) Migrate(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	tax_id TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	if _, err := d.SqlDB.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("%w: ensure users schema: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	if err := d.SqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (d *DB) Users() domain.UserRepository {
	return d.users
}

func (d *DB) Close() error {
	return d.SqlDB.Close()
}
