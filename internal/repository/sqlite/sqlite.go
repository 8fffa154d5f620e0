package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/esportlife/site/internal/domain"
	"github.com/esportlife/site/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection and implements domain.Database.
type DB struct {
	SqlDB *sql.DB
	users *UserRepository
}

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys. The file is created if absent.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// Wait on a locked database instead of failing immediately.
	if _, err := db.ExecContext(context.Background(), "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	// A single writer serializes inserts, so two registrations with the same
	// email can never both pass the UNIQUE check.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return Wrap(db), nil
}

// Wrap builds a DB around an already opened *sql.DB.
func Wrap(db *sql.DB) *DB {
	d := &DB{SqlDB: db}
	d.users = &UserRepository{db: db}
	return d
}

// Migrate applies all pending schema migrations. Safe to call repeatedly.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := migrations.Run(ctx, d.SqlDB); err != nil {
		return fmt.Errorf("%w: migrate: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Ping checks that the database file is still reachable.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.SqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Users returns the user repository backed by this database.
func (d *DB) Users() domain.UserRepository {
	return d.users
}

func (d *DB) Close() error {
	return d.SqlDB.Close()
}
