// Package config reads server settings from command-line flags and
// environment variables. A .env file, when present, seeds the environment
// before flags are parsed.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

// Supported backends.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	SessionsMemory = "memory"
	SessionsRedis  = "redis"

	HasherArgon2id = "argon2id"
	HasherBcrypt   = "bcrypt"
)

// Config holds every runtime setting of the server.
type Config struct {
	Port      int
	StaticDir string

	DatabaseDriver string
	DatabasePath   string
	DatabaseURL    string

	SessionBackend       string
	RedisURL             string
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration

	PasswordHasher string
	BcryptCost     int

	CookieSecure   bool
	RequestTimeout time.Duration
	LogLevel       string
}

// LoadEnvFile loads key=value pairs from path into the process environment.
// Variables already set are not overridden and a missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Flags returns the CLI flags for every setting, each bound to its env var.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "port", Usage: "HTTP listen port", EnvVars: []string{"PORT"}, Value: 8000},
		&cli.StringFlag{Name: "static-dir", Usage: "directory served for unmatched paths", EnvVars: []string{"STATIC_DIR"}, Value: "static"},
		&cli.StringFlag{Name: "database-driver", Usage: "credential store: sqlite or postgres", EnvVars: []string{"DATABASE_DRIVER"}, Value: DriverSQLite},
		&cli.StringFlag{Name: "database-path", Usage: "SQLite database file", EnvVars: []string{"DATABASE_PATH"}, Value: "users.db"},
		&cli.StringFlag{Name: "database-url", Usage: "Postgres connection string", EnvVars: []string{"DATABASE_URL"}},
		&cli.StringFlag{Name: "session-backend", Usage: "session store: memory or redis", EnvVars: []string{"SESSION_BACKEND"}, Value: SessionsMemory},
		&cli.StringFlag{Name: "redis-url", Usage: "Redis URL for the redis session backend", EnvVars: []string{"REDIS_URL"}},
		&cli.DurationFlag{Name: "session-ttl", Usage: "session lifetime", EnvVars: []string{"SESSION_TTL"}, Value: 24 * time.Hour},
		&cli.DurationFlag{Name: "session-sweep-interval", Usage: "how often expired in-memory sessions are removed", EnvVars: []string{"SESSION_SWEEP_INTERVAL"}, Value: 5 * time.Minute},
		&cli.StringFlag{Name: "password-hasher", Usage: "hash for new passwords: argon2id or bcrypt", EnvVars: []string{"PASSWORD_HASHER"}, Value: HasherArgon2id},
		&cli.IntFlag{Name: "bcrypt-cost", Usage: "bcrypt cost (4-14)", EnvVars: []string{"BCRYPT_COST"}, Value: 12},
		&cli.BoolFlag{Name: "cookie-secure", Usage: "mark the session cookie Secure", EnvVars: []string{"COOKIE_SECURE"}, Value: true},
		&cli.DurationFlag{Name: "request-timeout", Usage: "per-request deadline", EnvVars: []string{"REQUEST_TIMEOUT"}, Value: 15 * time.Second},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error", EnvVars: []string{"LOG_LEVEL"}, Value: "info"},
	}
}

// FromContext builds a validated Config from parsed CLI flags.
func FromContext(c *cli.Context) (*Config, error) {
	cfg := &Config{
		Port:                 c.Int("port"),
		StaticDir:            c.String("static-dir"),
		DatabaseDriver:       strings.ToLower(c.String("database-driver")),
		DatabasePath:         c.String("database-path"),
		DatabaseURL:          c.String("database-url"),
		SessionBackend:       strings.ToLower(c.String("session-backend")),
		RedisURL:             c.String("redis-url"),
		SessionTTL:           c.Duration("session-ttl"),
		SessionSweepInterval: c.Duration("session-sweep-interval"),
		PasswordHasher:       strings.ToLower(c.String("password-hasher")),
		BcryptCost:           c.Int("bcrypt-cost"),
		CookieSecure:         c.Bool("cookie-secure"),
		RequestTimeout:       c.Duration("request-timeout"),
		LogLevel:             c.String("log-level"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabasePath == "" {
			return errors.New("DATABASE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.SessionBackend {
	case SessionsMemory:
	case SessionsRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}

	if c.SessionTTL < time.Second {
		return fmt.Errorf("SESSION_TTL must be at least 1s, got %s", c.SessionTTL)
	}
	if c.SessionSweepInterval < 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must not be negative, got %s", c.SessionSweepInterval)
	}

	switch c.PasswordHasher {
	case HasherArgon2id, HasherBcrypt:
	default:
		return fmt.Errorf("unknown PASSWORD_HASHER %q", c.PasswordHasher)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.BcryptCost)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
