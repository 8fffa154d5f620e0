package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/esportlife/site/internal/config"
)

// parse runs a throwaway cli.App with the config flags and returns what it built.
func parse(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	var (
		cfg    *config.Config
		cfgErr error
	)
	app := &cli.App{
		Name:  "site",
		Flags: config.Flags(),
		Action: func(c *cli.Context) error {
			cfg, cfgErr = config.FromContext(c)
			return nil
		},
	}
	if err := app.Run(append([]string{"site"}, args...)); err != nil {
		t.Fatalf("app.Run: %v", err)
	}
	return cfg, cfgErr
}

func TestDefaults(t *testing.T) {
	cfg, err := parse(t)
	if err != nil {
		t.Fatalf("FromContext: %v", err)
	}

	if cfg.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Port)
	}
	if cfg.Addr() != ":8000" {
		t.Errorf("Addr = %q, want :8000", cfg.Addr())
	}
	if cfg.DatabaseDriver != config.DriverSQLite || cfg.DatabasePath != "users.db" {
		t.Errorf("unexpected database settings: %s %s", cfg.DatabaseDriver, cfg.DatabasePath)
	}
	if cfg.StaticDir != "static" {
		t.Errorf("StaticDir = %q, want static", cfg.StaticDir)
	}
	if cfg.SessionBackend != config.SessionsMemory {
		t.Errorf("SessionBackend = %q", cfg.SessionBackend)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %s, want 24h", cfg.SessionTTL)
	}
	if cfg.PasswordHasher != config.HasherArgon2id {
		t.Errorf("PasswordHasher = %q", cfg.PasswordHasher)
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure should default to true")
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %s", cfg.RequestTimeout)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("PASSWORD_HASHER", "BCRYPT")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := parse(t)
	if err != nil {
		t.Fatalf("FromContext: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %s, want 30m", cfg.SessionTTL)
	}
	if cfg.CookieSecure {
		t.Error("CookieSecure should be false")
	}
	if cfg.PasswordHasher != config.HasherBcrypt {
		t.Errorf("PasswordHasher = %q, want bcrypt", cfg.PasswordHasher)
	}
	level, err := cfg.SlogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("SlogLevel = %v, %v", level, err)
	}
}

func TestFlagsBeatEnv(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := parse(t, "--port", "7000")
	if err != nil {
		t.Fatalf("FromContext: %v", err)
	}
	if cfg.Port != 7000 {
		t.Errorf("Port = %d, want 7000", cfg.Port)
	}
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			Port:                 8000,
			DatabaseDriver:       config.DriverSQLite,
			DatabasePath:         "users.db",
			SessionBackend:       config.SessionsMemory,
			SessionTTL:           time.Hour,
			SessionSweepInterval: time.Minute,
			PasswordHasher:       config.HasherArgon2id,
			BcryptCost:           12,
			RequestTimeout:       time.Second,
			LogLevel:             "info",
		}
	}

	base := valid()
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"port", func(c *config.Config) { c.Port = 0 }, "PORT"},
		{"driver", func(c *config.Config) { c.DatabaseDriver = "mysql" }, "DATABASE_DRIVER"},
		{"postgres without url", func(c *config.Config) { c.DatabaseDriver = config.DriverPostgres }, "DATABASE_URL"},
		{"sqlite without path", func(c *config.Config) { c.DatabasePath = "" }, "DATABASE_PATH"},
		{"backend", func(c *config.Config) { c.SessionBackend = "memcached" }, "SESSION_BACKEND"},
		{"redis without url", func(c *config.Config) { c.SessionBackend = config.SessionsRedis }, "REDIS_URL"},
		{"ttl", func(c *config.Config) { c.SessionTTL = 0 }, "SESSION_TTL"},
		{"sweep", func(c *config.Config) { c.SessionSweepInterval = -time.Second }, "SESSION_SWEEP_INTERVAL"},
		{"hasher", func(c *config.Config) { c.PasswordHasher = "md5" }, "PASSWORD_HASHER"},
		{"bcrypt low", func(c *config.Config) { c.BcryptCost = 3 }, "BCRYPT_COST"},
		{"bcrypt high", func(c *config.Config) { c.BcryptCost = 15 }, "BCRYPT_COST"},
		{"timeout", func(c *config.Config) { c.RequestTimeout = 0 }, "REQUEST_TIMEOUT"},
		{"log level", func(c *config.Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %s", err, tt.want)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("ESPORTLIFE_TEST_SETTING=from-file\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("ESPORTLIFE_TEST_SETTING") })

	if err := config.LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("ESPORTLIFE_TEST_SETTING"); got != "from-file" {
		t.Fatalf("ESPORTLIFE_TEST_SETTING = %q, want from-file", got)
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	if err := config.LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing file should be ignored, got %v", err)
	}
}
