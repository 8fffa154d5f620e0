package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/esportlife/site/internal/config"
	"github.com/esportlife/site/internal/domain"
	"github.com/esportlife/site/internal/handler"
	"github.com/esportlife/site/internal/metrics"
	"github.com/esportlife/site/internal/repository/postgres"
	"github.com/esportlife/site/internal/repository/sqlite"
	"github.com/esportlife/site/internal/service"
	"github.com/esportlife/site/internal/session"
)

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := &cli.App{
		Name:    "esportlife",
		Usage:   "ESPORT LIFE web server",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags:   config.Flags(),
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or upgrade the credential store schema and exit",
				Action: migrate,
			},
		},
		Action: serve,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// setup validates configuration and installs the default logger.
func setup(c *cli.Context) (*config.Config, error) {
	cfg, err := config.FromContext(c)
	if err != nil {
		return nil, err
	}
	level, _ := cfg.SlogLevel()
	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)
	return cfg, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (domain.Database, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.DatabaseURL)
	default:
		return sqlite.New(cfg.DatabasePath)
	}
}

type sessionBackend interface {
	domain.SessionStore
	Close() error
}

func openSessions(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (sessionBackend, error) {
	if cfg.SessionBackend == config.SessionsRedis {
		return session.OpenRedisStore(ctx, cfg.RedisURL, cfg.SessionTTL)
	}
	store := session.NewMemoryStore(cfg.SessionTTL, cfg.SessionSweepInterval)
	m.TrackActiveSessions(store)
	return store, nil
}

func migrate(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(c.Context); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied", "driver", cfg.DatabaseDriver)
	return nil
}

func serve(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database ready", "driver", cfg.DatabaseDriver)

	hasher, err := service.NewPasswordHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		return err
	}

	m := metrics.New()
	sessions, err := openSessions(ctx, cfg, m)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer sessions.Close()
	slog.Info("session store ready", "backend", cfg.SessionBackend, "ttl", cfg.SessionTTL)

	authService := service.NewAuthService(db.Users(), hasher)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: handler.New(handler.Deps{
			Auth:           authService,
			Sessions:       sessions,
			DB:             db,
			Metrics:        m,
			StaticDir:      cfg.StaticDir,
			CookieSecure:   cfg.CookieSecure,
			SessionTTL:     cfg.SessionTTL,
			RequestTimeout: cfg.RequestTimeout,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
