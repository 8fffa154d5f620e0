package handler_test

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/esportlife/site/internal/handler"
	"github.com/esportlife/site/internal/metrics"
	"github.com/esportlife/site/internal/repository/sqlite"
	"github.com/esportlife/site/internal/service"
	"github.com/esportlife/site/internal/session"
)

type testEnv struct {
	deps     handler.Deps
	db       *sqlite.DB
	sessions *session.MemoryStore
	server   *httptest.Server
}

// newTestDeps wires a migrated SQLite database, an in-memory session store
// and a static directory holding css/main.css.
func newTestDeps(t *testing.T) (handler.Deps, *sqlite.DB, *session.MemoryStore) {
	t.Helper()
	dir := t.TempDir()

	db, err := sqlite.New(filepath.Join(dir, "users.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	staticDir := filepath.Join(dir, "static")
	if err := os.MkdirAll(filepath.Join(staticDir, "css"), 0o755); err != nil {
		t.Fatalf("mkdir static: %v", err)
	}
	if err := os.WriteFile(filepath.Join(staticDir, "css", "main.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatalf("write css: %v", err)
	}

	hasher, err := service.NewPasswordHasher("bcrypt", 4)
	if err != nil {
		t.Fatalf("NewPasswordHasher: %v", err)
	}

	sessions := session.NewMemoryStore(24*time.Hour, 0)
	t.Cleanup(func() { sessions.Close() })

	deps := handler.Deps{
		Auth:           service.NewAuthService(db.Users(), hasher),
		Sessions:       sessions,
		DB:             db,
		Metrics:        metrics.New(),
		StaticDir:      staticDir,
		CookieSecure:   false,
		SessionTTL:     24 * time.Hour,
		RequestTimeout: 5 * time.Second,
	}
	return deps, db, sessions
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	deps, db, sessions := newTestDeps(t)
	srv := httptest.NewServer(handler.New(deps))
	t.Cleanup(srv.Close)
	return &testEnv{deps: deps, db: db, sessions: sessions, server: srv}
}

// newClient returns a cookie-keeping client that does not follow redirects.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
