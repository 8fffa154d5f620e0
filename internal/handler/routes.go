package handler

import (
	"net/http"
	"time"

	"github.com/esportlife/site/internal/domain"
	"github.com/esportlife/site/internal/metrics"
	"github.com/esportlife/site/internal/service"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Auth     *service.AuthService
	Sessions domain.SessionStore
	DB       Pinger
	Metrics  *metrics.Metrics

	StaticDir      string
	CookieSecure   bool
	SessionTTL     time.Duration
	RequestTimeout time.Duration
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, d Deps) {
	authHandler := NewAuthHandler(d.Auth, d.Sessions, d.Metrics, d.CookieSecure, d.SessionTTL)

	mux.HandleFunc("GET /{$}", HandleRoot)
	mux.HandleFunc("GET "+indexPath, HandleHome)
	mux.HandleFunc("GET "+loginPath, HandleLoginPage)
	mux.HandleFunc("GET "+registerPath, HandleRegisterPage)
	mux.HandleFunc("GET /nav", HandleNav)

	mux.HandleFunc("POST /login", authHandler.HandleLogin)
	mux.HandleFunc("POST /register", authHandler.HandleRegister)
	mux.HandleFunc("GET /logout", authHandler.HandleLogout)

	mux.HandleFunc("GET /healthz", HandleHealthz(d.DB))
	mux.Handle("GET /metrics", d.Metrics.Handler())

	mux.Handle("GET /", StaticHandler(d.StaticDir))
}

// New builds the complete server handler: routes plus the middleware chain.
func New(d Deps) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, d)

	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	var h http.Handler = LoadSession(d.Sessions, mux)
	h = Timeout(timeout, h)
	h = SecurityHeaders(h)
	h = RequestLogger(h)
	h = RequestID(h)
	return h
}
