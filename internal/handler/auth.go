package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/esportlife/site/internal/domain"
	"github.com/esportlife/site/internal/metrics"
	"github.com/esportlife/site/internal/service"
	"github.com/esportlife/site/internal/view"
)

// AuthHandler handles login, registration and logout.
type AuthHandler struct {
	auth         *service.AuthService
	sessions     domain.SessionStore
	metrics      *metrics.Metrics
	cookieSecure bool
	sessionTTL   time.Duration
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, sessions domain.SessionStore, m *metrics.Metrics, cookieSecure bool, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		sessions:     sessions,
		metrics:      m,
		cookieSecure: cookieSecure,
		sessionTTL:   sessionTTL,
	}
}

// HandleLogin verifies the submitted credentials and starts a session.
// POST /login  form: login, password
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	login := r.PostFormValue("login")
	password := r.PostFormValue("password")

	user, err := h.auth.Authenticate(r.Context(), login, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.metrics.Logins.WithLabelValues(metrics.ResultFailure).Inc()
			renderPage(w, r, http.StatusOK, view.LoginPage(view.LoginView{
				Error: view.MsgInvalidCredentials,
				Login: login,
			}))
			return
		}
		h.metrics.Logins.WithLabelValues(metrics.ResultError).Inc()
		slog.ErrorContext(r.Context(), "authenticate user", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sess, err := h.sessions.Create(r.Context(), user.ID, user.FirstName())
	if err != nil {
		h.metrics.Logins.WithLabelValues(metrics.ResultError).Inc()
		slog.ErrorContext(r.Context(), "create session", "error", err, "user_id", user.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// A previous session carried by this browser is superseded.
	if old := SessionFromContext(r.Context()); old != nil {
		if err := h.sessions.Delete(r.Context(), old.Token); err != nil {
			slog.WarnContext(r.Context(), "drop previous session", "error", err)
		}
	}

	h.metrics.Logins.WithLabelValues(metrics.ResultSuccess).Inc()
	h.metrics.SessionsCreated.Inc()
	slog.InfoContext(r.Context(), "user logged in", "user_id", user.ID)

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL / time.Second),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, indexPath, http.StatusFound)
}

// HandleRegister creates an account. It never signs the new user in.
// POST /register  form: nome, email, cpf, senha, confirmarSenha
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	in := service.RegisterInput{
		Name:                 r.PostFormValue("nome"),
		Email:                r.PostFormValue("email"),
		TaxID:                r.PostFormValue("cpf"),
		Password:             r.PostFormValue("senha"),
		PasswordConfirmation: r.PostFormValue("confirmarSenha"),
	}

	user, err := h.auth.Register(r.Context(), in)
	if err != nil {
		var msg, result string
		switch {
		case errors.Is(err, domain.ErrPasswordMismatch):
			msg, result = view.MsgPasswordMismatch, metrics.ResultMismatch
		case errors.Is(err, domain.ErrDuplicateRegistration):
			msg, result = view.MsgDuplicate, metrics.ResultDuplicate
		case errors.Is(err, domain.ErrPasswordTooLong):
			msg, result = view.MsgPasswordTooLong, metrics.ResultInvalid
		case errors.Is(err, domain.ErrInvalidInput):
			msg, result = view.MsgMissingFields, metrics.ResultInvalid
		default:
			h.metrics.Registrations.WithLabelValues(metrics.ResultError).Inc()
			slog.ErrorContext(r.Context(), "register user", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		h.metrics.Registrations.WithLabelValues(result).Inc()
		renderPage(w, r, http.StatusOK, view.RegisterPage(view.RegisterView{
			Error: msg,
			Name:  in.Name,
			Email: in.Email,
			TaxID: in.TaxID,
		}))
		return
	}

	h.metrics.Registrations.WithLabelValues(metrics.ResultSuccess).Inc()
	slog.InfoContext(r.Context(), "user registered", "user_id", user.ID)
	http.Redirect(w, r, loginPath, http.StatusFound)
}

// HandleLogout ends the session, if any, and clears the cookie.
// GET /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			slog.ErrorContext(r.Context(), "delete session", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
	h.metrics.Logouts.Inc()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, indexPath, http.StatusFound)
}
