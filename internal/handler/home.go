package handler

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/esportlife/site/internal/view"
)

const (
	indexPath    = "/html/index.html"
	loginPath    = "/html/login.html"
	registerPath = "/html/cadastro.html"
)

// HandleRoot redirects the bare root to the home page.
func HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, indexPath, http.StatusFound)
}

// HandleHome renders the home page with session-aware navigation.
func HandleHome(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, view.HomePage(navView(r)))
}

// HandleLoginPage renders the login form. Signed-in users go back home.
func HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if SessionFromContext(r.Context()) != nil {
		http.Redirect(w, r, indexPath, http.StatusFound)
		return
	}
	renderPage(w, r, http.StatusOK, view.LoginPage(view.LoginView{}))
}

// HandleRegisterPage renders the registration form. Signed-in users go back home.
func HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if SessionFromContext(r.Context()) != nil {
		http.Redirect(w, r, indexPath, http.StatusFound)
		return
	}
	renderPage(w, r, http.StatusOK, view.RegisterPage(view.RegisterView{}))
}

// HandleNav streams the current account link into #nav-account.
// GET /nav (datastar)
func HandleNav(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(
		view.NavAccount(navView(r)),
		datastar.WithSelectorID("nav-account"),
		datastar.WithModeInner(),
	); err != nil {
		slog.ErrorContext(r.Context(), "patch nav", "error", err)
	}
}

func renderPage(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.ErrorContext(r.Context(), "render page", "error", err)
	}
}
