// Package view holds the templ components that render the site's pages.
package view

// Banner messages shown above the login and registration forms.
const (
	MsgInvalidCredentials = "Credenciais inválidas! Tente novamente."
	MsgPasswordMismatch   = "As senhas não conferem! Tente novamente."
	MsgDuplicate          = "Email ou CPF/CNPJ já cadastrado! Tente outro."
	MsgMissingFields      = "Preencha todos os campos!"
	MsgPasswordTooLong    = "A senha deve ter no máximo 72 bytes."
)

// NavView is the session state the navigation needs.
type NavView struct {
	IsAuthenticated bool
	DisplayName     string
}

// LoginView re-renders the login form. Login is echoed back so the user
// does not have to retype it.
type LoginView struct {
	Error string
	Login string
}

// RegisterView re-renders the registration form. Passwords are never echoed.
type RegisterView struct {
	Error string
	Name  string
	Email string
	TaxID string
}
