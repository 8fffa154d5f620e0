package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/esportlife/site/internal/domain"
)

// AuthService verifies credentials and creates accounts.
type AuthService struct {
	users  domain.UserRepository
	hasher PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, hasher PasswordHasher) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
	}
}

// RegisterInput carries the fields of the registration form.
type RegisterInput struct {
	Name                 string
	Email                string
	TaxID                string
	Password             string
	PasswordConfirmation string
}

// Register creates a new user account. A confirmation mismatch is reported
// before any storage access.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Password != in.PasswordConfirmation {
		return nil, domain.ErrPasswordMismatch
	}

	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	taxID := strings.TrimSpace(in.TaxID)
	if name == "" || email == "" || taxID == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email, tax id and password are required", domain.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		TaxID:        taxID,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateRegistration) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Authenticate returns the user identified by login (email or tax ID) if
// password matches. When login is one user's email and another's tax ID,
// the user whose password matches wins. Unknown logins and wrong passwords
// both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (*domain.User, error) {
	login = normalizeLogin(login)
	if login == "" {
		return nil, domain.ErrInvalidCredentials
	}

	users, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Spend the same hashing work as a real check.
			s.hasher.Verify(password, s.dummyDigest())
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	for _, user := range users {
		if s.hasher.Verify(password, user.PasswordHash) {
			return user, nil
		}
	}
	return nil, domain.ErrInvalidCredentials
}

func (s *AuthService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("esportlife-dummy-password")
	})
	return s.dummyHash
}

func normalizeLogin(login string) string {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return strings.ToLower(login)
	}
	return login
}
