package domain

import (
	"context"
	"time"
)

// Session maps an opaque token handed to the browser to an authenticated user.
type Session struct {
	Token       string    `json:"-"`
	UserID      int64     `json:"user_id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SessionStore holds live sessions. Implementations must be safe for
// concurrent use.
type SessionStore interface {
	Create(ctx context.Context, userID int64, displayName string) (*Session, error)
	// Lookup returns ErrNotFound for unknown or expired tokens.
	Lookup(ctx context.Context, token string) (*Session, error)
	// Delete is a no-op for unknown tokens.
	Delete(ctx context.Context, token string) error
}
