package domain

import (
	"context"
	"strings"
	"time"
)

// User represents a registered customer. Users are created on registration
// and never mutated afterwards.
type User struct {
	ID           int64
	Name         string
	Email        string
	TaxID        string // CPF or CNPJ
	PasswordHash string
	CreatedAt    time.Time
}

// FirstName returns the first word of the user's full name, which is what
// the site shows in its navigation bar.
func (u *User) FirstName() string {
	fields := strings.Fields(u.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	// FindByLogin returns every user whose email or tax ID equals login,
	// oldest first. One user's email may equal another's tax ID, so there
	// can be two. ErrNotFound when there are none.
	FindByLogin(ctx context.Context, login string) ([]*User, error)
}
