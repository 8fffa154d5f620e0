package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrPasswordMismatch      = errors.New("passwords do not match")
	ErrDuplicateRegistration = errors.New("email or tax id already registered")
	ErrInvalidInput          = errors.New("invalid input")
	ErrStorageUnavailable    = errors.New("storage unavailable")

	// ErrPasswordTooLong is an ErrInvalidInput raised by bcrypt's 72-byte limit.
	ErrPasswordTooLong = fmt.Errorf("%w: password longer than 72 bytes", ErrInvalidInput)
)
