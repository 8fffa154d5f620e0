// Package session implements the session table: stores mapping opaque
// cookie tokens to authenticated users.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// TokenBytes is the amount of randomness in a session token (256 bits).
const TokenBytes = 32

// NewToken returns a URL-safe random token suitable for a cookie value.
func NewToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
