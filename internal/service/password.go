package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/esportlife/site/internal/domain"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns plaintext passwords into salted digests and verifies
// candidates against them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// Argon2Params configures the argon2id key derivation.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultArgon2Params returns the parameters used in production.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    2,
		Memory:  16 * 1024,
		Threads: 2,
		SaltLen: 16,
		KeyLen:  32,
	}
}

const argon2Prefix = "$argon2id$"

// Argon2Hasher hashes passwords with argon2id and encodes the result in PHC
// string format: $argon2id$v=19$m=16384,t=2,p=2$<salt>$<key>.
type Argon2Hasher struct {
	params Argon2Params
}

// NewArgon2Hasher creates an Argon2Hasher with the given parameters.
func NewArgon2Hasher(params Argon2Params) *Argon2Hasher {
	return &Argon2Hasher{params: params}
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix, argon2.Version,
		h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the key with the salt and parameters stored in the
// digest and compares in constant time.
func (h *Argon2Hasher) Verify(password, digest string) bool {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// BcryptHasher hashes passwords with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher. Tests use cost 4 for speed.
func NewBcryptHasher(cost int) *BcryptHasher {
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.ErrPasswordTooLong
		}
		return "", err
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// MultiHasher hashes new passwords with its primary hasher but verifies
// digests produced by any supported algorithm, so changing PASSWORD_HASHER
// does not lock out existing accounts.
type MultiHasher struct {
	primary PasswordHasher
	argon2  PasswordHasher
	bcrypt  PasswordHasher
}

// NewMultiHasher creates a MultiHasher that hashes with primary.
func NewMultiHasher(primary PasswordHasher, argon2Hasher *Argon2Hasher, bcryptHasher *BcryptHasher) *MultiHasher {
	return &MultiHasher{primary: primary, argon2: argon2Hasher, bcrypt: bcryptHasher}
}

func (h *MultiHasher) Hash(password string) (string, error) {
	return h.primary.Hash(password)
}

func (h *MultiHasher) Verify(password, digest string) bool {
	switch {
	case strings.HasPrefix(digest, argon2Prefix):
		return h.argon2.Verify(password, digest)
	case strings.HasPrefix(digest, "$2a$"), strings.HasPrefix(digest, "$2b$"), strings.HasPrefix(digest, "$2y$"):
		return h.bcrypt.Verify(password, digest)
	default:
		return false
	}
}

// NewPasswordHasher builds the hasher selected by name ("argon2id" or
// "bcrypt"), able to verify digests of either algorithm.
func NewPasswordHasher(name string, bcryptCost int) (*MultiHasher, error) {
	a := NewArgon2Hasher(DefaultArgon2Params())
	b := NewBcryptHasher(bcryptCost)
	switch name {
	case "argon2id", "":
		return NewMultiHasher(a, a, b), nil
	case "bcrypt":
		return NewMultiHasher(b, a, b), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}
