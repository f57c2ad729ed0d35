package cryptox

import (
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used unless SetCost overrides it.
const DefaultCost = 12

var (
	// ErrPasswordMismatch is returned when a password does not match its hash.
	ErrPasswordMismatch = errors.New("password does not match")

	// ErrPasswordTooLong is returned for passwords bcrypt would silently truncate.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// MaxPasswordBytes is the longest input bcrypt considers.
const MaxPasswordBytes = 72

var cost atomic.Int64

func init() {
	cost.Store(DefaultCost)
}

// SetCost changes the bcrypt work factor for subsequent hashes. Values
// outside bcrypt's accepted range are clamped. Existing hashes keep the
// cost they were created with.
func SetCost(c int) {
	c = max(c, bcrypt.MinCost)
	c = min(c, bcrypt.MaxCost)
	cost.Store(int64(c))
}

// Cost reports the current bcrypt work factor.
func Cost() int { return int(cost.Load()) }

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), Cost())
	if err != nil {
		return "", fmt.Errorf("cryptox: hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a bcrypt hash.
// A wrong password yields ErrPasswordMismatch; a malformed hash yields a
// different error so callers can tell corruption from a bad login.
func VerifyPassword(password, encodedHash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("cryptox: invalid hash: %w", err)
	}
}

// HashCost returns the work factor embedded in an existing hash.
func HashCost(encodedHash string) (int, error) {
	return bcrypt.Cost([]byte(encodedHash))
}

// NeedsRehash reports whether encodedHash was made with a lower work factor
// than the current one. Unparseable hashes report false.
func NeedsRehash(encodedHash string) bool {
	c, err := HashCost(encodedHash)
	return err == nil && c < Cost()
}
