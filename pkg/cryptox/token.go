package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// LinkTokenBytes is the entropy carried by invitation, password reset and
// email verification links: 256 bits, 43 base64url characters.
const LinkTokenBytes = 32

// LinkToken is a single-use secret mailed to a user. Raw only ever leaves
// the process inside an email; Fingerprint is what gets stored.
type LinkToken struct {
	Raw         string
	Fingerprint string
}

// NewLinkToken draws a fresh link token.
func NewLinkToken() (LinkToken, error) {
	raw, err := GenerateToken(LinkTokenBytes)
	if err != nil {
		return LinkToken{}, err
	}
	return LinkToken{Raw: raw, Fingerprint: FingerprintToken(raw)}, nil
}

// GenerateToken returns size random bytes, base64url encoded without padding.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MustGenerateToken panics where GenerateToken would fail. Startup only.
func MustGenerateToken(size int) string {
	token, err := GenerateToken(size)
	if err != nil {
		panic(fmt.Sprintf("cryptox: %v", err))
	}
	return token
}

// FingerprintToken is the SHA-256 of token, base64url encoded. Stores look
// tokens up by this value.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// EqualSecrets compares two shared secrets in constant time. Both inputs are
// hashed first so the comparison does not leak their lengths.
func EqualSecrets(a, b string) bool {
	fa := sha256.Sum256([]byte(a))
	fb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(fa[:], fb[:]) == 1
}
