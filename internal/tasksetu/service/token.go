package service

import (
	"time"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/pkg/jwtx"
)

// TokenService issues and verifies session tokens.
type TokenService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Issuer   string
	TTL      time.Duration
	Clock    Clock
}

// NewTokenService builds an HS256 token service from the shared secret.
func NewTokenService(secret []byte, issuer string, ttl time.Duration) (*TokenService, error) {
	hs, err := jwtx.NewHS256(secret, issuer)
	if err != nil {
		return nil, err
	}
	return &TokenService{
		Signer:   hs,
		Verifier: hs,
		Issuer:   issuer,
		TTL:      ttlOrDefault(ttl, jwtx.DefaultSessionTTL),
	}, nil
}

// Issue signs a session token for u. The role and tenant embedded in it
// are informational; requests are authorized against a fresh read.
func (s *TokenService) Issue(u domain.User) (string, time.Time, error) {
	now := s.Clock.Now()
	claims := jwtx.NewSessionClaims(
		u.ID,
		u.Email,
		u.Role.String(),
		u.OrganizationID,
		ttlOrDefault(s.TTL, jwtx.DefaultSessionTTL),
		s.Issuer,
		now,
	)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAt.Time, nil
}

// Verify checks signature, expiry and issuer only.
func (s *TokenService) Verify(token string) (jwtx.Claims, error) {
	return s.Verifier.Verify(token)
}
