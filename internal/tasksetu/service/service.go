// Package service implements the identity and tenancy use cases on top of
// store.Store. Services are plain structs wired once at startup.
package service

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/metrics"
	"github.com/aussiebroadwan/tasksetu/pkg/cryptox"
	"github.com/aussiebroadwan/tasksetu/pkg/slogx"
)

// Default lifetimes of the link tokens.
const (
	DefaultInviteTTL = 7 * 24 * time.Hour
	DefaultResetTTL  = 30 * time.Minute
	DefaultVerifyTTL = 24 * time.Hour
)

// Mailer delivers account emails. A failed send never undoes the state
// change that triggered it.
type Mailer interface {
	SendInvite(ctx context.Context, msg domain.InviteMessage) error
	SendPasswordReset(ctx context.Context, msg domain.ResetMessage) error
	SendVerification(ctx context.Context, msg domain.VerificationMessage) error
}

// Clock returns the current time. The zero value uses the wall clock.
type Clock func() time.Time

func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// Links builds the frontend URLs that go into emails.
type Links struct {
	BaseURL string
}

func (l Links) AcceptInvite(token string) string  { return l.build("/accept-invite", token) }
func (l Links) ResetPassword(token string) string { return l.build("/reset-password", token) }
func (l Links) VerifyEmail(token string) string   { return l.build("/verify-email", token) }

func (l Links) build(path, token string) string {
	return strings.TrimRight(l.BaseURL, "/") + path + "?token=" + url.QueryEscape(token)
}

// newLinkToken returns a fresh single-use token and the fingerprint that
// is stored in its place.
func newLinkToken() (raw, hash string, err error) {
	tok, err := cryptox.NewLinkToken()
	if err != nil {
		return "", "", err
	}
	return tok.Raw, tok.Fingerprint, nil
}

// deliver runs send and records a failure without propagating it.
func deliver(ctx context.Context, m *metrics.Metrics, kind string, send func() error) {
	if err := send(); err != nil {
		slogx.FromContext(ctx).Error("failed to send email",
			slog.String("kind", kind),
			slog.Any("error", err),
		)
		m.MailFailure(kind)
	}
}

func ttlOrDefault(ttl, def time.Duration) time.Duration {
	if ttl <= 0 {
		return def
	}
	return ttl
}
