// Package mail renders account emails and delivers them over SMTP, or
// just logs them when no relay is configured.
package mail

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/pkg/slogx"
)

// LogMailer writes the link of every email to the log. For development
// only: the log then contains live tokens.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) SendInvite(ctx context.Context, msg domain.InviteMessage) error {
	m.logger(ctx).Info("invite email",
		slog.String("to", msg.To),
		slog.String("organization", msg.OrganizationName),
		slog.String("role", msg.Role.String()),
		slog.String("link", msg.AcceptURL),
		slog.Time("expires_at", msg.ExpiresAt),
	)
	return nil
}

func (m LogMailer) SendPasswordReset(ctx context.Context, msg domain.ResetMessage) error {
	m.logger(ctx).Info("password reset email",
		slog.String("to", msg.To),
		slog.String("link", msg.ResetURL),
		slog.Time("expires_at", msg.ExpiresAt),
	)
	return nil
}

func (m LogMailer) SendVerification(ctx context.Context, msg domain.VerificationMessage) error {
	m.logger(ctx).Info("verification email",
		slog.String("to", msg.To),
		slog.String("link", msg.VerifyURL),
		slog.Time("expires_at", msg.ExpiresAt),
	)
	return nil
}

func (m LogMailer) logger(ctx context.Context) *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slogx.FromContext(ctx)
}
