package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/metrics"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store"
	"github.com/aussiebroadwan/tasksetu/pkg/cryptox"
	"github.com/aussiebroadwan/tasksetu/pkg/slogx"
)

// resetMailTimeout bounds a reset email sent after the request returned.
const resetMailTimeout = 30 * time.Second

// PasswordService handles forgotten and changed passwords.
type PasswordService struct {
	Store    store.Store
	Mailer   Mailer
	Metrics  *metrics.Metrics
	Links    Links
	ResetTTL time.Duration
	Clock    Clock

	sending sync.WaitGroup
}

// RequestReset emails a reset link to an active account. It returns nil
// for unknown, invited and inactive accounts alike so callers cannot
// probe which addresses exist.
func (s *PasswordService) RequestReset(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)
	now := s.Clock.Now()

	// 1. Quietly ignore anything that cannot receive a reset.
	email, err := domain.NormalizeEmail(email)
	if err != nil {
		return nil
	}
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		log.Debug("password reset for unknown email")
		return nil
	}
	if err != nil {
		log.Error("failed to load user for password reset", slog.Any("error", err))
		return err
	}
	if !u.IsActive() {
		log.Debug("password reset for non-active account", slog.String("user_id", u.ID))
		return nil
	}

	// 2. Replace any previous token.
	raw, tokenHash, err := newLinkToken()
	if err != nil {
		return err
	}
	expires := now.Add(ttlOrDefault(s.ResetTTL, DefaultResetTTL))
	if err := s.Store.Users().SetResetToken(ctx, u.ID, tokenHash, expires, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		log.Error("failed to store reset token", slog.Any("error", err))
		return err
	}

	log.Info("password reset requested", slog.String("user_id", u.ID))
	s.Metrics.PasswordReset(metrics.ResetRequested)

	// 3. Email the link in the background. The caller's response time must
	// not depend on mail delivery.
	if s.Mailer != nil {
		msg := domain.ResetMessage{
			To:        u.Email,
			Name:      u.FullName(),
			ResetURL:  s.Links.ResetPassword(raw),
			ExpiresAt: expires,
		}
		s.sending.Add(1)
		go func() {
			defer s.sending.Done()
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resetMailTimeout)
			defer cancel()
			deliver(ctx, s.Metrics, metrics.MailReset, func() error {
				return s.Mailer.SendPasswordReset(ctx, msg)
			})
		}()
	}
	return nil
}

// Wait blocks until every reset email handed off by RequestReset has been
// sent or has failed.
func (s *PasswordService) Wait() { s.sending.Wait() }

// ValidateResetToken reports whether token can still be used.
func (s *PasswordService) ValidateResetToken(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, ErrInvalidToken
	}
	u, err := s.Store.Users().GetUserByResetHash(ctx, cryptox.FingerprintToken(token), s.Clock.Now())
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrInvalidToken
	}
	return u, err
}

// ResetPassword sets a new password and consumes the token in one
// conditional write.
func (s *PasswordService) ResetPassword(ctx context.Context, token, password string) error {
	log := slogx.FromContext(ctx)

	if err := domain.ValidatePassword(password); err != nil {
		return err
	}
	if _, err := s.ValidateResetToken(ctx, token); err != nil {
		log.Info("password reset with invalid or expired token")
		s.Metrics.PasswordReset(metrics.ResetRejected)
		return err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return err
	}
	u, err := s.Store.Users().ConsumeResetToken(ctx, cryptox.FingerprintToken(token), hash, s.Clock.Now())
	if errors.Is(err, store.ErrNotFound) {
		s.Metrics.PasswordReset(metrics.ResetRejected)
		return ErrInvalidToken
	}
	if err != nil {
		log.Error("failed to reset password", slog.Any("error", err))
		return err
	}

	log.Info("password reset completed", slog.String("user_id", u.ID))
	s.Metrics.PasswordReset(metrics.ResetCompleted)
	return nil
}

// ChangePassword replaces the password of a signed-in user after checking
// the current one. Any pending reset token is dropped.
func (s *PasswordService) ChangePassword(ctx context.Context, userID, current, next string) error {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if err := cryptox.VerifyPassword(current, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Info("password change with wrong current password", slog.String("user_id", u.ID))
			return ErrInvalidCredentials
		}
		return err
	}
	if err := domain.ValidatePassword(next); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, u.ID, hash, s.Clock.Now()); err != nil {
		log.Error("failed to update password", slog.Any("error", err))
		return err
	}
	log.Info("password changed", slog.String("user_id", u.ID))
	return nil
}
