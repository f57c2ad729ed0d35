package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store"
	"github.com/aussiebroadwan/tasksetu/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

var (
	ErrInvalidTOTPCode   = errors.New("invalid TOTP code")
	ErrMFANotEnrolled    = errors.New("MFA enrollment has not been started")
	ErrMFANotEnabled     = errors.New("MFA not enabled for this user")
	ErrMFAAlreadyEnabled = errors.New("MFA already enabled for this user")
)

var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// MFAService manages the optional TOTP second factor. Once enabled, Login
// requires a code.
type MFAService struct {
	Store  store.Store
	Issuer string // shown in authenticator apps
	Clock  Clock
}

// Enroll creates a new secret. MFA is not enforced until Confirm succeeds;
// enrolling again before that replaces the secret.
func (s *MFAService) Enroll(ctx context.Context, userID string) (domain.MFAEnrollment, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return domain.MFAEnrollment{}, err
	}
	if u.MFAEnabled() {
		return domain.MFAEnrollment{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: u.Email,
		Period:      totpOpts.Period,
		Digits:      totpOpts.Digits,
		Algorithm:   totpOpts.Algorithm,
	})
	if err != nil {
		return domain.MFAEnrollment{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}
	if err := s.Store.Users().UpdateMFASecret(ctx, u.ID, key.Secret(), s.Clock.Now()); err != nil {
		return domain.MFAEnrollment{}, fmt.Errorf("failed to store MFA secret: %w", err)
	}

	slogx.FromContext(ctx).Info("mfa enrollment started", slog.String("user_id", u.ID))
	return domain.MFAEnrollment{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
		Issuer:          s.Issuer,
		Account:         u.Email,
	}, nil
}

// Confirm checks the first code and turns MFA on.
func (s *MFAService) Confirm(ctx context.Context, userID, code string) error {
	u, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if u.MFAEnabled() {
		return ErrMFAAlreadyEnabled
	}
	if u.MFASecret == nil {
		return ErrMFANotEnrolled
	}

	now := s.Clock.Now()
	if !validateTOTP(code, *u.MFASecret, now) {
		return ErrInvalidTOTPCode
	}
	if err := s.Store.Users().EnableMFA(ctx, u.ID, now); err != nil {
		return fmt.Errorf("failed to enable MFA: %w", err)
	}
	slogx.FromContext(ctx).Info("mfa enabled", slog.String("user_id", u.ID))
	return nil
}

// Disable removes MFA after checking a current code.
func (s *MFAService) Disable(ctx context.Context, userID, code string) error {
	u, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if !u.MFAEnabled() || u.MFASecret == nil {
		return ErrMFANotEnabled
	}

	now := s.Clock.Now()
	if !validateTOTP(code, *u.MFASecret, now) {
		return ErrInvalidTOTPCode
	}
	if err := s.Store.Users().DisableMFA(ctx, u.ID, now); err != nil {
		return fmt.Errorf("failed to disable MFA: %w", err)
	}
	slogx.FromContext(ctx).Info("mfa disabled", slog.String("user_id", u.ID))
	return nil
}

func (s *MFAService) user(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

func validateTOTP(code, secret string, now time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, now, totpOpts)
	return err == nil && ok
}
