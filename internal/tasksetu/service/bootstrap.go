package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store"
	"github.com/aussiebroadwan/tasksetu/pkg/cryptox"
	"github.com/aussiebroadwan/tasksetu/pkg/idx"
	"github.com/aussiebroadwan/tasksetu/pkg/slogx"
)

var (
	ErrBootstrapDisabled     = errors.New("bootstrap is not enabled")
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
)

// BootstrapService creates the first super admin of an empty deployment.
type BootstrapService struct {
	Store store.Store
	Token string // pre-configured bootstrap token; empty disables bootstrap
	Clock Clock
}

// IsBootstrapped reports whether a super admin exists.
func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	n, err := s.Store.Users().CountByRole(ctx, domain.RoleSuperAdmin)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Bootstrap creates the super admin when token matches and none exists yet.
func (s *BootstrapService) Bootstrap(ctx context.Context, token string, req domain.BootstrapData) (domain.User, error) {
	l := slogx.FromContext(ctx)
	now := s.Clock.Now()

	// 1. Validate provided token
	if s.Token == "" {
		return domain.User{}, ErrBootstrapDisabled
	}
	if !cryptox.EqualSecrets(token, s.Token) {
		l.Warn("unauthorized bootstrap attempt")
		return domain.User{}, ErrBootstrapUnauthorized
	}

	// 2. Validate the account
	admin, password, err := newAccount(RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return domain.User{}, err
	}

	// 3. Hash password
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return domain.User{}, err
	}

	admin.ID = idx.NewAt(now).String()
	admin.PasswordHash = hash
	admin.Role = domain.RoleSuperAdmin
	admin.Status = domain.StatusActive
	admin.EmailVerified = true
	admin.CreatedAt = now
	admin.UpdatedAt = now

	// 4. Check and create in one transaction
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		n, err := tx.Users().CountByRole(ctx, domain.RoleSuperAdmin)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrBootstrapAlready
		}
		if err := tx.Users().CreateUser(ctx, admin); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}
		return nil
	})
	if errors.Is(err, ErrBootstrapAlready) {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return domain.User{}, err
	}
	if err != nil {
		l.Error("failed to create super admin", slog.Any("error", err))
		return domain.User{}, err
	}

	l.Info("successfully bootstrapped system", slog.String("admin_user_id", admin.ID))
	return admin, nil
}
