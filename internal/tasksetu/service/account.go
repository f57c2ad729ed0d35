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
	"github.com/aussiebroadwan/tasksetu/pkg/idx"
	"github.com/aussiebroadwan/tasksetu/pkg/slogx"
)

// AccountService covers sign-in, self-registration and email verification.
type AccountService struct {
	Store     store.Store
	Tokens    *TokenService
	Mailer    Mailer
	Metrics   *metrics.Metrics
	Links     Links
	VerifyTTL time.Duration
	Clock     Clock
}

// LoginResult is a successful sign-in.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

// RegisterInput is the self-service registration payload.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Unknown emails still pay for one bcrypt comparison so response timing
// does not reveal which addresses are registered.
var dummyHash = sync.OnceValue(func() string {
	h, _ := cryptox.HashPassword("tasksetu-timing-equalizer-0")
	return h
})

// Login authenticates email and password, and the TOTP code once MFA is
// enabled. Unknown emails, wrong passwords and invited accounts all yield
// ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, email, password, otp string) (LoginResult, error) {
	log := slogx.FromContext(ctx)
	now := s.Clock.Now()

	// 1. Look up the account.
	email, err := domain.NormalizeEmail(email)
	if err != nil {
		s.Metrics.Login(metrics.LoginFailure)
		return LoginResult{}, ErrInvalidCredentials
	}
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		_ = cryptox.VerifyPassword(password, dummyHash())
		log.Info("login for unknown email")
		s.Metrics.Login(metrics.LoginFailure)
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		log.Error("failed to load user for login", slog.Any("error", err))
		return LoginResult{}, err
	}

	// 2. Invited users have no password yet.
	if u.IsPending() || u.PasswordHash == "" {
		_ = cryptox.VerifyPassword(password, dummyHash())
		log.Info("login for pending invitation", slog.String("user_id", u.ID))
		s.Metrics.Login(metrics.LoginFailure)
		return LoginResult{}, ErrInvalidCredentials
	}

	// 3. Password.
	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Info("login with wrong password", slog.String("user_id", u.ID))
			s.Metrics.Login(metrics.LoginFailure)
			return LoginResult{}, ErrInvalidCredentials
		}
		log.Error("stored password hash unusable", slog.String("user_id", u.ID), slog.Any("error", err))
		return LoginResult{}, err
	}

	// 4. Account and tenant state.
	if !u.IsActive() {
		log.Info("login refused for inactive account", slog.String("user_id", u.ID))
		s.Metrics.Login(metrics.LoginRefused)
		return LoginResult{}, ErrAccountInactive
	}
	if err := s.checkTenant(ctx, u); err != nil {
		s.Metrics.Login(metrics.LoginRefused)
		return LoginResult{}, err
	}

	// 5. Second factor.
	if u.MFAEnabled() {
		if otp == "" || u.MFASecret == nil || !validateTOTP(otp, *u.MFASecret, now) {
			log.Info("login missing valid one-time code", slog.String("user_id", u.ID))
			s.Metrics.Login(metrics.LoginMFARequired)
			return LoginResult{}, ErrMFARequired
		}
	}

	// 6. Upgrade the stored hash after the work factor was raised.
	if cryptox.NeedsRehash(u.PasswordHash) {
		s.rehash(ctx, u.ID, password, now)
	}

	// 7. Issue the session.
	token, exp, err := s.Tokens.Issue(u)
	if err != nil {
		log.Error("failed to sign session token", slog.Any("error", err))
		return LoginResult{}, err
	}
	if err := s.Store.Users().TouchLastLogin(ctx, u.ID, now); err != nil {
		log.Warn("failed to record last login", slog.String("user_id", u.ID), slog.Any("error", err))
	} else {
		u.LastLoginAt = &now
	}

	log.Info("user logged in", slog.String("user_id", u.ID), slog.String("role", u.Role.String()))
	s.Metrics.Login(metrics.LoginSuccess)
	return LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// rehash stores a fresh hash of a just-verified password. Failures are
// logged only; the old hash stays valid.
func (s *AccountService) rehash(ctx context.Context, userID, password string, now time.Time) {
	log := slogx.FromContext(ctx)

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Warn("failed to rehash password", slog.String("user_id", userID), slog.Any("error", err))
		return
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash, now); err != nil {
		log.Warn("failed to store rehashed password", slog.String("user_id", userID), slog.Any("error", err))
		return
	}
	log.Info("password rehashed at current cost", slog.String("user_id", userID))
}

// checkTenant applies the organization policies to a signing-in user.
func (s *AccountService) checkTenant(ctx context.Context, u domain.User) error {
	log := slogx.FromContext(ctx)

	if u.OrganizationID == "" {
		if u.Role == domain.RoleIndividual && !u.EmailVerified {
			log.Info("login refused for unverified individual", slog.String("user_id", u.ID))
			return ErrEmailNotVerified
		}
		return nil
	}

	org, err := s.Store.Organizations().GetOrganizationByID(ctx, u.OrganizationID)
	if err != nil {
		log.Error("failed to load organization for login",
			slog.String("organization_id", u.OrganizationID),
			slog.Any("error", err),
		)
		return err
	}
	if org.Suspended() {
		log.Info("login refused for suspended organization", slog.String("organization_id", org.ID))
		return ErrOrganizationSuspended
	}
	if org.Settings.RequireEmailVerification && !u.EmailVerified {
		log.Info("login refused for unverified email", slog.String("user_id", u.ID))
		return ErrEmailNotVerified
	}
	return nil
}

// RegisterIndividual creates a tenant-less account. It cannot sign in
// until the emailed verification link is used.
func (s *AccountService) RegisterIndividual(ctx context.Context, in RegisterInput) (domain.User, error) {
	log := slogx.FromContext(ctx)
	now := s.Clock.Now()

	u, password, err := newAccount(in)
	if err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}
	raw, tokenHash, err := newLinkToken()
	if err != nil {
		return domain.User{}, err
	}
	expires := now.Add(ttlOrDefault(s.VerifyTTL, DefaultVerifyTTL))

	u.ID = idx.NewAt(now).String()
	u.PasswordHash = hash
	u.Role = domain.RoleIndividual
	u.Status = domain.StatusActive
	u.VerifyTokenHash = tokenHash
	u.VerifyExpiresAt = &expires
	u.CreatedAt = now
	u.UpdatedAt = now

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Info("registration with taken email")
			return domain.User{}, ErrEmailTaken
		}
		log.Error("failed to create individual user", slog.Any("error", err))
		return domain.User{}, err
	}

	log.Info("individual user registered", slog.String("user_id", u.ID))
	s.sendVerification(ctx, u, raw, expires)
	return u, nil
}

// SignupToOrganization joins an organization that allows public signup.
// The new member takes a seat immediately.
func (s *AccountService) SignupToOrganization(ctx context.Context, slug string, in RegisterInput) (domain.User, error) {
	log := slogx.FromContext(ctx)
	now := s.Clock.Now()

	// 1. Organization policy.
	org, err := s.Store.Organizations().GetOrganizationBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrOrganizationNotFound
	}
	if err != nil {
		log.Error("failed to load organization", slog.String("slug", slug), slog.Any("error", err))
		return domain.User{}, err
	}
	if org.Suspended() {
		return domain.User{}, ErrOrganizationSuspended
	}
	if !org.Settings.AllowPublicSignup {
		log.Info("public signup refused", slog.String("organization_id", org.ID))
		return domain.User{}, ErrSignupDisabled
	}

	// 2. Account fields.
	u, password, err := newAccount(in)
	if err != nil {
		return domain.User{}, err
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	u.ID = idx.NewAt(now).String()
	u.PasswordHash = hash
	u.Role = domain.RoleMember
	u.OrganizationID = org.ID
	u.Status = domain.StatusActive
	u.EmailVerified = !org.Settings.RequireEmailVerification
	u.CreatedAt = now
	u.UpdatedAt = now

	var raw string
	var expires time.Time
	if !u.EmailVerified {
		var tokenHash string
		raw, tokenHash, err = newLinkToken()
		if err != nil {
			return domain.User{}, err
		}
		expires = now.Add(ttlOrDefault(s.VerifyTTL, DefaultVerifyTTL))
		u.VerifyTokenHash = tokenHash
		u.VerifyExpiresAt = &expires
	}

	// 3. Seat check and insert together.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		active, pending, err := tx.Users().CountSeats(ctx, org.ID, now)
		if err != nil {
			return err
		}
		if !domain.NewLicense(org.LicenseSeats, active, pending).HasSeat() {
			return ErrSeatLimitReached
		}
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}
		return nil
	})
	switch {
	case errors.Is(err, ErrSeatLimitReached), errors.Is(err, ErrEmailTaken):
		log.Info("public signup rejected", slog.String("organization_id", org.ID), slog.Any("reason", err))
		return domain.User{}, err
	case err != nil:
		log.Error("failed to create member", slog.Any("error", err))
		return domain.User{}, err
	}

	log.Info("member signed up", slog.String("user_id", u.ID), slog.String("organization_id", org.ID))
	if raw != "" {
		s.sendVerification(ctx, u, raw, expires)
	}
	return u, nil
}

// VerifyEmail consumes a verification token.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, ErrInvalidToken
	}
	u, err := s.Store.Users().ConsumeVerifyToken(ctx, cryptox.FingerprintToken(token), s.Clock.Now())
	if errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Info("verification with invalid or expired token")
		return domain.User{}, ErrInvalidToken
	}
	if err != nil {
		return domain.User{}, err
	}
	slogx.FromContext(ctx).Info("email verified", slog.String("user_id", u.ID))
	return u, nil
}

// CurrentUser returns the freshly stored user.
func (s *AccountService) CurrentUser(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// Identity returns the user and, for tenant members, the organization.
// Used by the authentication middleware on every request.
func (s *AccountService) Identity(ctx context.Context, userID string) (domain.User, *domain.Organization, error) {
	u, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return domain.User{}, nil, err
	}
	if u.OrganizationID == "" {
		return u, nil, nil
	}
	org, err := s.Store.Organizations().GetOrganizationByID(ctx, u.OrganizationID)
	if err != nil {
		return domain.User{}, nil, err
	}
	return u, &org, nil
}

func (s *AccountService) sendVerification(ctx context.Context, u domain.User, token string, expires time.Time) {
	if s.Mailer == nil {
		return
	}
	deliver(ctx, s.Metrics, metrics.MailVerification, func() error {
		return s.Mailer.SendVerification(ctx, domain.VerificationMessage{
			To:        u.Email,
			Name:      u.FullName(),
			VerifyURL: s.Links.VerifyEmail(token),
			ExpiresAt: expires,
		})
	})
}

// newAccount validates the registration fields.
func newAccount(in RegisterInput) (domain.User, string, error) {
	email, err := domain.NormalizeEmail(in.Email)
	if err != nil {
		return domain.User{}, "", err
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		return domain.User{}, "", err
	}
	first, err := domain.NormalizeName(in.FirstName)
	if err != nil {
		return domain.User{}, "", err
	}
	last, err := domain.NormalizeName(in.LastName)
	if err != nil {
		return domain.User{}, "", err
	}
	return domain.User{Email: email, FirstName: first, LastName: last}, in.Password, nil
}
