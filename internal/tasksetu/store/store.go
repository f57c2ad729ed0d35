package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface implemented by the sqlite and
// mongo drivers. Repositories are reached through methods so that code
// running inside WithTx can only see the transaction-scoped ones.
type Store interface {
	Users() Users
	Organizations() Organizations

	// ApplyMigrations brings the schema (or indexes) up to date.
	ApplyMigrations() error

	// WithTx runs fn in a transaction, committing when fn returns nil.
	// Seat checks and the writes they guard must happen inside one call.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx exposes the repositories bound to a running transaction.
type Tx interface {
	Users() Users
	Organizations() Organizations
}

// AcceptInvite is the payload of Users.AcceptInvite. Empty names keep the
// values captured at invite time.
type AcceptInvite struct {
	TokenHash    string
	PasswordHash string
	FirstName    string
	LastName     string
}

// Users stores accounts and their embedded invitation, reset and
// verification state. Timestamps are supplied by the caller.
type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// DeletePendingUser removes an invited user of orgID. Active and
	// inactive users are never deleted; those yield ErrNotFound.
	DeletePendingUser(ctx context.Context, orgID, userID string) error

	ListByOrganization(ctx context.Context, orgID string) ([]domain.User, error)

	// CountSeats returns active members and unexpired invitations of orgID.
	CountSeats(ctx context.Context, orgID string, now time.Time) (active, pending int, err error)

	// CountActiveByRole counts active users of orgID holding role.
	CountActiveByRole(ctx context.Context, orgID string, role domain.Role) (int, error)

	// CountByRole counts users with role across all organizations.
	CountByRole(ctx context.Context, role domain.Role) (int, error)

	UpdatePasswordHash(ctx context.Context, userID, hash string, now time.Time) error
	SetStatus(ctx context.Context, userID string, status domain.UserStatus, now time.Time) error
	SetRole(ctx context.Context, userID string, role domain.Role, now time.Time) error
	TouchLastLogin(ctx context.Context, userID string, now time.Time) error

	// SetInviteToken replaces the invite token of a pending user, which
	// invalidates the previous one. ErrNotFound unless status is invited.
	SetInviteToken(ctx context.Context, userID, tokenHash string, expiresAt, now time.Time) error

	// GetPendingByInviteHash resolves an unexpired invite token.
	GetPendingByInviteHash(ctx context.Context, tokenHash string, now time.Time) (domain.User, error)

	// AcceptInvite activates the invited user holding an unexpired token in
	// a single conditional write and clears the token. A second call with
	// the same token returns ErrNotFound.
	AcceptInvite(ctx context.Context, in AcceptInvite, now time.Time) (domain.User, error)

	// SetResetToken stores a reset token for an active user.
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt, now time.Time) error
	GetUserByResetHash(ctx context.Context, tokenHash string, now time.Time) (domain.User, error)

	// ConsumeResetToken sets the password and clears the token in one
	// conditional write.
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (domain.User, error)

	SetVerifyToken(ctx context.Context, userID, tokenHash string, expiresAt, now time.Time) error

	// ConsumeVerifyToken marks the email verified and clears the token.
	ConsumeVerifyToken(ctx context.Context, tokenHash string, now time.Time) (domain.User, error)

	UpdateMFASecret(ctx context.Context, userID, secret string, now time.Time) error
	EnableMFA(ctx context.Context, userID string, now time.Time) error
	DisableMFA(ctx context.Context, userID string, now time.Time) error

	// ClearExpiredTokens drops reset and verification tokens past expiry.
	ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error)

	// DeleteExpiredInvites removes pending users whose invite expired
	// before the cutoff.
	DeleteExpiredInvites(ctx context.Context, before time.Time) (int64, error)
}

// Organizations stores tenants. There is no delete.
type Organizations interface {
	// CreateOrganization returns ErrAlreadyExists when the slug is taken.
	CreateOrganization(ctx context.Context, o domain.Organization) error

	GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (domain.Organization, error)
	ListOrganizations(ctx context.Context) ([]domain.Organization, error)

	UpdateSettings(ctx context.Context, id string, s domain.OrganizationSettings, now time.Time) error
	UpdateProfile(ctx context.Context, id, name string, typ domain.OrganizationType, now time.Time) error
	SetLicenseSeats(ctx context.Context, id string, seats int, now time.Time) error
	SetStatus(ctx context.Context, id string, status domain.OrganizationStatus, now time.Time) error
}
