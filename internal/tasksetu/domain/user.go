package domain

import "time"

type UserStatus string

const (
	StatusInvited  UserStatus = "invited"
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
)

// User is an account and, for tenant roles, its membership in one
// organization. PasswordHash is empty exactly while Status is invited.
// Token fields hold SHA-256 fingerprints, never the tokens themselves.
type User struct {
	ID             string
	Email          string
	FirstName      string
	LastName       string
	PasswordHash   string
	Role           Role
	OrganizationID string
	Status         UserStatus
	EmailVerified  bool
	InvitedBy      string

	InviteTokenHash string
	InviteExpiresAt *time.Time
	ResetTokenHash  string
	ResetExpiresAt  *time.Time
	VerifyTokenHash string
	VerifyExpiresAt *time.Time

	MFASecret    *string    // base32 TOTP secret, nil until enrolled
	MFAEnabledAt *time.Time // nil until the first code is confirmed

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive is derived from Status; there is no separate flag.
func (u User) IsActive() bool { return u.Status == StatusActive }

func (u User) IsPending() bool { return u.Status == StatusInvited }

func (u User) MFAEnabled() bool { return u.MFAEnabledAt != nil }

// InviteExpired reports whether a pending invite can no longer be accepted.
func (u User) InviteExpired(now time.Time) bool {
	return u.IsPending() && (u.InviteExpiresAt == nil || !u.InviteExpiresAt.After(now))
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Member is a user as seen by an organization admin.
type Member struct {
	User
	InviteExpired bool
}

// PendingMembership is what an invite token resolves to.
type PendingMembership struct {
	User         User
	Organization Organization
}
