package gen

import (
	"database/sql"
)

type Organization struct {
	ID                       string
	Name                     string
	Slug                     string
	Type                     string
	Status                   string
	AllowPublicSignup        bool
	RequireEmailVerification bool
	LicenseSeats             int64
	CreatedAt                int64
	UpdatedAt                int64
}

type User struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	PasswordHash    sql.NullString
	Role            string
	OrganizationID  sql.NullString
	Status          string
	EmailVerified   bool
	InvitedBy       sql.NullString
	InviteTokenHash sql.NullString
	InviteExpiresAt sql.NullInt64
	ResetTokenHash  sql.NullString
	ResetExpiresAt  sql.NullInt64
	VerifyTokenHash sql.NullString
	VerifyExpiresAt sql.NullInt64
	MfaSecret       sql.NullString
	MfaEnabledAt    sql.NullInt64
	LastLoginAt     sql.NullInt64
	CreatedAt       int64
	UpdatedAt       int64
}
