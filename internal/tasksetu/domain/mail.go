package domain

import "time"

// InviteMessage asks the recipient to accept an invitation.
type InviteMessage struct {
	To               string
	OrganizationName string
	InviterName      string
	Role             Role
	AcceptURL        string
	ExpiresAt        time.Time
}

// ResetMessage carries a password reset link.
type ResetMessage struct {
	To        string
	Name      string
	ResetURL  string
	ExpiresAt time.Time
}

// VerificationMessage carries an email verification link.
type VerificationMessage struct {
	To        string
	Name      string
	VerifyURL string
	ExpiresAt time.Time
}
