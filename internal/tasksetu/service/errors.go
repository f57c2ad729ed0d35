package service

import "errors"

// Authentication.
var (
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrAccountInactive       = errors.New("account is inactive")
	ErrOrganizationSuspended = errors.New("organization is suspended")
	ErrEmailNotVerified      = errors.New("email address has not been verified")
	ErrMFARequired           = errors.New("a valid one-time code is required")
)

// Authorization.
var (
	ErrForbidden            = errors.New("forbidden")
	ErrLastAdmin            = errors.New("organization must keep at least one active admin")
	ErrIndividualNotAllowed = errors.New("individual accounts cannot manage an organization")
	ErrSignupDisabled       = errors.New("public signup is disabled for this organization")
)

// Lookup. ErrInvalidToken is deliberately the same for unknown, used and
// expired tokens.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrInvalidToken         = errors.New("invalid or expired token")
)

// Validation.
var (
	ErrInvalidRole    = errors.New("role must be org_admin or member")
	ErrInvalidRequest = errors.New("invalid request")
)

// Conflicts.
var (
	ErrEmailTaken       = errors.New("email address is already registered")
	ErrAlreadyMember    = errors.New("user is already a member of this organization")
	ErrSeatLimitReached = errors.New("no license seats available")
	ErrSlugTaken        = errors.New("organization slug is already taken")
	ErrNotPending       = errors.New("user has no pending invitation")
	ErrUserPending      = errors.New("user has not accepted the invitation yet")
)
