package tasksdk

import "time"

// ============================================================================
// Common
// ============================================================================

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	Error            string `json:"error"             example:"invalid_request"`
	ErrorDescription string `json:"error_description" example:"Request body must be valid JSON"`
}

// ValidationErrorResponse adds per-field reasons to the error envelope.
type ValidationErrorResponse struct {
	Error            string            `json:"error"             example:"validation_error"`
	ErrorDescription string            `json:"error_description" example:"validation failed for some fields"`
	Details          map[string]string `json:"details,omitempty"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// ============================================================================
// Users and sessions
// ============================================================================

// User is the public view of an account. It never carries secrets.
type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Role           string     `json:"role"            example:"member"`
	OrganizationID string     `json:"organization_id,omitempty"`
	Status         string     `json:"status"          example:"active"`
	IsActive       bool       `json:"is_active"`
	EmailVerified  bool       `json:"email_verified"`
	MFAEnabled     bool       `json:"mfa_enabled"`
	InvitedBy      string     `json:"invited_by,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// LoginRequest authenticates with email and password. OTP is required once
// the account has a confirmed TOTP factor.
type LoginRequest struct {
	Email    string `json:"email"    example:"admin@acme.test"`
	Password string `json:"password" example:"Abc12345"`
	OTP      string `json:"otp,omitempty"`
}

// LoginResponse carries the session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// VerifyResponse reports the identity behind a session token, re-read from
// the store.
type VerifyResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id,omitempty"`
	User     User   `json:"user"`
}

// RegisterRequest creates a tenant-less individual account.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RegisterOrganizationRequest creates an organization and its first admin.
type RegisterOrganizationRequest struct {
	OrganizationName string `json:"organization_name" example:"Acme Corp"`
	Slug             string `json:"slug,omitempty"    example:"acme-corp"`
	Type             string `json:"type,omitempty"    example:"company"`
	AdminEmail       string `json:"admin_email"`
	AdminPassword    string `json:"admin_password"`
	AdminFirstName   string `json:"admin_first_name"`
	AdminLastName    string `json:"admin_last_name"`
}

// RegisterOrganizationResponse returns the new tenant, its admin and a
// session for that admin.
type RegisterOrganizationResponse struct {
	Organization Organization `json:"organization"`
	User         User         `json:"user"`
	Token        string       `json:"token"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

// TokenRequest carries an opaque single-use token.
type TokenRequest struct {
	Token string `json:"token"`
}

// ForgotPasswordRequest asks for a reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest consumes a reset token.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ChangePasswordRequest changes the signed-in user's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ResetTokenResponse reports a reset token as usable.
type ResetTokenResponse struct {
	Valid bool   `json:"valid"`
	Email string `json:"email"`
}

// ============================================================================
// Invitations
// ============================================================================

// InviteSpec is one entry of a batch invite. Either Role or Roles may be
// sent; together they must name exactly one role.
type InviteSpec struct {
	Email string   `json:"email"`
	Role  string   `json:"role,omitempty"  example:"member"`
	Roles []string `json:"roles,omitempty"`
}

// InviteUsersRequest invites several people into the caller's organization.
type InviteUsersRequest struct {
	Invites []InviteSpec `json:"invites"`
}

// InviteError explains why one entry of a batch failed.
type InviteError struct {
	Email   string `json:"email"`
	Error   string `json:"error"   example:"seat_limit_reached"`
	Message string `json:"message"`
}

// InviteUsersResponse summarises a batch invite. Entries are independent:
// failures do not undo earlier successes.
type InviteUsersResponse struct {
	SuccessCount int           `json:"successCount"`
	Invited      []Member      `json:"invited"`
	Errors       []InviteError `json:"errors"`
}

// PendingInvite is what an invite token resolves to.
type PendingInvite struct {
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	OrganizationID   string    `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// AcceptInviteRequest activates an invited account.
type AcceptInviteRequest struct {
	Token     string `json:"token"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ============================================================================
// Organizations
// ============================================================================

// OrganizationSettings are the per-tenant policy switches.
type OrganizationSettings struct {
	AllowPublicSignup        bool `json:"allow_public_signup"`
	RequireEmailVerification bool `json:"require_email_verification"`
}

// Organization is a tenant.
type Organization struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Slug         string               `json:"slug"`
	Type         string               `json:"type"   example:"company"`
	Status       string               `json:"status" example:"active"`
	Settings     OrganizationSettings `json:"settings"`
	LicenseSeats int                  `json:"license_seats"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// UpdateSettingsRequest replaces the organization settings. Absent fields
// keep their current value.
type UpdateSettingsRequest struct {
	AllowPublicSignup        *bool `json:"allow_public_signup,omitempty"`
	RequireEmailVerification *bool `json:"require_email_verification,omitempty"`
}

// UpdateProfileRequest renames an organization. The slug never changes.
type UpdateProfileRequest struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// License is the seat accounting of an organization.
// Used = Active + Pending and Used + Available = Total.
type License struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Pending   int `json:"pending"`
	Used      int `json:"used"`
	Available int `json:"available"`
}

// Member is a user as listed by users-detailed.
type Member struct {
	User
	InviteExpiresAt *time.Time `json:"invite_expires_at,omitempty"`
	InviteExpired   bool       `json:"invite_expired"`
}

// ChangeRoleRequest sets a member's role.
type ChangeRoleRequest struct {
	Role string `json:"role" example:"org_admin"`
}

// SetLicenseRequest sets the licensed seat count.
type SetLicenseRequest struct {
	Seats int `json:"seats" example:"25"`
}

// SetStatusRequest suspends or re-activates an organization.
type SetStatusRequest struct {
	Status string `json:"status" example:"suspended"`
}

// ============================================================================
// Roles, MFA and bootstrap
// ============================================================================

// RolesResponse lists the canonical role vocabulary and accepted aliases.
type RolesResponse struct {
	Roles   []string          `json:"roles"`
	Aliases map[string]string `json:"aliases"`
}

// MFAEnrollResponse carries the secret for authenticator apps.
type MFAEnrollResponse struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
}

// MFACodeRequest carries a TOTP code.
type MFACodeRequest struct {
	Code string `json:"code" example:"123456"`
}

// BootstrapRequest creates the first super admin.
type BootstrapRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// BootstrapResponse identifies the created super admin.
type BootstrapResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
