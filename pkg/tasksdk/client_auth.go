package tasksdk

import (
	"context"
	"net/http"
	"net/url"
)

// Login authenticates and returns a session bound to the issued token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*Session, *LoginResponse, error) {
	resp, err := call[LoginResponse](ctx, c.doPublic, http.MethodPost, "/api/auth/login", req, http.StatusOK)
	if err != nil {
		return nil, nil, err
	}
	return c.WithToken(resp.Token), resp, nil
}

// Register creates an individual account. The account must verify its
// email before it can log in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	return call[User](ctx, c.doPublic, http.MethodPost, "/api/auth/register", req, http.StatusCreated)
}

// RegisterOrganization creates an organization and signs in its first admin.
func (c *Client) RegisterOrganization(ctx context.Context, req RegisterOrganizationRequest) (*Session, *RegisterOrganizationResponse, error) {
	resp, err := call[RegisterOrganizationResponse](ctx, c.doPublic, http.MethodPost, "/api/auth/register-organization", req, http.StatusCreated)
	if err != nil {
		return nil, nil, err
	}
	return c.WithToken(resp.Token), resp, nil
}

// Signup joins an organization that allows public signup.
func (c *Client) Signup(ctx context.Context, slug string, req RegisterRequest) (*User, error) {
	return call[User](ctx, c.doPublic, http.MethodPost, "/api/auth/signup/"+url.PathEscape(slug), req, http.StatusCreated)
}

// VerifyEmail consumes an email verification token.
func (c *Client) VerifyEmail(ctx context.Context, token string) (*MessageResponse, error) {
	return call[MessageResponse](ctx, c.doPublic, http.MethodPost, "/api/auth/verify-email", TokenRequest{Token: token}, http.StatusOK)
}

// ForgotPassword requests a reset link. The response is the same whether
// or not the email is known.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	return call[MessageResponse](ctx, c.doPublic, http.MethodPost, "/api/auth/forgot-password", ForgotPasswordRequest{Email: email}, http.StatusOK)
}

// ValidateResetToken checks a reset token without consuming it.
func (c *Client) ValidateResetToken(ctx context.Context, token string) (*ResetTokenResponse, error) {
	return call[ResetTokenResponse](ctx, c.doPublic, http.MethodGet, "/api/auth/reset-password/validate?token="+url.QueryEscape(token), nil, http.StatusOK)
}

// ResetPassword consumes a reset token and sets a new password.
func (c *Client) ResetPassword(ctx context.Context, token, password string) (*MessageResponse, error) {
	return call[MessageResponse](ctx, c.doPublic, http.MethodPost, "/api/auth/reset-password", ResetPasswordRequest{Token: token, Password: password}, http.StatusOK)
}

// ResolveInvite looks up a pending invitation by token.
func (c *Client) ResolveInvite(ctx context.Context, token string) (*PendingInvite, error) {
	return call[PendingInvite](ctx, c.doPublic, http.MethodGet, "/api/auth/invite?token="+url.QueryEscape(token), nil, http.StatusOK)
}

// AcceptInvite activates an invited account.
func (c *Client) AcceptInvite(ctx context.Context, req AcceptInviteRequest) (*User, error) {
	return call[User](ctx, c.doPublic, http.MethodPost, "/api/auth/accept-invite", req, http.StatusOK)
}

// Bootstrap creates the first super admin. bootstrapToken must match the
// server's BOOTSTRAP_TOKEN.
func (c *Client) Bootstrap(ctx context.Context, bootstrapToken string, req BootstrapRequest) (*BootstrapResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/bootstrap", req, map[string]string{"X-Bootstrap-Token": bootstrapToken})
	if err != nil {
		return nil, err
	}
	var out BootstrapResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify returns the caller's identity as the server currently sees it.
func (s *Session) Verify(ctx context.Context) (*VerifyResponse, error) {
	return call[VerifyResponse](ctx, s.do, http.MethodGet, "/api/auth/verify", nil, http.StatusOK)
}

// ChangePassword changes the caller's password.
func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	_, err := call[MessageResponse](ctx, s.do, http.MethodPost, "/api/auth/change-password",
		ChangePasswordRequest{CurrentPassword: current, NewPassword: next}, http.StatusOK)
	return err
}

// EnrollMFA starts TOTP enrollment.
func (s *Session) EnrollMFA(ctx context.Context) (*MFAEnrollResponse, error) {
	return call[MFAEnrollResponse](ctx, s.do, http.MethodPost, "/api/auth/mfa/enroll", nil, http.StatusOK)
}

// ConfirmMFA activates the enrolled factor.
func (s *Session) ConfirmMFA(ctx context.Context, code string) error {
	_, err := call[MessageResponse](ctx, s.do, http.MethodPost, "/api/auth/mfa/confirm", MFACodeRequest{Code: code}, http.StatusOK)
	return err
}

// DisableMFA removes the factor; a current code is required.
func (s *Session) DisableMFA(ctx context.Context, code string) error {
	_, err := call[MessageResponse](ctx, s.do, http.MethodDelete, "/api/auth/mfa", MFACodeRequest{Code: code}, http.StatusOK)
	return err
}

// Roles lists the canonical role vocabulary.
func (s *Session) Roles(ctx context.Context) (*RolesResponse, error) {
	return call[RolesResponse](ctx, s.do, http.MethodGet, "/api/roles", nil, http.StatusOK)
}
