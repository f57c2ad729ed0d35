package tasksdk

import (
	"context"
	"net/http"
	"net/url"
)

// Organization returns the caller's organization.
func (s *Session) Organization(ctx context.Context) (*Organization, error) {
	return call[Organization](ctx, s.do, http.MethodGet, "/api/organization", nil, http.StatusOK)
}

// UpdateSettings changes the organization policy switches.
func (s *Session) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*Organization, error) {
	return call[Organization](ctx, s.do, http.MethodPatch, "/api/organization/settings", req, http.StatusOK)
}

// UpdateProfile renames the organization.
func (s *Session) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*Organization, error) {
	return call[Organization](ctx, s.do, http.MethodPatch, "/api/organization", req, http.StatusOK)
}

// License returns the seat accounting.
func (s *Session) License(ctx context.Context) (*License, error) {
	return call[License](ctx, s.do, http.MethodGet, "/api/organization/license", nil, http.StatusOK)
}

// Members lists every membership including pending invitations.
func (s *Session) Members(ctx context.Context) ([]Member, error) {
	out, err := call[[]Member](ctx, s.do, http.MethodGet, "/api/organization/users-detailed", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// InviteUsers sends a batch of invitations.
func (s *Session) InviteUsers(ctx context.Context, invites ...InviteSpec) (*InviteUsersResponse, error) {
	return call[InviteUsersResponse](ctx, s.do, http.MethodPost, "/api/organization/invite-users",
		InviteUsersRequest{Invites: invites}, http.StatusOK)
}

// ResendInvite issues a fresh token for a pending member.
func (s *Session) ResendInvite(ctx context.Context, userID string) error {
	_, err := call[MessageResponse](ctx, s.do, http.MethodPost, "/api/organization/resend-invite/"+url.PathEscape(userID), nil, http.StatusOK)
	return err
}

// RevokeInvite deletes a pending member.
func (s *Session) RevokeInvite(ctx context.Context, userID string) error {
	_, err := call[MessageResponse](ctx, s.do, http.MethodDelete, "/api/organization/revoke-invite/"+url.PathEscape(userID), nil, http.StatusOK)
	return err
}

// ActivateUser reactivates a member.
func (s *Session) ActivateUser(ctx context.Context, userID string) (*User, error) {
	return call[User](ctx, s.do, http.MethodPatch, "/api/organization/users/"+url.PathEscape(userID)+"/activate", nil, http.StatusOK)
}

// DeactivateUser deactivates a member.
func (s *Session) DeactivateUser(ctx context.Context, userID string) (*User, error) {
	return call[User](ctx, s.do, http.MethodPatch, "/api/organization/users/"+url.PathEscape(userID)+"/deactivate", nil, http.StatusOK)
}

// ChangeRole sets a member's role.
func (s *Session) ChangeRole(ctx context.Context, userID, role string) (*User, error) {
	return call[User](ctx, s.do, http.MethodPatch, "/api/organization/users/"+url.PathEscape(userID)+"/role",
		ChangeRoleRequest{Role: role}, http.StatusOK)
}

// ListOrganizations lists every tenant. Super admin only.
func (s *Session) ListOrganizations(ctx context.Context) ([]Organization, error) {
	out, err := call[[]Organization](ctx, s.do, http.MethodGet, "/api/admin/organizations", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// SetLicenseSeats changes a tenant's licensed seats. Super admin only.
func (s *Session) SetLicenseSeats(ctx context.Context, orgID string, seats int) (*Organization, error) {
	return call[Organization](ctx, s.do, http.MethodPatch, "/api/admin/organizations/"+url.PathEscape(orgID)+"/license",
		SetLicenseRequest{Seats: seats}, http.StatusOK)
}

// SetOrganizationStatus suspends or re-activates a tenant. Super admin only.
func (s *Session) SetOrganizationStatus(ctx context.Context, orgID, status string) (*Organization, error) {
	return call[Organization](ctx, s.do, http.MethodPatch, "/api/admin/organizations/"+url.PathEscape(orgID)+"/status",
		SetStatusRequest{Status: status}, http.StatusOK)
}
