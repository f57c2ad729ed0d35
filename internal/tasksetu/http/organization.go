package http

import (
	"net/http"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/service"
	"github.com/aussiebroadwan/tasksetu/pkg/httpx"
	"github.com/aussiebroadwan/tasksetu/pkg/idx"
	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
)

// OrganizationHandler serves the caller's organization. Super admins pick
// the organization with ?tenant_id=.
type OrganizationHandler struct {
	TenantService     *service.TenantService
	MembershipService *service.MembershipService
}

// HandleGet godoc
//
//	@Summary		Organization profile
//	@Tags			Organization
//	@Produce		json
//	@Param			tenant_id	query		string	false	"Tenant (super admins only)"
//	@Success		200			{object}	tasksdk.Organization
//	@Failure		403			{object}	tasksdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/organization [get].
func (h *OrganizationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantOf(r)
	if err != nil {
		writeServiceError(w, r, err, "tenant resolution failed")
		return
	}

	org, err := h.TenantService.GetOrganization(r.Context(), tenant)
	if err != nil {
		writeServiceError(w, r, err, "failed to load organization")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrganization(org))
}

// HandleUpdateProfile godoc
//
//	@Summary		Rename an organization
//	@Description	Changes name and type. The slug is permanent.
//	@Tags			Organization
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.UpdateProfileRequest	true	"Profile"
//	@Success		200		{object}	tasksdk.Organization
//	@Failure		400		{object}	tasksdk.ValidationErrorResponse
//	@Failure		403		{object}	tasksdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/organization [patch].
func (h *OrganizationHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.UpdateProfileRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w)
		return
	}
	tenant, err := tenantOf(r)
	if err != nil {
		writeServiceError(w, r, err, "tenant resolution failed")
		return
	}

	org, err := h.TenantService.UpdateProfile(r.Context(), tenant, req.Name, req.Type)
	if err != nil {
		writeServiceError(w, r, err, "failed to update organization profile")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrganization(org))
}

// HandleSettings godoc
//
//	@Summary		Update organization settings
//	@Tags			Organization
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.UpdateSettingsRequest	true	"Settings; absent fields are kept"
//	@Success		200		{object}	tasksdk.Organization
//	@Failure		403		{object}	tasksdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/organization/settings [patch].
func (h *OrganizationHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.UpdateSettingsRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w)
		return
	}
	tenant, err := tenantOf(r)
	if err != nil {
		writeServiceError(w, r, err, "tenant resolution failed")
		return
	}

	org, err := h.TenantService.UpdateSettings(r.Context(), tenant, service.SettingsPatch{
		AllowPublicSignup:        req.AllowPublicSignup,
		RequireEmailVerification: req.RequireEmailVerification,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to update organization settings")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrganization(org))
}

// HandleLicense godoc
//
//	@Summary		Seat usage
//	@Description	used = active + pending and used + available = total. Expired invitations hold no seat.
//	@Tags			Organization
//	@Produce		json
//	@Success		200	{object}	tasksdk.License
//	@Failure		403	{object}	tasksdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/organization/license [get].
func (h *OrganizationHandler) HandleLicense(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantOf(r)
	if err != nil {
		writeServiceError(w, r, err, "tenant resolution failed")
		return
	}

	lic, err := h.TenantService.License(r.Context(), tenant)
	if err != nil {
		writeServiceError(w, r, err, "failed to compute license")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toLicense(lic))
}

// HandleMembers godoc
//
//	@Summary		List members
//	@Description	Every membership of the organization, pending invitations included.
//	@Tags			Organization
//	@Produce		json
//	@Success		200	{array}		tasksdk.Member
//	@Failure		403	{object}	tasksdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/organization/users-detailed [get].
func (h *OrganizationHandler) HandleMembers(w http.ResponseWriter, r *http.Request) {
	tenant, err := tenantOf(r)
	if err != nil {
		writeServiceError(w, r, err, "tenant resolution failed")
		return
	}

	members, err := h.MembershipService.ListMembers(r.Context(), tenant)
	if err != nil {
		writeServiceError(w, r, err, "failed to list members")
		return
	}
	out := make([]tasksdk.Member, len(members))
	for i, m := range members {
		out[i] = toMember(m)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleInvite godoc
//
//	@Summary		Invite users
//	@Description	Each entry is processed on its own and in order, with its own seat check.
//	@Description	A failed entry is reported in errors and does not undo earlier ones.
//	@Tags			Organization
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.InviteUsersRequest	true	"Invitations (1-100)"
//	@Success		200		{object}	tasksdk.InviteUsersResponse
//	@Failure		400		{object}	tasksdk.ErrorResponse
//	@Failure		403		{object}	tasksdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/organization/invite-users [post].
func (h *OrganizationHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.InviteUsersRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w)
		return
	}
	tenant, err := tenantOf(r)
	if err != nil {
		writeServiceError(w, r, err, "tenant resolution failed")
		return
	}

	specs := make([]service.InviteSpec, len(req.Invites))
	for i, in := range req.Invites {
		specs[i] = service.InviteSpec{Email: in.Email, Role: in.Role, Roles: in.Roles}
	}

	id := httpx.MustIdentity(r.Context())
	res, err := h.MembershipService.InviteBatch(r.Context(), tenant, id.UserID, specs)
	if err != nil {
		writeServiceError(w, r, err, "batch invite failed")
		return
	}

	out := tasksdk.InviteUsersResponse{
		SuccessCount: res.SuccessCount,
		Invited:      make([]tasksdk.Member, len(res.Invited)),
		Errors:       make([]tasksdk.InviteError, len(res.Errors)),
	}
	for i, pm := range res.Invited {
		out.Invited[i] = toMember(domain.Member{User: pm.User})
	}
	for i, f := range res.Errors {
		_, code, desc := classify(f.Err)
		out.Errors[i] = tasksdk.InviteError{Email: f.Email, Error: code, Message: desc}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleResend godoc
//
//	@Summary		Resend an invitation
//	@Description	Issues a new token and expiry; the previous link stops working.
//	@Tags			Organization
//	@Produce		json
//	@Param			userId	path		string	true	"Invited user ID"
//	@Success		200		{object}	tasksdk.MessageResponse
//	@Failure		404		{object}	tasksdk.ErrorResponse
//	@Failure		409		{object}	tasksdk.ErrorResponse	"not pending or no seat"
//	@Security		BearerAuth
//	@Router			/api/organization/resend-invite/{userId} [post].
func (h *OrganizationHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	tenant, userID, ok := h.target(w, r, "userId")
	if !ok {
		return
	}
	if _, err := h.MembershipService.ResendInvite(r.Context(), tenant, userID); err != nil {
		writeServiceError(w, r, err, "failed to resend invite")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tasksdk.MessageResponse{Message: "Invitation resent"})
}

// HandleRevoke godoc
//
//	@Summary		Revoke an invitation
//	@Description	Deletes the pending membership and frees its seat.
//	@Tags			Organization
//	@Produce		json
//	@Param			userId	path		string	true	"Invited user ID"
//	@Success		200		{object}	tasksdk.MessageResponse
//	@Failure		404		{object}	tasksdk.ErrorResponse
//	@Failure		409		{object}	tasksdk.ErrorResponse	"not pending"
//	@Security		BearerAuth
//	@Router			/api/organization/revoke-invite/{userId} [delete].
func (h *OrganizationHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	tenant, userID, ok := h.target(w, r, "userId")
	if !ok {
		return
	}
	if err := h.MembershipService.RevokeInvite(r.Context(), tenant, userID); err != nil {
		writeServiceError(w, r, err, "failed to revoke invite")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tasksdk.MessageResponse{Message: "Invitation revoked"})
}

// HandleActivate godoc
//
//	@Summary		Reactivate a member
//	@Description	Needs a free seat.
//	@Tags			Organization
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	tasksdk.User
//	@Failure		404	{object}	tasksdk.ErrorResponse
//	@Failure		409	{object}	tasksdk.ErrorResponse	"seat_limit_reached"
//	@Security		BearerAuth
//	@Router			/api/organization/users/{id}/activate [patch].
func (h *OrganizationHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	tenant, userID, ok := h.target(w, r, "id")
	if !ok {
		return
	}
	u, err := h.MembershipService.Reactivate(r.Context(), tenant, userID)
	if err != nil {
		writeServiceError(w, r, err, "failed to reactivate member")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// HandleDeactivate godoc
//
//	@Summary		Deactivate a member
//	@Description	Takes effect on the member's next request. The last active org_admin cannot be deactivated.
//	@Tags			Organization
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	tasksdk.User
//	@Failure		403	{object}	tasksdk.ErrorResponse	"last_admin"
//	@Failure		404	{object}	tasksdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/organization/users/{id}/deactivate [patch].
func (h *OrganizationHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	tenant, userID, ok := h.target(w, r, "id")
	if !ok {
		return
	}
	id := httpx.MustIdentity(r.Context())
	u, err := h.MembershipService.Deactivate(r.Context(), tenant, id.UserID, userID)
	if err != nil {
		writeServiceError(w, r, err, "failed to deactivate member")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// HandleChangeRole godoc
//
//	@Summary		Change a member's role
//	@Tags			Organization
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User ID"
//	@Param			request	body		tasksdk.ChangeRoleRequest	true	"Role (aliases accepted)"
//	@Success		200		{object}	tasksdk.User
//	@Failure		400		{object}	tasksdk.ValidationErrorResponse
//	@Failure		403		{object}	tasksdk.ErrorResponse	"last_admin"
//	@Failure		404		{object}	tasksdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/organization/users/{id}/role [patch].
func (h *OrganizationHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.ChangeRoleRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w)
		return
	}
	tenant, userID, ok := h.target(w, r, "id")
	if !ok {
		return
	}
	u, err := h.MembershipService.ChangeRole(r.Context(), tenant, userID, req.Role)
	if err != nil {
		writeServiceError(w, r, err, "failed to change role")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// target resolves the tenant and the user ID path parameter, writing the
// error response itself when either is unusable.
func (h *OrganizationHandler) target(w http.ResponseWriter, r *http.Request, param string) (string, string, bool) {
	tenant, err := tenantOf(r)
	if err != nil {
		writeServiceError(w, r, err, "tenant resolution failed")
		return "", "", false
	}
	userID := r.PathValue(param)
	if !idx.Valid(userID) {
		writeServiceError(w, r, service.ErrUserNotFound, "invalid user id")
		return "", "", false
	}
	return tenant, userID, true
}
