package http

import (
	"net/http"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/service"
	"github.com/aussiebroadwan/tasksetu/pkg/httpx"
	"github.com/aussiebroadwan/tasksetu/pkg/idx"
	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
)

// AdminHandler serves the super admin tenant administration endpoints.
type AdminHandler struct {
	TenantService *service.TenantService
}

// HandleList godoc
//
//	@Summary		List organizations
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{array}		tasksdk.Organization
//	@Failure		403	{object}	tasksdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/admin/organizations [get].
func (h *AdminHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.TenantService.ListOrganizations(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to list organizations")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrganizations(orgs))
}

// HandleLicense godoc
//
//	@Summary		Set licensed seats
//	@Description	Lowering seats below current usage is allowed; no new seats are granted until usage drops.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Organization ID"
//	@Param			request	body		tasksdk.SetLicenseRequest	true	"Seats"
//	@Success		200		{object}	tasksdk.Organization
//	@Failure		400		{object}	tasksdk.ValidationErrorResponse
//	@Failure		404		{object}	tasksdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/admin/organizations/{id}/license [patch].
func (h *AdminHandler) HandleLicense(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.SetLicenseRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w)
		return
	}
	orgID := r.PathValue("id")
	if !idx.Valid(orgID) {
		writeServiceError(w, r, service.ErrOrganizationNotFound, "invalid organization id")
		return
	}

	org, err := h.TenantService.SetLicenseSeats(r.Context(), orgID, req.Seats)
	if err != nil {
		writeServiceError(w, r, err, "failed to set license seats")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrganization(org))
}

// HandleStatus godoc
//
//	@Summary		Suspend or reactivate an organization
//	@Description	Members of a suspended organization are refused on their next request.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Organization ID"
//	@Param			request	body		tasksdk.SetStatusRequest	true	"active or suspended"
//	@Success		200		{object}	tasksdk.Organization
//	@Failure		400		{object}	tasksdk.ValidationErrorResponse
//	@Failure		404		{object}	tasksdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/admin/organizations/{id}/status [patch].
func (h *AdminHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.SetStatusRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w)
		return
	}
	orgID := r.PathValue("id")
	if !idx.Valid(orgID) {
		writeServiceError(w, r, service.ErrOrganizationNotFound, "invalid organization id")
		return
	}

	org, err := h.TenantService.SetStatus(r.Context(), orgID, req.Status)
	if err != nil {
		writeServiceError(w, r, err, "failed to set organization status")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrganization(org))
}
