package http

import (
	"net/http"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/service"
	"github.com/aussiebroadwan/tasksetu/pkg/httpx"
	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
)

type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleEnroll godoc
//
//	@Summary		Start TOTP enrollment
//	@Description	Returns a new secret and otpauth URI. Nothing is enforced until the first code is confirmed.
//	@Tags			MFA
//	@Produce		json
//	@Success		200	{object}	tasksdk.MFAEnrollResponse
//	@Failure		409	{object}	tasksdk.ErrorResponse	"already enabled"
//	@Security		BearerAuth
//	@Router			/api/auth/mfa/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	id := httpx.MustIdentity(r.Context())

	enrollment, err := h.MFAService.Enroll(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, r, err, "failed to enroll MFA")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tasksdk.MFAEnrollResponse{
		Secret:          enrollment.Secret,
		ProvisioningURI: enrollment.ProvisioningURI,
	})
}

// HandleConfirm godoc
//
//	@Summary		Confirm TOTP enrollment
//	@Tags			MFA
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.MFACodeRequest	true	"Current code"
//	@Success		200		{object}	tasksdk.MessageResponse
//	@Failure		400		{object}	tasksdk.ErrorResponse	"invalid code"
//	@Failure		409		{object}	tasksdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/auth/mfa/confirm [post].
func (h *MFAHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.MFACodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	id := httpx.MustIdentity(r.Context())
	if err := h.MFAService.Confirm(r.Context(), id.UserID, req.Code); err != nil {
		writeServiceError(w, r, err, "failed to confirm MFA")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tasksdk.MessageResponse{Message: "Two-factor authentication enabled"})
}

// HandleDisable godoc
//
//	@Summary		Disable TOTP
//	@Tags			MFA
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.MFACodeRequest	true	"Current code"
//	@Success		200		{object}	tasksdk.MessageResponse
//	@Failure		400		{object}	tasksdk.ErrorResponse	"invalid code"
//	@Failure		409		{object}	tasksdk.ErrorResponse	"not enabled"
//	@Security		BearerAuth
//	@Router			/api/auth/mfa [delete].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.MFACodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	id := httpx.MustIdentity(r.Context())
	if err := h.MFAService.Disable(r.Context(), id.UserID, req.Code); err != nil {
		writeServiceError(w, r, err, "failed to disable MFA")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tasksdk.MessageResponse{Message: "Two-factor authentication disabled"})
}
