package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/service"
	"github.com/aussiebroadwan/tasksetu/pkg/httpx"
	"github.com/aussiebroadwan/tasksetu/pkg/slogx"
	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
)

// forgotPasswordMessage is returned for every well-formed request.
const forgotPasswordMessage = "If an account exists for this email, a password reset link has been sent"

type PasswordHandler struct {
	PasswordService *service.PasswordService
}

// HandleForgot godoc
//
//	@Summary		Request a password reset
//	@Description	Always answers with the same body so the response does not reveal whether the email is registered.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.ForgotPasswordRequest	true	"Email"
//	@Success		200		{object}	tasksdk.MessageResponse
//	@Failure		400		{object}	tasksdk.ErrorResponse
//	@Failure		429		{object}	tasksdk.ErrorResponse
//	@Router			/api/auth/forgot-password [post].
func (h *PasswordHandler) HandleForgot(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.ForgotPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	if err := h.PasswordService.RequestReset(r.Context(), req.Email); err != nil {
		slogx.FromContext(r.Context()).Error("password reset request failed", slog.Any("error", err))
	}
	httpx.WriteJSON(w, http.StatusOK, tasksdk.MessageResponse{Message: forgotPasswordMessage})
}

// HandleValidate godoc
//
//	@Summary		Check a reset token
//	@Tags			Password
//	@Produce		json
//	@Param			token	query		string	true	"Reset token"
//	@Success		200		{object}	tasksdk.ResetTokenResponse
//	@Failure		400		{object}	tasksdk.ErrorResponse	"invalid or expired token"
//	@Router			/api/auth/reset-password/validate [get].
func (h *PasswordHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	u, err := h.PasswordService.ValidateResetToken(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeTokenError(w, r, err, "failed to validate reset token")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tasksdk.ResetTokenResponse{Valid: true, Email: u.Email})
}

// HandleReset godoc
//
//	@Summary		Reset a password
//	@Description	Consumes the reset token. A token works once and for 30 minutes.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.ResetPasswordRequest	true	"Token and new password"
//	@Success		200		{object}	tasksdk.MessageResponse
//	@Failure		400		{object}	tasksdk.ErrorResponse	"invalid token or weak password"
//	@Router			/api/auth/reset-password [post].
func (h *PasswordHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.ResetPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	if err := h.PasswordService.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeTokenError(w, r, err, "failed to reset password")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tasksdk.MessageResponse{Message: "Password has been reset"})
}

// HandleChange godoc
//
//	@Summary		Change password
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	tasksdk.MessageResponse
//	@Failure		400		{object}	tasksdk.ErrorResponse	"wrong current password or weak new password"
//	@Failure		401		{object}	tasksdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/auth/change-password [post].
func (h *PasswordHandler) HandleChange(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	id := httpx.MustIdentity(r.Context())
	err := h.PasswordService.ChangePassword(r.Context(), id.UserID, req.CurrentPassword, req.NewPassword)
	if errors.Is(err, service.ErrInvalidCredentials) {
		// 400, not 401: the session itself is valid.
		httpx.WriteError(w, http.StatusBadRequest, tasksdk.ErrorCodeInvalidCredentials, "Current password is incorrect")
		return
	}
	if err != nil {
		writeServiceError(w, r, err, "failed to change password")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tasksdk.MessageResponse{Message: "Password changed"})
}
