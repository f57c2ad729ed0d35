package http

import (
	"net/http"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/service"
	"github.com/aussiebroadwan/tasksetu/pkg/httpx"
	"github.com/aussiebroadwan/tasksetu/pkg/slogx"
	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles the one-time bootstrap of an empty deployment.
//
//	@Summary		Create the first super admin
//	@Description	Only available when BOOTSTRAP_TOKEN is configured, and only until a super admin exists.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string							true	"Bootstrap token"
//	@Param			request				body		tasksdk.BootstrapRequest		true	"Super admin"
//	@Success		201					{object}	tasksdk.BootstrapResponse
//	@Failure		400					{object}	tasksdk.ValidationErrorResponse
//	@Failure		401					{object}	tasksdk.ErrorResponse	"missing or wrong bootstrap token"
//	@Failure		404					{object}	tasksdk.ErrorResponse	"bootstrap not enabled"
//	@Failure		409					{object}	tasksdk.ErrorResponse	"already bootstrapped"
//	@Router			/api/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())

	// 1. Check if enabled
	if h.BootstrapService.Token == "" {
		writeServiceError(w, r, service.ErrBootstrapDisabled, "bootstrap disabled")
		return
	}

	// 2. Require bootstrap token header
	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		httpx.WriteError(w, http.StatusUnauthorized, tasksdk.ErrorCodeUnauthorized,
			"Bootstrap token is required in X-Bootstrap-Token header")
		return
	}

	// 3. Parse request body and validate
	var req tasksdk.BootstrapRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w)
		return
	}
	if errs := req.Validate(); errs != nil {
		l.Info("bootstrap request failed validation")
		httpx.WriteJSON(w, http.StatusBadRequest, tasksdk.ValidationErrorResponse{
			Error:            tasksdk.ErrorCodeValidation,
			ErrorDescription: "validation failed for some fields",
			Details:          errs,
		})
		return
	}

	// 4. Create the super admin
	admin, err := h.BootstrapService.Bootstrap(r.Context(), token, domain.BootstrapData{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeServiceError(w, r, err, "bootstrap failed")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, tasksdk.BootstrapResponse{
		UserID: admin.ID,
		Email:  admin.Email,
	})
}
