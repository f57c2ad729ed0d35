package http

import (
	"net/http"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/service"
	"github.com/aussiebroadwan/tasksetu/pkg/httpx"
	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
)

type LoginHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Sign in
//	@Description	Exchange email and password (and a TOTP code once MFA is enabled) for a session token.
//	@Description	Unknown emails, wrong passwords and invited accounts all fail with the same invalid_credentials error.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	tasksdk.LoginResponse
//	@Failure		400		{object}	tasksdk.ErrorResponse
//	@Failure		401		{object}	tasksdk.ErrorResponse	"invalid_credentials or mfa_required"
//	@Failure		403		{object}	tasksdk.ErrorResponse	"account_inactive, organization_suspended or email_not_verified"
//	@Failure		429		{object}	tasksdk.ErrorResponse
//	@Router			/api/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	res, err := h.AccountService.Login(r.Context(), req.Email, req.Password, req.OTP)
	if err != nil {
		writeServiceError(w, r, err, "login failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tasksdk.LoginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      toUser(res.User),
	})
}

type VerifyHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Current identity
//	@Description	Returns the caller as currently stored, not as recorded in the token.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	tasksdk.VerifyResponse
//	@Failure		401	{object}	tasksdk.ErrorResponse
//	@Failure		403	{object}	tasksdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/auth/verify [get].
func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := httpx.MustIdentity(r.Context())

	u, err := h.AccountService.CurrentUser(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, r, err, "failed to load current user")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tasksdk.VerifyResponse{
		UserID:   u.ID,
		Email:    u.Email,
		Role:     u.Role.String(),
		TenantID: u.OrganizationID,
		User:     toUser(u),
	})
}

type RegisterHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Register an individual account
//	@Description	Creates a tenant-less account. A verification link is emailed and must be followed before signing in.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.RegisterRequest	true	"Account"
//	@Success		201		{object}	tasksdk.User
//	@Failure		400		{object}	tasksdk.ValidationErrorResponse
//	@Failure		409		{object}	tasksdk.ErrorResponse	"email_taken"
//	@Router			/api/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	u, err := h.AccountService.RegisterIndividual(r.Context(), registerInput(req))
	if err != nil {
		writeServiceError(w, r, err, "failed to register individual")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUser(u))
}

type SignupHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Join an organization
//	@Description	Public signup into an organization that allows it. Consumes a license seat.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			slug	path		string					true	"Organization slug"
//	@Param			request	body		tasksdk.RegisterRequest	true	"Account"
//	@Success		201		{object}	tasksdk.User
//	@Failure		400		{object}	tasksdk.ValidationErrorResponse
//	@Failure		403		{object}	tasksdk.ErrorResponse	"signup disabled or organization suspended"
//	@Failure		404		{object}	tasksdk.ErrorResponse
//	@Failure		409		{object}	tasksdk.ErrorResponse	"email_taken or seat_limit_reached"
//	@Router			/api/auth/signup/{slug} [post].
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	u, err := h.AccountService.SignupToOrganization(r.Context(), r.PathValue("slug"), registerInput(req))
	if err != nil {
		writeServiceError(w, r, err, "failed to sign up member")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUser(u))
}

type RegisterOrganizationHandler struct {
	TenantService *service.TenantService
	TokenService  *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Register an organization
//	@Description	Creates an organization together with its first org_admin and signs that admin in.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.RegisterOrganizationRequest	true	"Organization and admin"
//	@Success		201		{object}	tasksdk.RegisterOrganizationResponse
//	@Failure		400		{object}	tasksdk.ValidationErrorResponse
//	@Failure		409		{object}	tasksdk.ErrorResponse	"email_taken or slug conflict"
//	@Router			/api/auth/register-organization [post].
func (h *RegisterOrganizationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.RegisterOrganizationRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	org, admin, err := h.TenantService.RegisterOrganization(r.Context(), service.RegisterOrganizationInput{
		Name:           req.OrganizationName,
		Slug:           req.Slug,
		Type:           req.Type,
		AdminEmail:     req.AdminEmail,
		AdminPassword:  req.AdminPassword,
		AdminFirstName: req.AdminFirstName,
		AdminLastName:  req.AdminLastName,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to register organization")
		return
	}

	token, exp, err := h.TokenService.Issue(admin)
	if err != nil {
		writeServiceError(w, r, err, "failed to sign session token")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, tasksdk.RegisterOrganizationResponse{
		Organization: toOrganization(org),
		User:         toUser(admin),
		Token:        token,
		ExpiresAt:    exp,
	})
}

type VerifyEmailHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Verify an email address
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.TokenRequest	true	"Verification token"
//	@Success		200		{object}	tasksdk.MessageResponse
//	@Failure		400		{object}	tasksdk.ErrorResponse	"invalid or expired token"
//	@Router			/api/auth/verify-email [post].
func (h *VerifyEmailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.TokenRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	if _, err := h.AccountService.VerifyEmail(r.Context(), req.Token); err != nil {
		writeTokenError(w, r, err, "failed to verify email")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tasksdk.MessageResponse{Message: "Email address verified"})
}

func registerInput(req tasksdk.RegisterRequest) service.RegisterInput {
	return service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
}
