package http

import (
	"net/http"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/service"
	"github.com/aussiebroadwan/tasksetu/pkg/httpx"
	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
)

type InviteHandler struct {
	MembershipService *service.MembershipService
}

// HandleResolve godoc
//
//	@Summary		Look up an invitation
//	@Description	Returns the pending membership behind an invite token. Unknown, used and expired tokens are indistinguishable.
//	@Tags			Invitations
//	@Produce		json
//	@Param			token	query		string	true	"Invite token"
//	@Success		200		{object}	tasksdk.PendingInvite
//	@Failure		404		{object}	tasksdk.ErrorResponse	"invalid or expired token"
//	@Router			/api/auth/invite [get].
func (h *InviteHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	pm, err := h.MembershipService.ResolveInviteToken(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeServiceError(w, r, err, "failed to resolve invite")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPendingInvite(pm))
}

// HandleAccept godoc
//
//	@Summary		Accept an invitation
//	@Description	Sets the password and activates the account. An invite token can be accepted once.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tasksdk.AcceptInviteRequest	true	"Token, password and name"
//	@Success		200		{object}	tasksdk.User
//	@Failure		400		{object}	tasksdk.ValidationErrorResponse
//	@Failure		404		{object}	tasksdk.ErrorResponse	"invalid or expired token"
//	@Router			/api/auth/accept-invite [post].
func (h *InviteHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	var req tasksdk.AcceptInviteRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadJSON(w)
		return
	}

	u, err := h.MembershipService.AcceptInvite(r.Context(), service.AcceptInviteInput{
		Token:     req.Token,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to accept invite")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}
