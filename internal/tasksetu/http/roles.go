package http

import (
	"net/http"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/service"
	"github.com/aussiebroadwan/tasksetu/pkg/httpx"
	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
)

type RolesHandler struct {
	RolesService service.RolesService
}

// ServeHTTP godoc
//
//	@Summary		Role vocabulary
//	@Description	The canonical roles and the legacy aliases still accepted on input.
//	@Tags			Roles
//	@Produce		json
//	@Success		200	{object}	tasksdk.RolesResponse
//	@Failure		401	{object}	tasksdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/roles [get].
func (h *RolesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roles := h.RolesService.Roles()
	out := tasksdk.RolesResponse{
		Roles:   make([]string, len(roles)),
		Aliases: map[string]string{},
	}
	for i, role := range roles {
		out.Roles[i] = role.String()
	}
	for alias, role := range h.RolesService.Aliases() {
		out.Aliases[alias] = role.String()
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
