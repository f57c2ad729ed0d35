package http

import (
	"net/http"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store"
	"github.com/aussiebroadwan/tasksetu/pkg/httpx"
	"github.com/aussiebroadwan/tasksetu/pkg/slogx"
	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
)

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	tasksdk.HealthResponse
//	@Router			/livez [get].
func LivezHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, tasksdk.HealthResponse{Status: "ok"})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Fails while the database is unreachable.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	tasksdk.HealthResponse
//	@Failure		503	{object}	tasksdk.HealthResponse
//	@Router			/readyz [get].
func ReadyzHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			slogx.FromContext(r.Context()).Warn("readiness check failed", "error", err)
			httpx.WriteJSON(w, http.StatusServiceUnavailable, tasksdk.HealthResponse{Status: "unavailable"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, tasksdk.HealthResponse{Status: "ok"})
	}
}
