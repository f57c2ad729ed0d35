package httpx

import (
	"net/http"
	"slices"

	"github.com/aussiebroadwan/tasksetu/pkg/slogx"
)

// RequireRole admits callers whose current role is in the allow-list.
// Must be mounted after Authenticate.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok || !slices.Contains(roles, id.Role) {
				slogx.FromContext(r.Context()).Info("role not permitted",
					"role", id.Role, "allowed", roles)
				WriteError(w, http.StatusForbidden, "forbidden", "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOrganization refuses tenant-less callers such as individual users.
// Super-admins pass and pick a tenant per request.
func RequireOrganization() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok || (!id.HasTenant() && !id.SuperAdmin) {
				WriteError(w, http.StatusForbidden, "forbidden", "Organization membership required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CanAccessTenant reports whether id may act on resources of tenantID.
func CanAccessTenant(id Identity, tenantID string) bool {
	if id.SuperAdmin {
		return true
	}
	return tenantID != "" && id.TenantID == tenantID
}
