package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/service"
	"github.com/aussiebroadwan/tasksetu/pkg/httpx"
)

// IdentityLoader resolves token subjects through the account service. A
// user of a suspended organization loads as inactive.
func IdentityLoader(accounts *service.AccountService) httpx.IdentityLoader {
	return httpx.IdentityLoaderFunc(func(ctx context.Context, userID string) (httpx.Identity, error) {
		u, org, err := accounts.Identity(ctx, userID)
		if errors.Is(err, service.ErrUserNotFound) {
			return httpx.Identity{}, httpx.ErrIdentityNotFound
		}
		if err != nil {
			return httpx.Identity{}, err
		}
		return httpx.Identity{
			UserID:     u.ID,
			Email:      u.Email,
			Role:       u.Role.String(),
			TenantID:   u.OrganizationID,
			Active:     u.IsActive() && (org == nil || !org.Suspended()),
			SuperAdmin: u.Role == domain.RoleSuperAdmin,
		}, nil
	})
}

// tenantOf picks the organization a request acts on: the caller's own, or
// for super admins the one named by ?tenant_id=.
func tenantOf(r *http.Request) (string, error) {
	id := httpx.MustIdentity(r.Context())
	requested := r.URL.Query().Get("tenant_id")

	if id.SuperAdmin {
		if requested == "" {
			return "", service.ErrInvalidRequest
		}
		return requested, nil
	}
	if !id.HasTenant() {
		return "", service.ErrIndividualNotAllowed
	}
	if requested != "" && !httpx.CanAccessTenant(id, requested) {
		return "", service.ErrForbidden
	}
	return id.TenantID, nil
}
