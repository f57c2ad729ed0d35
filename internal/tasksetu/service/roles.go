package service

import "github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"

// RolesService exposes the role vocabulary to clients.
type RolesService struct{}

// Roles returns the canonical roles in privilege order.
func (RolesService) Roles() []domain.Role {
	return append([]domain.Role(nil), domain.CanonicalRoles...)
}

// Aliases returns the legacy names still accepted on input.
func (RolesService) Aliases() map[string]domain.Role {
	return domain.RoleAliases()
}
