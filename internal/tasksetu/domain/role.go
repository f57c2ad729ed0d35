package domain

import (
	"errors"
	"slices"
	"strings"
)

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleOrgAdmin   Role = "org_admin"
	RoleMember     Role = "member"
	RoleIndividual Role = "individual"
)

var (
	ErrUnknownRole   = errors.New("unknown role")
	ErrAmbiguousRole = errors.New("roles resolve to more than one role")
	ErrNoRole        = errors.New("no role given")
)

// CanonicalRoles is the full role vocabulary in privilege order.
var CanonicalRoles = []Role{RoleSuperAdmin, RoleOrgAdmin, RoleMember, RoleIndividual}

// roleAliases maps legacy names still sent by older clients.
var roleAliases = map[string]Role{
	"superadmin":  RoleSuperAdmin,
	"super-admin": RoleSuperAdmin,
	"admin":       RoleOrgAdmin,
	"orgadmin":    RoleOrgAdmin,
	"org-admin":   RoleOrgAdmin,
	"employee":    RoleMember,
	"user":        RoleMember,
}

// RoleAliases returns a copy of the alias table.
func RoleAliases() map[string]Role {
	out := make(map[string]Role, len(roleAliases))
	for k, v := range roleAliases {
		out[k] = v
	}
	return out
}

// ParseRole accepts a canonical name or a legacy alias, case-insensitively.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if r := Role(s); slices.Contains(CanonicalRoles, r) {
		return r, nil
	}
	if r, ok := roleAliases[s]; ok {
		return r, nil
	}
	return "", ErrUnknownRole
}

// ResolveRole collapses a singular role and a roles list into one role.
// Empty entries are skipped; duplicates after aliasing are fine; two
// distinct roles are ErrAmbiguousRole.
func ResolveRole(role string, roles []string) (Role, error) {
	var out Role
	for _, raw := range append([]string{role}, roles...) {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		r, err := ParseRole(raw)
		if err != nil {
			return "", err
		}
		if out != "" && out != r {
			return "", ErrAmbiguousRole
		}
		out = r
	}
	if out == "" {
		return "", ErrNoRole
	}
	return out, nil
}

// Invitable reports whether r may be granted through an invitation.
func (r Role) Invitable() bool {
	return r == RoleOrgAdmin || r == RoleMember
}

// TenantScoped reports whether users with r belong to an organization.
func (r Role) TenantScoped() bool {
	return r == RoleOrgAdmin || r == RoleMember
}

func (r Role) String() string { return string(r) }
