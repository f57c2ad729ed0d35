package domain_test

import (
	"testing"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/stretchr/testify/require"
)

func TestParseRole_Aliases(t *testing.T) {
	cases := map[string]domain.Role{
		"super_admin": domain.RoleSuperAdmin,
		"superadmin":  domain.RoleSuperAdmin,
		"Super-Admin": domain.RoleSuperAdmin,
		"org_admin":   domain.RoleOrgAdmin,
		"admin":       domain.RoleOrgAdmin,
		"orgadmin":    domain.RoleOrgAdmin,
		"org-admin":   domain.RoleOrgAdmin,
		"member":      domain.RoleMember,
		"employee":    domain.RoleMember,
		" user ":      domain.RoleMember,
		"individual":  domain.RoleIndividual,
	}
	for in, want := range cases {
		got, err := domain.ParseRole(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := domain.ParseRole("owner")
	require.ErrorIs(t, err, domain.ErrUnknownRole)
}

func TestRoleAliases_MapToCanonical(t *testing.T) {
	for alias, role := range domain.RoleAliases() {
		require.Contains(t, domain.CanonicalRoles, role, alias)
		got, err := domain.ParseRole(alias)
		require.NoError(t, err)
		require.Equal(t, role, got)
	}
}

func TestResolveRole(t *testing.T) {
	t.Run("singular", func(t *testing.T) {
		r, err := domain.ResolveRole("admin", nil)
		require.NoError(t, err)
		require.Equal(t, domain.RoleOrgAdmin, r)
	})

	t.Run("aliases collapse", func(t *testing.T) {
		r, err := domain.ResolveRole("", []string{"employee", "member", "user"})
		require.NoError(t, err)
		require.Equal(t, domain.RoleMember, r)
	})

	t.Run("role and roles agree", func(t *testing.T) {
		r, err := domain.ResolveRole("org_admin", []string{"admin"})
		require.NoError(t, err)
		require.Equal(t, domain.RoleOrgAdmin, r)
	})

	t.Run("ambiguous", func(t *testing.T) {
		_, err := domain.ResolveRole("", []string{"admin", "member"})
		require.ErrorIs(t, err, domain.ErrAmbiguousRole)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := domain.ResolveRole("", []string{"member", "owner"})
		require.ErrorIs(t, err, domain.ErrUnknownRole)
	})

	t.Run("none", func(t *testing.T) {
		_, err := domain.ResolveRole(" ", nil)
		require.ErrorIs(t, err, domain.ErrNoRole)
	})
}

func TestRoleInvitable(t *testing.T) {
	require.True(t, domain.RoleOrgAdmin.Invitable())
	require.True(t, domain.RoleMember.Invitable())
	require.False(t, domain.RoleSuperAdmin.Invitable())
	require.False(t, domain.RoleIndividual.Invitable())
}
