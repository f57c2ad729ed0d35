package tasksetu_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
	"github.com/stretchr/testify/require"
)

// TestInvalidCredentials verifies a wrong password and an unknown email are
// indistinguishable.
func TestInvalidCredentials(t *testing.T) {
	c := setupContainer(t)
	c.registerOrg(t, "Acme Corp")

	_, _, wrongPassword := c.client.Login(t.Context(), tasksdk.LoginRequest{Email: "admin@acme-corp.test", Password: "nope"})
	_, _, unknownEmail := c.client.Login(t.Context(), tasksdk.LoginRequest{Email: "ghost@acme-corp.test", Password: "nope"})

	requireStatus(t, wrongPassword, http.StatusUnauthorized)
	requireStatus(t, unknownEmail, http.StatusUnauthorized)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

// TestInvalidSessionToken verifies forged tokens are refused.
func TestInvalidSessionToken(t *testing.T) {
	c := setupContainer(t)

	_, err := c.client.WithToken("invalid-token-12345").Verify(t.Context())
	requireStatus(t, err, http.StatusForbidden)
	require.True(t, tasksdk.IsCode(err, tasksdk.ErrorCodeInvalidToken))
}

// TestTenantIsolation verifies an admin cannot address another tenant.
func TestTenantIsolation(t *testing.T) {
	c := setupContainer(t)
	acmeAdmin, _ := c.registerOrg(t, "Acme Corp")
	_, globex := c.registerOrg(t, "Globex")

	_, err := acmeAdmin.ForTenant(globex.Organization.ID).Members(t.Context())
	requireStatus(t, err, http.StatusForbidden, "cross-tenant member listing")

	members, err := acmeAdmin.Members(t.Context())
	require.NoError(t, err)
	for _, m := range members {
		require.NotEqual(t, globex.User.ID, m.ID)
	}
}
