package tasksetu_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
	"github.com/stretchr/testify/require"
)

var superAdmin = tasksdk.BootstrapRequest{
	Email:     "root@tasksetu.test",
	Password:  testPassword,
	FirstName: "Root",
	LastName:  "Admin",
}

// TestBootstrap verifies the first super admin can be created exactly once
// and then sees every organization.
func TestBootstrap(t *testing.T) {
	c := setupContainer(t)

	_, err := c.client.Bootstrap(t.Context(), "wrong-token", superAdmin)
	requireStatus(t, err, http.StatusUnauthorized, "wrong bootstrap token")

	resp, err := c.client.Bootstrap(t.Context(), bootstrapToken, superAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, resp.UserID)
	require.Equal(t, superAdmin.Email, resp.Email)

	_, err = c.client.Bootstrap(t.Context(), bootstrapToken, superAdmin)
	requireStatus(t, err, http.StatusConflict, "second bootstrap")

	_, acme := c.registerOrg(t, "Acme Corp")

	root, _, err := c.client.Login(t.Context(), tasksdk.LoginRequest{Email: superAdmin.Email, Password: testPassword})
	require.NoError(t, err)

	orgs, err := root.ListOrganizations(t.Context())
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	require.Equal(t, acme.Organization.ID, orgs[0].ID)

	org, err := root.ForTenant(acme.Organization.ID).Organization(t.Context())
	require.NoError(t, err)
	require.Equal(t, "Acme Corp", org.Name)
}
