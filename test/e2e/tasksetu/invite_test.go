package tasksetu_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
	"github.com/stretchr/testify/require"
)

// TestInvitationLifecycle walks an invite from creation to a working login.
func TestInvitationLifecycle(t *testing.T) {
	c := setupContainer(t)
	admin, acme := c.registerOrg(t, "Acme Corp")

	resp, err := admin.InviteUsers(t.Context(), tasksdk.InviteSpec{Email: "mia@acme.test", Role: "member"})
	require.NoError(t, err)
	require.Equal(t, 1, resp.SuccessCount)
	require.Empty(t, resp.Errors)

	members, err := admin.Members(t.Context())
	require.NoError(t, err)
	require.Len(t, members, 2)

	token := c.linkToken(t, "invite email", "mia@acme.test")

	pending, err := c.client.ResolveInvite(t.Context(), token)
	require.NoError(t, err)
	require.Equal(t, "mia@acme.test", pending.Email)
	require.Equal(t, acme.Organization.ID, pending.OrganizationID)

	_, err = c.client.AcceptInvite(t.Context(), tasksdk.AcceptInviteRequest{
		Token:     token,
		Password:  testPassword,
		FirstName: "Mia",
		LastName:  "Member",
	})
	require.NoError(t, err)

	// Tokens are single use.
	_, err = c.client.ResolveInvite(t.Context(), token)
	requireStatus(t, err, http.StatusNotFound, "consumed invite token")

	member, _, err := c.client.Login(t.Context(), tasksdk.LoginRequest{Email: "mia@acme.test", Password: testPassword})
	require.NoError(t, err)

	me, err := member.Verify(t.Context())
	require.NoError(t, err)
	require.Equal(t, "member", me.Role)
	require.Equal(t, acme.Organization.ID, me.TenantID)
}

// TestMemberCannotAdminister verifies role checks and that deactivation
// applies to the member's next request.
func TestMemberCannotAdminister(t *testing.T) {
	c := setupContainer(t)
	admin, _ := c.registerOrg(t, "Acme Corp")
	member := c.join(t, admin, "mia@acme.test", "member")

	_, err := member.InviteUsers(t.Context(), tasksdk.InviteSpec{Email: "eve@acme.test"})
	requireStatus(t, err, http.StatusForbidden, "member invite")

	me, err := member.Verify(t.Context())
	require.NoError(t, err)

	_, err = admin.DeactivateUser(t.Context(), me.UserID)
	require.NoError(t, err)

	_, err = member.Verify(t.Context())
	requireStatus(t, err, http.StatusForbidden, "deactivated member")
	require.True(t, tasksdk.IsCode(err, tasksdk.ErrorCodeAccountInactive))
}
