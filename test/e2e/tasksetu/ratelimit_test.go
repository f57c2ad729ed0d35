package tasksetu_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLogin verifies login is limited to five attempts a minute
// per address and email.
func TestRateLimitLogin(t *testing.T) {
	c := setupContainerWithDefaultRateLimits(t)

	req := tasksdk.LoginRequest{Email: "nobody@acme.test", Password: "wrong"}
	for i := range 5 {
		_, _, err := c.client.Login(t.Context(), req)
		requireStatus(t, err, http.StatusUnauthorized, "attempt %d", i+1)
	}

	_, _, err := c.client.Login(t.Context(), req)
	requireStatus(t, err, http.StatusTooManyRequests, "sixth attempt")
}

// TestRateLimitForgotPassword verifies the reset endpoint is limited too.
func TestRateLimitForgotPassword(t *testing.T) {
	c := setupContainerWithDefaultRateLimits(t)

	for i := range 5 {
		_, err := c.client.ForgotPassword(t.Context(), "nobody@acme.test")
		require.NoError(t, err, "attempt %d", i+1)
	}

	_, err := c.client.ForgotPassword(t.Context(), "nobody@acme.test")
	requireStatus(t, err, http.StatusTooManyRequests, "sixth attempt")
}
