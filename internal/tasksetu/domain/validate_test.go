package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	got, err := domain.NormalizeEmail("  Alice@Example.COM ")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", got)

	for _, bad := range []string{"", "alice", "alice@", "Alice <a@example.com>", "a@localhost"} {
		_, err := domain.NormalizeEmail(bad)
		require.ErrorIs(t, err, domain.ErrInvalidEmail, bad)
	}
}

func TestValidatePassword(t *testing.T) {
	require.NoError(t, domain.ValidatePassword("Abc12345"))
	for _, bad := range []string{"Ab1", "abcdefgh", "12345678", strings.Repeat("a1", 37)} {
		require.ErrorIs(t, domain.ValidatePassword(bad), domain.ErrWeakPassword, bad)
	}
}

func TestUserInviteExpired(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	require.False(t, domain.User{Status: domain.StatusInvited, InviteExpiresAt: &later}.InviteExpired(now))
	require.True(t, domain.User{Status: domain.StatusInvited, InviteExpiresAt: &earlier}.InviteExpired(now))
	require.True(t, domain.User{Status: domain.StatusInvited}.InviteExpired(now))
	require.False(t, domain.User{Status: domain.StatusActive}.InviteExpired(now))
}
