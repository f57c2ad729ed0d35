package cryptox

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	// Keep the suite fast; cost is checked explicitly below.
	SetCost(bcrypt.MinCost)
	os.Exit(m.Run())
}

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$2a$"), "hash should be bcrypt")
			require.NoError(t, VerifyPassword(tt.password, hash))
		})
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	hash1, err := HashPassword("samepassword")
	require.NoError(t, err)
	hash2, err := HashPassword("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")
	require.NoError(t, VerifyPassword("samepassword", hash1))
	require.NoError(t, VerifyPassword("samepassword", hash2))
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", MaxPasswordBytes+1))
	require.ErrorIs(t, err, ErrPasswordTooLong)

	hash, err := HashPassword(strings.Repeat("a", MaxPasswordBytes))
	require.NoError(t, err)
	require.NoError(t, VerifyPassword(strings.Repeat("a", MaxPasswordBytes), hash))
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	hash, err := HashPassword("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{"wrong-password", "Correct-Password", "correct-password ", "", "correct-passwor"} {
		t.Run(wrong, func(t *testing.T) {
			require.ErrorIs(t, VerifyPassword(wrong, hash), ErrPasswordMismatch)
		})
	}
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	for _, bad := range []string{"", "not-a-hash", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"} {
		err := VerifyPassword("anything", bad)
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrPasswordMismatch)
	}
}

func TestSetCost(t *testing.T) {
	t.Cleanup(func() { SetCost(bcrypt.MinCost) })

	SetCost(10)
	hash, err := HashPassword("Abc12345")
	require.NoError(t, err)

	c, err := HashCost(hash)
	require.NoError(t, err)
	require.Equal(t, 10, c)

	// Clamped at both ends.
	SetCost(1)
	require.Equal(t, bcrypt.MinCost, Cost())
	SetCost(99)
	require.Equal(t, bcrypt.MaxCost, Cost())
}

func TestNeedsRehash(t *testing.T) {
	t.Cleanup(func() { SetCost(bcrypt.MinCost) })

	SetCost(bcrypt.MinCost)
	hash, err := HashPassword("Abc12345")
	require.NoError(t, err)
	require.False(t, NeedsRehash(hash))

	SetCost(bcrypt.MinCost + 1)
	require.True(t, NeedsRehash(hash))
	require.False(t, NeedsRehash("not-a-hash"))
}
