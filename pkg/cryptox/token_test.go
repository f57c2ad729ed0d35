package cryptox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLinkToken(t *testing.T) {
	seen := make(map[string]bool)
	for range 50 {
		tok, err := NewLinkToken()
		require.NoError(t, err)
		require.Len(t, tok.Raw, 43)
		require.Equal(t, FingerprintToken(tok.Raw), tok.Fingerprint)
		require.NotEqual(t, tok.Raw, tok.Fingerprint)
		require.False(t, seen[tok.Raw], "link tokens must not repeat")
		seen[tok.Raw] = true

		raw, err := base64.RawURLEncoding.DecodeString(tok.Raw)
		require.NoError(t, err)
		require.Len(t, raw, LinkTokenBytes)
	}
}

func TestGenerateToken(t *testing.T) {
	for _, size := range []int{1, 16, LinkTokenBytes, 64} {
		token, err := GenerateToken(size)
		require.NoError(t, err)
		require.Equal(t, base64.RawURLEncoding.EncodedLen(size), len(token))
	}

	for _, size := range []int{0, -1} {
		_, err := GenerateToken(size)
		require.Error(t, err)
	}

	require.Panics(t, func() { MustGenerateToken(0) })
	require.NotEmpty(t, MustGenerateToken(LinkTokenBytes))
}

func TestFingerprintToken(t *testing.T) {
	// echo -n "invite" | sha256sum, base64url encoded
	fp := FingerprintToken("invite")
	require.Len(t, fp, 43)
	require.Equal(t, fp, FingerprintToken("invite"))
	require.NotEqual(t, fp, FingerprintToken("invitE"))
	require.NotContains(t, fp, "=")
}

func TestEqualSecrets(t *testing.T) {
	require.True(t, EqualSecrets("bootstrap-secret", "bootstrap-secret"))
	require.False(t, EqualSecrets("bootstrap-secret", "bootstrap-secreT"))
	require.False(t, EqualSecrets("bootstrap-secret", ""))
	require.True(t, EqualSecrets("", ""))
}
