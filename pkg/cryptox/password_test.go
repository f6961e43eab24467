package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"empty password", ""},
		{"unicode password", "pässwörd-日本語"},
		{"long password", strings.Repeat("x", 256)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

			require.NoError(t, VerifyPassword(tt.password, hash))
		})
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same-password")
	require.NoError(t, err)
	b, err := HashPassword("same-password")
	require.NoError(t, err)

	require.NotEqual(t, a, b, "two hashes of the same password must differ by salt")
}

func TestVerifyPassword_Mismatch(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)

	require.ErrorIs(t, VerifyPassword("battery-staple", hash), ErrPasswordMismatch)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",  // wrong variant
		"$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$aGFzaA", // wrong version
		"$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA",    // bad salt encoding
	}

	for _, encoded := range cases {
		require.Error(t, VerifyPassword("whatever", encoded), "hash %q", encoded)
	}
}
