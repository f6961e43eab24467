package sessionx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestNewSigner_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewSigner([]byte("too short"), "test", time.Hour)
	require.Error(t, err)
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	signer, err := NewSigner(testSecret, "saas-core", time.Hour)
	require.NoError(t, err)

	raw, err := signer.Issue("user-1", "tenant-1", "workspace-1")
	require.NoError(t, err)

	claims, err := signer.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "tenant-1", claims.TenantID)
	require.Equal(t, "workspace-1", claims.WorkspaceID)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	a, err := NewSigner(testSecret, "saas-core", time.Hour)
	require.NoError(t, err)
	b, err := NewSigner([]byte("ffffffffffffffffffffffffffffffff"), "saas-core", time.Hour)
	require.NoError(t, err)

	raw, err := a.Issue("user-1", "", "")
	require.NoError(t, err)

	_, err = b.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongIssuer(t *testing.T) {
	t.Parallel()

	a, err := NewSigner(testSecret, "issuer-a", time.Hour)
	require.NoError(t, err)
	b, err := NewSigner(testSecret, "issuer-b", time.Hour)
	require.NoError(t, err)

	raw, err := a.Issue("user-1", "t", "w")
	require.NoError(t, err)

	_, err = b.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	signer, err := NewSigner(testSecret, "saas-core", time.Nanosecond)
	require.NoError(t, err)

	raw, err := signer.Issue("user-1", "t", "w")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = signer.Verify(raw)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerify_Garbage(t *testing.T) {
	t.Parallel()

	signer, err := NewSigner(testSecret, "saas-core", time.Hour)
	require.NoError(t, err)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := signer.Verify(raw)
		require.ErrorIs(t, err, ErrInvalidToken, "token %q", raw)
	}
}
