package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveKey(t *testing.T) {
	secret := []byte("handshake-secret")

	a, err := DeriveKey(secret, "hash", 64)
	require.NoError(t, err)
	require.Len(t, a, 64)

	again, err := DeriveKey(secret, "hash", 64)
	require.NoError(t, err)
	require.Equal(t, a, again, "derivation is deterministic")

	b, err := DeriveKey(secret, "block", 32)
	require.NoError(t, err)
	require.NotEqual(t, a[:32], b, "labels give independent keys")

	_, err = DeriveKey(nil, "hash", 32)
	require.Error(t, err)
}
