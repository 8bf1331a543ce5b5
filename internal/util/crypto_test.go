package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexPattern = regexp.MustCompile(`^[0-9a-f]*$`)

func TestCryptoRandomString(t *testing.T) {
	for _, n := range []int{1, 16, 63, 64} {
		s, err := CryptoRandomString(n)
		require.NoError(t, err)
		assert.Len(t, s, n)
		assert.Regexp(t, hexPattern, s)
	}

	a, err := CryptoRandomString(64)
	require.NoError(t, err)
	b, err := CryptoRandomString(64)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashToken(t *testing.T) {
	hash := HashToken("link-secret", "salt")
	assert.Len(t, hash, 100)
	assert.Equal(t, hash, HashToken("link-secret", "salt"))
	assert.NotEqual(t, hash, HashToken("link-secret", "pepper"))
	assert.NotEqual(t, hash, HashToken("link-secret-2", "salt"))
}

func TestVerifyToken(t *testing.T) {
	salt, err := CryptoRandomString(16)
	require.NoError(t, err)

	hash := HashToken("link-secret", salt)
	assert.True(t, VerifyToken("link-secret", salt, hash))
	assert.False(t, VerifyToken("link-secret2", salt, hash))
	assert.False(t, VerifyToken("link-secret", "other-salt", hash))
	assert.False(t, VerifyToken("link-secret", salt, ""))
}
