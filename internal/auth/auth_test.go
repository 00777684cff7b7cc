package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash, "hash should not be the plaintext")

	assert.True(t, CheckPassword("secret123", hash))
	assert.False(t, CheckPassword("wrongpass", hash))
}

func TestGenerateSessionToken(t *testing.T) {
	token, err := GenerateSessionToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)

	other, err := GenerateSessionToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other, "tokens should be unique")
}
