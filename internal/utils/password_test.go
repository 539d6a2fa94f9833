package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter22", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "hunter22", hash, "hash must never equal the plaintext")

	assert.True(t, VerifyPassword(hash, "hunter22"))
	assert.False(t, VerifyPassword(hash, "hunter23"))
	assert.False(t, VerifyPassword(hash, ""))
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("same-password", bcrypt.MinCost)
	require.NoError(t, err)
	h2, err := HashPassword("same-password", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2, "two hashes of one password must differ by salt")
}

func TestAvatarURLDeterministic(t *testing.T) {
	assert.Equal(t, AvatarURL("booklover"), AvatarURL("booklover"))
	assert.NotEqual(t, AvatarURL("alice"), AvatarURL("bob"))
	assert.Contains(t, AvatarURL("a b"), "seed=a+b")
}
