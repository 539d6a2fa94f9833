package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAuthTokenRoundTrip(t *testing.T) {
	token, err := NewAuthToken(testSecret, 42, 15)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := ParseAuthToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), userID)
}

func TestParseAuthTokenWrongSecret(t *testing.T) {
	token, err := NewAuthToken(testSecret, 42, 15)
	require.NoError(t, err)

	_, err = ParseAuthToken("another-secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAuthTokenExpired(t *testing.T) {
	// Negative TTL puts the expiry in the past.
	token, err := NewAuthToken(testSecret, 42, -1)
	require.NoError(t, err)

	_, err = ParseAuthToken(testSecret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAuthTokenMalformed(t *testing.T) {
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := ParseAuthToken(testSecret, raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestParseAuthTokenTampered(t *testing.T) {
	token, err := NewAuthToken(testSecret, 42, 15)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ParseAuthToken(testSecret, tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAuthTokenRejectsUnsignedAlg(t *testing.T) {
	// A token using alg=none must not verify even with a matching payload.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": 42})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseAuthToken(testSecret, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUniformErrorForExpiryAndTampering(t *testing.T) {
	expired, err := NewAuthToken(testSecret, 42, -1)
	require.NoError(t, err)
	valid, err := NewAuthToken(testSecret, 42, 15)
	require.NoError(t, err)
	tampered := valid[:len(valid)-2] + "xx"

	_, errExpired := ParseAuthToken(testSecret, expired)
	_, errTampered := ParseAuthToken(testSecret, tampered)
	// The caller must not be able to distinguish the two failure modes.
	assert.Equal(t, errExpired, errTampered)
}
