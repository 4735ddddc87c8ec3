package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42, "reader", "USER", "secret", 5)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "reader", claims.Username)
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestValidateAccessToken_Rejects(t *testing.T) {
	expired, err := GenerateAccessToken(1, "reader", "USER", "secret", -5)
	require.NoError(t, err)
	_, err = ValidateAccessToken(expired, "secret")
	assert.ErrorIs(t, err, ErrTokenExpired)

	valid, err := GenerateAccessToken(1, "reader", "USER", "secret", 5)
	require.NoError(t, err)
	_, err = ValidateAccessToken(valid, "another-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = ValidateAccessToken("not.a.token", "secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
