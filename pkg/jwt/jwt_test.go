package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret"

	token, err := GenerateToken("user-123", AccessToken, secret, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, AccessToken, claims.TokenType)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("user-123", AccessToken, "right-secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "wrong-secret")
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := GenerateToken("user-123", AccessToken, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret")
	assert.Error(t, err)
}

func TestIsTokenValid_TypeMismatch(t *testing.T) {
	token, err := GenerateToken("user-123", RefreshToken, "secret", time.Hour)
	require.NoError(t, err)

	assert.True(t, IsTokenValid(token, "secret", RefreshToken))
	assert.False(t, IsTokenValid(token, "secret", AccessToken))
}
