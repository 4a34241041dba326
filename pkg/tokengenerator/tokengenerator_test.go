package tokengenerator

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	g := NewJwtTokenGenerator("test-secret", "simple-account", "simple-account")

	tokenStr, expiresAt, err := g.GenerateToken("user-1", DefaultSessionExpiry, map[string]interface{}{
		"userId":   "user-1",
		"email":    "jane@example.com",
		"username": "janedoe",
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), expiresAt, 5*time.Second)

	token, err := g.ParseToken(tokenStr)
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "user-1", claims["userId"])
	assert.Equal(t, "jane@example.com", claims["email"])
	assert.Equal(t, "janedoe", claims["username"])
	assert.Equal(t, "simple-account", claims["iss"])
}

func TestParseTokenWrongSecret(t *testing.T) {
	g := NewJwtTokenGenerator("test-secret", "simple-account", "simple-account")

	tokenStr, _, err := g.GenerateToken("user-1", time.Hour, nil)
	require.NoError(t, err)

	other := NewJwtTokenGenerator("other-secret", "simple-account", "simple-account")
	_, err = other.ParseToken(tokenStr)
	assert.Error(t, err)
}

func TestParseExpiredToken(t *testing.T) {
	g := NewJwtTokenGenerator("test-secret", "simple-account", "simple-account")

	tokenStr, _, err := g.GenerateToken("user-1", -time.Hour, nil)
	require.NoError(t, err)

	_, err = g.ParseToken(tokenStr)
	assert.Error(t, err)
}
