package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	token, expiresAt, err := GenerateJWT("user-1", "ADMIN", "est-1", "secret", time.Hour, "salon", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	claims, err := ParseAndValidateJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, "est-1", claims.EstablishmentID)
	assert.Equal(t, "salon", claims.Issuer)
}

func TestParseJWTRejectsWrongSecret(t *testing.T) {
	token, _, err := GenerateJWT("user-1", "CLIENT", "", "secret", time.Hour, "salon", time.Now())
	require.NoError(t, err)

	_, err = ParseAndValidateJWT(token, "other")
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParseJWTRejectsExpired(t *testing.T) {
	token, _, err := GenerateJWT("user-1", "CLIENT", "", "secret", time.Minute, "salon", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = ParseAndValidateJWT(token, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestRefreshTokenHash(t *testing.T) {
	raw, err := GenerateSecureRandomString(32)
	require.NoError(t, err)
	assert.Len(t, raw, 64)

	hash := HashRefreshToken(raw)
	assert.True(t, CompareRefreshTokenHash(raw, hash))
	assert.False(t, CompareRefreshTokenHash(raw+"x", hash))

	_, err = GenerateSecureRandomString(0)
	assert.Error(t, err)
}
