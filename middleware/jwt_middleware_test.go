package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	access, refresh, err := GenerateJWT("64f1b2a3c4d5e6f7a8b9c0d1", "member@example.com", "user")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	claims, err := ParseToken(access)
	require.NoError(t, err)
	assert.Equal(t, "64f1b2a3c4d5e6f7a8b9c0d1", claims.UserID)
	assert.Equal(t, "member@example.com", claims.Email)
	assert.Equal(t, "user", claims.UserType)

	refreshClaims, err := ParseToken(refresh)
	require.NoError(t, err)
	assert.Greater(t, refreshClaims.ExpiresAt, claims.ExpiresAt,
		"refresh token must outlive the access token")
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-one")
	access, _, err := GenerateJWT("u1", "a@b.c", "user")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "secret-two")
	_, err = ParseToken(access)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	claims := &JwtCustomClaims{
		UserID:   "u1",
		UserType: "user",
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(-time.Minute).Unix(),
			IssuedAt:  time.Now().Add(-time.Hour).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ParseToken(token)
	require.Error(t, err)

	var vErr *jwt.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.NotZero(t, vErr.Errors&jwt.ValidationErrorExpired)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	_, err := ParseToken("not.a.token")
	assert.Error(t, err)
}
