package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupage/school-api/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	claims := &models.JWTClaims{
		UserID:   "u-1",
		Role:     models.RoleAccountant,
		Email:    "dana@example.com",
		FullName: "Dana Vesela",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestParseTokenValid(t *testing.T) {
	raw := signToken(t, testSecret, time.Now().Add(time.Hour))

	claims, err := ParseToken(testSecret, raw)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, models.RoleAccountant, claims.Role)
}

func TestParseTokenWrongSecret(t *testing.T) {
	raw := signToken(t, "other-secret", time.Now().Add(time.Hour))

	_, err := ParseToken(testSecret, raw)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	raw := signToken(t, testSecret, time.Now().Add(-time.Minute))

	_, err := ParseToken(testSecret, raw)
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken(testSecret, "not-a-token")
	assert.Error(t, err)
}
