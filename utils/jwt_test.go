package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haven-community/haven/config"
)

func init() {
	config.SetForTesting(config.AppConfig{JWTSecret: "test-secret"})
}

func TestSessionRoundTrip(t *testing.T) {
	token, err := IssueSession(42, "alice@example.com")
	require.NoError(t, err)

	claims, err := ParseSession(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)

	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, SessionTTL-time.Minute)
	assert.LessOrEqual(t, remaining, SessionTTL)
}

func TestParseSessionRejectsExpired(t *testing.T) {
	claims := Claims{
		UserID: 42,
		Email:  "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-8 * 24 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ParseSession(token)
	assert.Error(t, err)
}

func TestParseSessionRejectsTampering(t *testing.T) {
	token, err := IssueSession(42, "alice@example.com")
	require.NoError(t, err)

	_, err = ParseSession(token + "x")
	assert.Error(t, err)

	_, err = ParseSession("not-a-token")
	assert.Error(t, err)

	_, err = ParseSession("")
	assert.Error(t, err)
}

func TestParseSessionRejectsWrongKey(t *testing.T) {
	claims := Claims{
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = ParseSession(token)
	assert.Error(t, err)
}
