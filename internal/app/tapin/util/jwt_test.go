package util

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenWithExp(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestCredentialExpired_PastExp(t *testing.T) {
	assert.True(t, CredentialExpired(tokenWithExp(t, time.Now().Add(-time.Minute))))
}

func TestCredentialExpired_FutureExp(t *testing.T) {
	assert.False(t, CredentialExpired(tokenWithExp(t, time.Now().Add(time.Hour))))
}

func TestCredentialExpired_NoExpClaim(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "7"})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	assert.False(t, CredentialExpired(signed))
}

func TestCredentialExpired_OpaqueTokenTreatedAsAlive(t *testing.T) {
	assert.False(t, CredentialExpired("opaque-session-token"))
	assert.False(t, CredentialExpired(""))
}
