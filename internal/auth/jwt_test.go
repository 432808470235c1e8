package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken(42, secret, time.Hour)
	require.NoError(t, err)

	userID, err := UserIDFromToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokenWrongKey(t *testing.T) {
	token, err := GenerateToken(42, []byte("right"), time.Hour)
	require.NoError(t, err)

	_, err = UserIDFromToken(token, []byte("wrong"))
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken(42, secret, -time.Minute)
	require.NoError(t, err)

	_, err = UserIDFromToken(token, secret)
	assert.Error(t, err)
}

func TestVerifyToken(t *testing.T) {
	Init(&Config{SecretKey: "test-secret"})

	token, err := GenerateToken(7, []byte("test-secret"), time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/v1/customers", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	userID, err := VerifyToken(r)
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)
}

func TestVerifyToken_BadHeaders(t *testing.T) {
	Init(&Config{SecretKey: "test-secret"})

	r := httptest.NewRequest("GET", "/v1/customers", nil)
	_, err := VerifyToken(r)
	assert.Error(t, err)

	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	_, err = VerifyToken(r)
	assert.Error(t, err)

	r.Header.Set("Authorization", "Bearer not-a-jwt")
	_, err = VerifyToken(r)
	assert.Error(t, err)
}
