package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "a-test-secret-long-enough-for-hmac"

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 24*time.Hour)

	tokenString, err := tm.GenerateAccessToken("acct-1", "user@example.com", "biometric")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(tokenString)
	require.NoError(t, err)

	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, "acct-1", claims.AccountID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "biometric", claims.Factor)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_RefreshTokenType(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 24*time.Hour)

	tokenString, err := tm.GenerateRefreshToken("acct-1", "user@example.com", "credential")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims.Type)
}

func TestTokenManager_ExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager(testSecret, -1*time.Minute, 24*time.Hour)

	tokenString, err := tm.GenerateAccessToken("acct-1", "user@example.com", "credential")
	require.NoError(t, err)

	_, err = tm.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestTokenManager_WrongSecretRejected(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 24*time.Hour)
	other := NewTokenManager("a-different-secret-also-long-enough", 15*time.Minute, 24*time.Hour)

	tokenString, err := tm.GenerateAccessToken("acct-1", "user@example.com", "credential")
	require.NoError(t, err)

	_, err = other.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestTokenManager_DistinctJTIs(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 24*time.Hour)

	t1, err := tm.GenerateAccessToken("acct-1", "user@example.com", "credential")
	require.NoError(t, err)
	t2, err := tm.GenerateAccessToken("acct-1", "user@example.com", "credential")
	require.NoError(t, err)

	c1, err := tm.ValidateToken(t1)
	require.NoError(t, err)
	c2, err := tm.ValidateToken(t2)
	require.NoError(t, err)

	assert.NotEqual(t, c1.ID, c2.ID)
}
