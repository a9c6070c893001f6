package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken("secret", TokenClaims{
		UserID:   "user-1",
		TenantID: "tenant-1",
		Role:     "owner",
	}, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := VerifyToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, "owner", claims.Role)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	token, err := IssueToken("secret", TokenClaims{UserID: "user-1"}, time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken("other-secret", token)
	assert.Error(t, err)
}

func TestVerifyToken_Expired(t *testing.T) {
	token, err := IssueToken("secret", TokenClaims{UserID: "user-1"}, -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken("secret", token)
	assert.Error(t, err)
}

func TestVerifyToken_Garbage(t *testing.T) {
	_, err := VerifyToken("secret", "definitely.not.ajwt")
	assert.Error(t, err)
}

func TestVerifyToken_EmptyOptionalClaims(t *testing.T) {
	token, err := IssueToken("secret", TokenClaims{UserID: "user-1"}, time.Hour)
	require.NoError(t, err)

	claims, err := VerifyToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Empty(t, claims.TenantID)
	assert.Empty(t, claims.Role)
}
