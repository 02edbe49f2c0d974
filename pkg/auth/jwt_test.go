// pkg/auth/jwt_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenManager() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestTokenManager_GenerateAndValidatePair(t *testing.T) {
	tm := newTestTokenManager()

	access, refresh, expiresIn, err := tm.GenerateTokenPair("user-1", "test@example.com", "member")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.Equal(t, int64((15 * time.Minute).Seconds()), expiresIn)

	claims, err := tm.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, "member", claims.Role)
	assert.Equal(t, "access", claims.Type)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)

	refreshClaims, err := tm.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.Type)
}

func TestTokenManager_RejectsWrongTokenType(t *testing.T) {
	tm := newTestTokenManager()

	access, refresh, _, err := tm.GenerateTokenPair("user-1", "test@example.com", "member")
	require.NoError(t, err)

	_, err = tm.ValidateAccessToken(refresh)
	assert.Error(t, err, "refresh token must not validate as access token")

	_, err = tm.ValidateRefreshToken(access)
	assert.Error(t, err, "access token must not validate as refresh token")
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	access, _, _, err := tm.GenerateTokenPair("user-1", "test@example.com", "member")
	require.NoError(t, err)

	_, err = tm.ValidateAccessToken(access)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	tm := newTestTokenManager()
	other := NewTokenManager("other-secret", "other-refresh", 15*time.Minute, time.Hour)

	access, _, _, err := other.GenerateTokenPair("user-1", "test@example.com", "member")
	require.NoError(t, err)

	_, err = tm.ValidateAccessToken(access)
	assert.Error(t, err, "token signed with a different secret must be rejected")
}

func TestTokenManager_RefreshAccessToken(t *testing.T) {
	tm := newTestTokenManager()

	_, refresh, _, err := tm.GenerateTokenPair("user-1", "test@example.com", "manager")
	require.NoError(t, err)

	access, expiresIn, err := tm.RefreshAccessToken(refresh)
	require.NoError(t, err)
	assert.Positive(t, expiresIn)

	claims, err := tm.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "manager", claims.Role)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid bearer header", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"missing prefix", "abc.def.ghi", "", true},
		{"empty header", "", "", true},
		{"wrong scheme", "Basic abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTokenFromHeader(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
