// pkg/auth/password_test.go
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordManager_HashAndCompare(t *testing.T) {
	pm := NewPasswordManager()

	hash, err := pm.HashPassword("SecurePass123")
	require.NoError(t, err)
	assert.NotEqual(t, "SecurePass123", hash)

	assert.NoError(t, pm.ComparePassword(hash, "SecurePass123"))
	assert.Error(t, pm.ComparePassword(hash, "WrongPass123"))
}

func TestPasswordManager_ValidatePassword(t *testing.T) {
	pm := NewPasswordManager()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "SecurePass123", false},
		{"too short", "Ab1", true},
		{"missing uppercase", "securepass123", true},
		{"missing lowercase", "SECUREPASS123", true},
		{"missing number", "SecurePassword", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pm.ValidatePassword(tt.password)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrWeakPassword)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("user@example.com"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail(""))
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("user_name-1"))
	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername("bad name"))
}
