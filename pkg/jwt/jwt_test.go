package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	manager := NewManager("test-secret", 60)

	token, err := manager.GenerateAccessToken("user-123", "reader@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "reader@example.com", claims.Email)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", 60).GenerateAccessToken("user-123", "reader@example.com")
	require.NoError(t, err)

	_, err = NewManager("secret-b", 60).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := NewManager("test-secret", 60).ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	manager := NewManager("test-secret", -1) // already expired at issue time

	token, err := manager.GenerateAccessToken("user-123", "reader@example.com")
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.Error(t, err)
}
