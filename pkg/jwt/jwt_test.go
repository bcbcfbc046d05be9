package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager("test-secret", 15*time.Minute, 72*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken("user-1", "jamie@example.com", "admin")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "jamie@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "access", claims.Type)
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	m := newTestManager()

	refresh, err := m.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(refresh)
	assert.Error(t, err)

	claims, err := m.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	m := newTestManager()
	other := NewManager("different-secret", 15*time.Minute, 72*time.Hour)

	token, err := m.GenerateAccessToken("user-1", "jamie@example.com", "user")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, 72*time.Hour)

	token, err := m.GenerateAccessToken("user-1", "jamie@example.com", "user")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}
