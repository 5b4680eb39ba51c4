package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeguide/pkg/config"
)

func testManager() *JWTManager {
	return NewJWTManager("test-secret", "routeguide", 15*time.Minute)
}

func TestJWTManager_IssueAndValidate(t *testing.T) {
	m := testManager()

	token, err := m.Issue("user-1", "alice", "operator")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "operator", claims.Role)
	assert.Equal(t, "routeguide", claims.Issuer)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	m := testManager()

	token, err := m.Issue("user-1", "alice", "operator")
	require.NoError(t, err)

	other := NewJWTManager("other-secret", "routeguide", 15*time.Minute)
	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", "routeguide", -time.Minute)
	// Отрицательный TTL заменяется значением по умолчанию
	assert.Equal(t, 15*time.Minute, m.TokenTTL())
}

func TestJWTManager_Garbage(t *testing.T) {
	m := testManager()

	_, err := m.Validate("not.a.token")
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	m := FromConfig(&config.AuthConfig{
		Secret:   "secret",
		Issuer:   "routeguide",
		TokenTTL: time.Hour,
	})

	assert.Equal(t, time.Hour, m.TokenTTL())
}
