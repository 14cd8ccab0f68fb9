package websocket

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// mockUserLookup is a test double for UserLookup
type mockUserLookup struct {
	userID string
	err    error
}

func (m *mockUserLookup) GetUserIDByAuth0ID(auth0ID string) (userID string, err error) {
	return m.userID, m.err
}

func TestUserLookup_Interface(t *testing.T) {
	// Verify mockUserLookup implements UserLookup
	var _ UserLookup = (*mockUserLookup)(nil)
}

func TestValidatorErrors(t *testing.T) {
	t.Run("ErrUnknownUser is returned correctly", func(t *testing.T) {
		assert.Equal(t, "unknown user", ErrUnknownUser.Error())
	})

	t.Run("ErrInvalidToken is returned correctly", func(t *testing.T) {
		assert.Equal(t, "invalid token", ErrInvalidToken.Error())
	})
}

func TestCustomClaims_Validate(t *testing.T) {
	claims := &CustomClaims{}
	err := claims.Validate(nil)
	assert.NoError(t, err, "CustomClaims.Validate should return nil")
}

func TestNewAuth0JWTValidator_InvalidDomain(t *testing.T) {
	lookup := &mockUserLookup{userID: "user-1"}

	// Test with empty domain - should still work (URL parsing is lenient)
	validator, err := NewAuth0JWTValidator("", "audience", lookup)
	// Empty domain creates https:/// which is technically valid URL
	assert.NoError(t, err)
	assert.NotNil(t, validator)
}

func TestNewAuth0JWTValidator_Success(t *testing.T) {
	lookup := &mockUserLookup{userID: "user-1"}

	validator, err := NewAuth0JWTValidator("test.auth0.com", "https://api.splitbook.app", lookup)
	assert.NoError(t, err)
	assert.NotNil(t, validator)
	assert.NotNil(t, validator.validator)
	assert.Equal(t, lookup, validator.userLookup)
}

func TestAuth0JWTValidator_ValidateToken_InvalidJWT(t *testing.T) {
	lookup := &mockUserLookup{userID: "user-1"}

	validator, err := NewAuth0JWTValidator("test.auth0.com", "https://api.splitbook.app", lookup)
	assert.NoError(t, err)

	// Test with invalid token - should return ErrInvalidToken
	userID, err := validator.ValidateToken("invalid-token")
	assert.Error(t, err)
	assert.Equal(t, "", userID)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}
