package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"startupops/config"
	"startupops/models"
)

func setJWTSecret(t *testing.T, secret string) {
	t.Helper()
	saved := config.AppConfig.JWTSecret
	config.AppConfig.JWTSecret = secret
	t.Cleanup(func() { config.AppConfig.JWTSecret = saved })
}

func TestJWTRoundTrip(t *testing.T) {
	setJWTSecret(t, "test-secret")

	user := &models.User{Model: gorm.Model{ID: 42}, TokenVersion: 3}
	access, refresh, err := GenerateJWTToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := ParseJWTToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, 3, claims.TokenVersion)
}

func TestParseJWTTokenRejectsTampered(t *testing.T) {
	setJWTSecret(t, "test-secret")

	user := &models.User{Model: gorm.Model{ID: 42}}
	access, _, err := GenerateJWTToken(user)
	require.NoError(t, err)

	parts := strings.Split(access, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, err = ParseJWTToken(tampered)
	assert.Error(t, err)
}

func TestParseJWTTokenRejectsWrongSecret(t *testing.T) {
	setJWTSecret(t, "test-secret")

	user := &models.User{Model: gorm.Model{ID: 42}}
	access, _, err := GenerateJWTToken(user)
	require.NoError(t, err)

	config.AppConfig.JWTSecret = "another-secret"
	_, err = ParseJWTToken(access)
	assert.Error(t, err)
}

func TestRefreshTokensRejectsRevoked(t *testing.T) {
	setJWTSecret(t, "test-secret")
	db := newTestDB(t)

	user := models.User{Email: "founder@example.com", PasswordHash: "x", Role: models.RoleFounder}
	require.NoError(t, db.Create(&user).Error)

	_, refresh, err := GenerateJWTToken(&user)
	require.NoError(t, err)

	// Token version bump (password change) revokes outstanding tokens
	require.NoError(t, db.Model(&user).Update("token_version", user.TokenVersion+1).Error)

	_, _, err = RefreshTokens(db, refresh)
	assert.EqualError(t, err, "token revoked")
}

func TestRefreshTokensIssuesNewPair(t *testing.T) {
	setJWTSecret(t, "test-secret")
	db := newTestDB(t)

	user := models.User{Email: "founder@example.com", PasswordHash: "x", Role: models.RoleFounder}
	require.NoError(t, db.Create(&user).Error)

	_, refresh, err := GenerateJWTToken(&user)
	require.NoError(t, err)

	access2, refresh2, err := RefreshTokens(db, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access2)
	assert.NotEmpty(t, refresh2)
}
