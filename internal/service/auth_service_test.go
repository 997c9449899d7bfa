package service

import (
	"context"
	"testing"
	"time"

	"campaign-bot/internal/dto"
	"campaign-bot/pkg/auth"
	"campaign-bot/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAdminKey = "campaign-admin-key"

func newTestAuthService(t *testing.T) (*AuthService, *auth.JWTManager) {
	t.Helper()

	hash, err := auth.HashKey(testAdminKey)
	require.NoError(t, err)

	jwtManager := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	svc := NewAuthService(&config.AdminConfig{APIKeyHash: hash}, jwtManager, zap.NewNop())
	return svc, jwtManager
}

func TestLoginIssuesTokensForCorrectKey(t *testing.T) {
	svc, jwtManager := newTestAuthService(t)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{APIKey: testAdminKey})

	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := jwtManager.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, "admin", claims.Role)

	refreshClaims, err := jwtManager.ValidateToken(resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.Role)
}

func TestLoginRejectsWrongKey(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{APIKey: "wrong-key"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsWhenNoKeyConfigured(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	svc := NewAuthService(&config.AdminConfig{}, jwtManager, zap.NewNop())

	_, err := svc.Login(context.Background(), &dto.LoginRequest{APIKey: testAdminKey})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshTokenRotatesTokens(t *testing.T) {
	svc, jwtManager := newTestAuthService(t)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{APIKey: testAdminKey})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), login.RefreshToken)

	require.NoError(t, err)
	claims, err := jwtManager.ValidateToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	svc, _ := newTestAuthService(t)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{APIKey: testAdminKey})
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), login.AccessToken)

	assert.ErrorIs(t, err, ErrInvalidCredentials, "an access token must not pass as a refresh token")
}

func TestRefreshTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.RefreshToken(context.Background(), "not-a-token")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
