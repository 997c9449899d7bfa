package service

import (
	"context"
	"errors"

	"campaign-bot/internal/dto"
	"campaign-bot/pkg/auth"
	"campaign-bot/pkg/config"

	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService exchanges the admin API key for JWT tokens that protect the
// admin endpoints.
type AuthService struct {
	config     *config.AdminConfig
	jwtManager *auth.JWTManager
	logger     *zap.Logger
}

func NewAuthService(cfg *config.AdminConfig, jwtManager *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		config:     cfg,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if s.config.APIKeyHash == "" {
		s.logger.Warn("Admin login attempted with no API key configured")
		return nil, ErrInvalidCredentials
	}

	if !auth.CheckKeyHash(req.APIKey, s.config.APIKeyHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens()
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	claims, err := s.jwtManager.ValidateToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if claims.Subject != "admin" || claims.Role != "refresh" {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens()
}

func (s *AuthService) issueTokens() (*dto.AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateToken("admin", "admin")
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken("admin")
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwtManager.GetTokenDuration().Seconds()),
	}, nil
}
