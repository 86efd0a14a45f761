package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/elihudev/elihudroom/internal/app/models"
	"github.com/elihudev/elihudroom/internal/app/models/dto"
	"github.com/elihudev/elihudroom/internal/pkg/apperrors"
	"github.com/elihudev/elihudroom/internal/pkg/auth"
	"github.com/elihudev/elihudroom/internal/pkg/logger"
)

// AuthService handles registration, login and token refresh
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	ResolveIdentity(ctx context.Context, claims *auth.Claims) *models.User
}

type authService struct {
	users      UserStore
	tokens     TokenStore
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService instance
func NewAuthService(users UserStore, tokens TokenStore, jwtService *auth.JWTService) AuthService {
	return &authService{
		users:      users,
		tokens:     tokens,
		jwtService: jwtService,
		logger:     logger.WithField("component", "auth_service"),
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	role := models.RoleType(req.Role)
	if !role.IsValid() {
		return nil, apperrors.ErrInvalidRole
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, err
	}

	user := &models.User{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: hashed,
		Name:     strings.TrimSpace(req.Name),
		Role:     role,
	}
	if user.Name == "" {
		return nil, apperrors.NewValidationError("name must not be empty")
	}

	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("email", user.Email).Msg("Failed to create user")
		return nil, err
	}
	user.ID = id

	s.logger.Info().Int64("userId", id).Str("role", string(role)).Msg("User registered")
	return s.issueTokens(ctx, user)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("email", email).Msg("Failed to look up user")
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	s.logger.Debug().Int64("userId", user.ID).Msg("User logged in")
	return s.issueTokens(ctx, user)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	userID, err := s.tokens.GetTokenUserID(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Rotate: the old token is gone once a new pair is issued.
	if err := s.tokens.DeleteToken(ctx, refreshToken); err != nil {
		s.logger.Warn().Err(err).Int64("userId", userID).Msg("Failed to delete consumed refresh token")
	}

	return s.issueTokens(ctx, user)
}

// ResolveIdentity merges stored profile data into the identity carried by
// the token claims. When the profile cannot be fetched the bare claims
// identity is returned so the request can still proceed.
func (s *authService) ResolveIdentity(ctx context.Context, claims *auth.Claims) *models.User {
	bare := &models.User{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  models.RoleType(claims.Role),
	}

	stored, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Warn().Err(err).Int64("userId", claims.UserID).Msg("Profile lookup failed, using bare token identity")
		}
		return bare
	}
	return stored
}

func (s *authService) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		s.logger.Error().Err(err).Int64("userId", user.ID).Msg("Failed to generate token pair")
		return nil, err
	}

	if err := s.tokens.CreateToken(ctx, refreshToken, user.ID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		s.logger.Error().Err(err).Int64("userId", user.ID).Msg("Failed to store refresh token")
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        expiresIn,
		RefreshExpiresIn: refreshExpiresIn,
	}, nil
}
