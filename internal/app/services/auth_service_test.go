package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elihudev/elihudroom/internal/app/models"
	"github.com/elihudev/elihudroom/internal/app/models/dto"
	"github.com/elihudev/elihudroom/internal/pkg/apperrors"
	"github.com/elihudev/elihudroom/internal/pkg/auth"
)

func newAuthServiceFixture() (AuthService, *fakeUserStore, *fakeTokenStore, *auth.JWTService) {
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "elihudroom.test",
	})
	return NewAuthService(users, tokens, jwtService), users, tokens, jwtService
}

func registerRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:    "Profe@Elihudroom.App",
		Password: "s3cret-pass",
		Name:     "Elena Vargas",
		Role:     "maestro",
	}
}

func TestRegister(t *testing.T) {
	svc, users, _, jwtService := newAuthServiceFixture()

	resp, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int(time.Hour.Seconds()), resp.ExpiresIn)

	claims, err := jwtService.ValidateAndExtractClaims(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "profe@elihudroom.app", claims.Email)
	assert.Equal(t, "maestro", claims.Role)

	// Stored email is lowercased; the password never lands in plaintext
	stored, err := users.GetUserByEmail(context.Background(), "profe@elihudroom.app")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.Password)
	assert.True(t, auth.CheckPassword(stored.Password, "s3cret-pass"))
}

func TestRegisterRejectsInvalidRole(t *testing.T) {
	svc, _, _, _ := newAuthServiceFixture()

	req := registerRequest()
	req.Role = "director"
	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRole)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newAuthServiceFixture()

	_, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	// Same address with different casing still collides
	req := registerRequest()
	req.Email = "PROFE@elihudroom.app"
	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestLogin(t *testing.T) {
	svc, _, _, _ := newAuthServiceFixture()

	_, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "profe@elihudroom.app",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _, _ := newAuthServiceFixture()

	_, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "profe@elihudroom.app",
		Password: "wrong-pass",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	// An unknown address is indistinguishable from a wrong password
	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nadie@elihudroom.app",
		Password: "s3cret-pass",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRefreshTokenRotates(t *testing.T) {
	svc, _, tokens, _ := newAuthServiceFixture()

	registered, err := svc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), registered.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	// The consumed token is gone
	_, err = tokens.GetTokenUserID(context.Background(), registered.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)

	_, err = svc.RefreshToken(context.Background(), registered.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)

	// The replacement still works
	_, err = svc.RefreshToken(context.Background(), refreshed.RefreshToken)
	assert.NoError(t, err)
}

func TestResolveIdentity(t *testing.T) {
	svc, users, _, _ := newAuthServiceFixture()

	id, err := users.CreateUser(context.Background(), &models.User{
		Email: "alumno@elihudroom.app",
		Name:  "Marco Ruiz",
		Role:  models.RoleAlumno,
	})
	require.NoError(t, err)

	resolved := svc.ResolveIdentity(context.Background(), &auth.Claims{
		UserID: id,
		Email:  "alumno@elihudroom.app",
		Role:   "alumno",
	})
	require.NotNil(t, resolved)
	assert.Equal(t, "Marco Ruiz", resolved.Name)

	// Deleted profile degrades to the bare token identity
	bare := svc.ResolveIdentity(context.Background(), &auth.Claims{
		UserID: 999,
		Email:  "fantasma@elihudroom.app",
		Role:   "alumno",
	})
	require.NotNil(t, bare)
	assert.Equal(t, int64(999), bare.ID)
	assert.Equal(t, "fantasma@elihudroom.app", bare.Email)
	assert.Empty(t, bare.Name)
}
