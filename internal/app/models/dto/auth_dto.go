package dto

// RegisterRequest represents a registration request. Role is chosen here and
// only here; there is no later role change.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"profe@elihudroom.app"`
	Password string `json:"password" binding:"required,min=8" example:"s3cret-pass"`
	Name     string `json:"name" binding:"required" example:"Elena Vargas"`
	Role     string `json:"role" binding:"required,oneof=maestro alumno" example:"maestro"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse represents the token pair returned on login/refresh
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	TokenType        string `json:"tokenType" example:"Bearer"`
	ExpiresIn        int    `json:"expiresIn" example:"3600"`
	RefreshExpiresIn int    `json:"refreshExpiresIn" example:"2592000"`
}

// UserResponse is the resolved identity exposed to clients
type UserResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}
