package dto

import (
	"time"

	"github.com/spec-kit/bookstore-api/internal/domain"
)

// LoginRequest payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest payload for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutRequest payload for POST /auth/logout.
type LogoutRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Message               string       `json:"message"`
	AccessToken           string       `json:"accessToken"`
	RefreshToken          string       `json:"refreshToken"`
	AccessTokenExpiresAt  time.Time    `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time    `json:"refreshTokenExpiresAt"`
	User                  UserIdentity `json:"user"`
}

// RefreshResponse carries the new access token.
type RefreshResponse struct {
	Message              string    `json:"message"`
	AccessToken          string    `json:"accessToken"`
	AccessTokenExpiresAt time.Time `json:"accessTokenExpiresAt"`
}

// UserIdentity is the user summary embedded in login responses.
type UserIdentity struct {
	ID    int64       `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
}
