package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-api/internal/api/dto"
	"github.com/spec-kit/bookstore-api/internal/service"
)

// AuthHandler exposes login, refresh and logout.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{
		Message:               "login successful",
		AccessToken:           res.Tokens.AccessToken,
		RefreshToken:          res.Tokens.RefreshToken,
		AccessTokenExpiresAt:  res.Tokens.AccessExpiresAt,
		RefreshTokenExpiresAt: res.Tokens.RefreshExpiresAt,
		User: dto.UserIdentity{
			ID:    res.User.ID,
			Email: res.User.Email,
			Name:  res.User.Name,
			Role:  res.User.Role,
		},
	})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	token, exp, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(dto.RefreshResponse{
		Message:              "access token refreshed",
		AccessToken:          token,
		AccessTokenExpiresAt: exp,
	})
}

// Logout handles POST /auth/logout. The route guard has already matched userId to the caller.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), req.UserID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "logged out"})
}
