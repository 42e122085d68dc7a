package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-api/internal/domain"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

const identityKey = "auth_identity"

// AuthMiddleware validates bearer tokens and attaches the caller's identity.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes. It never touches storage.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if authHeader == "" {
		return apperrors.NewUnauthenticated("missing token")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewTokenInvalid("invalid authorization header")
	}
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		return apperrors.NewUnauthenticated("missing token")
	}

	claim, err := m.tokens.ParseAccessToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return TokenError(err)
	}

	c.Locals(identityKey, &claim)
	return c.Next()
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (*domain.IdentityClaim, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	claim, ok := val.(*domain.IdentityClaim)
	return claim, ok && claim != nil
}

// MustIdentity returns the caller or an Unauthenticated error.
func MustIdentity(c *fiber.Ctx) (*domain.IdentityClaim, error) {
	claim, ok := IdentityFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	return claim, nil
}
