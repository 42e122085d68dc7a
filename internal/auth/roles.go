package auth

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-api/internal/domain"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

// AdminOnly allows the claim iff it carries the ADMIN role.
func AdminOnly(claim *domain.IdentityClaim) error {
	if claim == nil {
		return apperrors.NewUnauthenticated("authentication required")
	}
	if !claim.Role.IsAdmin() {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// SelfOrAdmin allows the claim iff it is an admin or the owner of the resource.
func SelfOrAdmin(claim *domain.IdentityClaim, ownerID int64) error {
	if claim == nil {
		return apperrors.NewUnauthenticated("authentication required")
	}
	if claim.Role.IsAdmin() || claim.SubjectID == ownerID {
		return nil
	}
	return apperrors.NewForbidden("only the owner or an admin may access this resource")
}

// OwnerSource extracts the owning user id of the targeted resource from a request.
type OwnerSource func(c *fiber.Ctx) (int64, error)

// ParamOwner reads the owner id from a path parameter such as /users/:id.
func ParamOwner(name string) OwnerSource {
	return func(c *fiber.Ctx) (int64, error) {
		id, err := strconv.ParseInt(c.Params(name), 10, 64)
		if err != nil || id <= 0 {
			return 0, fmt.Errorf("path parameter %q is not a valid id", name)
		}
		return id, nil
	}
}

// BodyOwner reads the owner id from a JSON body field such as {"userId": 3}.
// Numeric strings are accepted.
func BodyOwner(field string) OwnerSource {
	return func(c *fiber.Ctx) (int64, error) {
		var body map[string]json.RawMessage
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return 0, fmt.Errorf("request body is not a JSON object")
		}
		raw, ok := body[field]
		if !ok {
			return 0, fmt.Errorf("body field %q is required", field)
		}
		var id int64
		if err := json.Unmarshal(raw, &id); err != nil {
			var text string
			if err := json.Unmarshal(raw, &text); err != nil {
				return 0, fmt.Errorf("body field %q is not a valid id", field)
			}
			parsed, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("body field %q is not a valid id", field)
			}
			id = parsed
		}
		if id <= 0 {
			return 0, fmt.Errorf("body field %q is not a valid id", field)
		}
		return id, nil
	}
}

// RequireAdmin rejects callers without the ADMIN role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claim, _ := IdentityFromContext(c)
		if err := AdminOnly(claim); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireSelfOrAdmin rejects callers that neither own the resource nor are admins.
// Admins pass even when the owner id is malformed so the handler can report the validation error.
func RequireSelfOrAdmin(source OwnerSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claim, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if claim.Role.IsAdmin() {
			return c.Next()
		}
		ownerID, err := source(c)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		if err := SelfOrAdmin(claim, ownerID); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures the auth middleware ran and produced an identity.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := IdentityFromContext(c); !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		return c.Next()
	}
}
