package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-api/internal/api/dto"
	"github.com/spec-kit/bookstore-api/internal/auth"
	"github.com/spec-kit/bookstore-api/internal/domain"
	"github.com/spec-kit/bookstore-api/internal/repository"
	"github.com/spec-kit/bookstore-api/internal/service"
)

// UsersHandler manages accounts and per-user listings.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Register handles POST /users.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.users.Register(c.UserContext(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Gender:   req.Gender,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "user registered", "user": user})
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), claim.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	filter := repository.UserFilter{ListQuery: q}
	if raw := c.Query("role"); raw != "" {
		role := domain.ParseRole(raw)
		filter.Role = &role
	}
	page, err := h.users.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(listResponse("users", page.Items, page.Page, page.Size, page.Total))
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}

// Update handles PATCH /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UserUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.Update(c.UserContext(), id, service.UserUpdateInput{
		Name:     req.Name,
		Gender:   req.Gender,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "user updated", "user": user})
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "user deleted"})
}

// Reviews handles GET /users/:id/reviews.
func (h *UsersHandler) Reviews(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	reviews, err := h.users.Reviews(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(countResponse("userId", id, "reviews", reviews))
}

// Comments handles GET /users/:id/comments.
func (h *UsersHandler) Comments(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	comments, err := h.users.Comments(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(countResponse("userId", id, "comments", comments))
}

// ReviewLikes handles GET /users/:id/review-likes.
func (h *UsersHandler) ReviewLikes(c *fiber.Ctx) error {
	return h.likes(c, domain.LikeTargetReview)
}

// CommentLikes handles GET /users/:id/comment-likes.
func (h *UsersHandler) CommentLikes(c *fiber.Ctx) error {
	return h.likes(c, domain.LikeTargetComment)
}

func (h *UsersHandler) likes(c *fiber.Ctx, target domain.LikeTarget) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	likes, err := h.users.Likes(c.UserContext(), id, target)
	if err != nil {
		return err
	}
	return c.JSON(countResponse("userId", id, "likes", likes))
}

// Favorites handles GET /users/:id/favorites.
func (h *UsersHandler) Favorites(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	favorites, err := h.users.Favorites(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(countResponse("userId", id, "favorites", favorites))
}

// Carts handles GET /users/:id/carts.
func (h *UsersHandler) Carts(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	items, err := h.users.Carts(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(countResponse("userId", id, "carts", items))
}

// Orders handles GET /users/:id/orders.
func (h *UsersHandler) Orders(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	orders, err := h.users.Orders(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(countResponse("userId", id, "orders", orders))
}
