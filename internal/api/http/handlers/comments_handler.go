package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-api/internal/api/dto"
	"github.com/spec-kit/bookstore-api/internal/auth"
	"github.com/spec-kit/bookstore-api/internal/domain"
	"github.com/spec-kit/bookstore-api/internal/service"
)

// CommentsHandler manages comments and comment likes.
type CommentsHandler struct {
	comments *service.CommentService
	likes    *service.LikeService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService, likeService *service.LikeService) *CommentsHandler {
	return &CommentsHandler{comments: commentService, likes: likeService}
}

// Create handles POST /comments.
func (h *CommentsHandler) Create(c *fiber.Ctx) error {
	var req dto.CommentCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.comments.Create(c.UserContext(), service.CommentInput{
		UserID:   req.UserID,
		ReviewID: req.ReviewID,
		Comment:  req.Comment,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "comment created", "comment": comment})
}

// List handles GET /comments.
func (h *CommentsHandler) List(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	page, err := h.comments.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(listResponse("comments", page.Items, page.Page, page.Size, page.Total))
}

// Get handles GET /comments/:id.
func (h *CommentsHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	comment, err := h.comments.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"comment": comment})
}

// Update handles PATCH /comments/:id.
func (h *CommentsHandler) Update(c *fiber.Ctx) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.CommentUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.comments.Update(c.UserContext(), claim, id, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "comment updated", "comment": comment})
}

// Delete handles DELETE /comments/:id.
func (h *CommentsHandler) Delete(c *fiber.Ctx) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.comments.Delete(c.UserContext(), claim, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "comment deleted"})
}

// Likes handles GET /comments/:id/likes.
func (h *CommentsHandler) Likes(c *fiber.Ctx) error {
	return listLikes(c, h.likes, domain.LikeTargetComment, "commentId")
}

// Like handles POST /comments/:id/likes.
func (h *CommentsHandler) Like(c *fiber.Ctx) error {
	return like(c, h.likes, domain.LikeTargetComment)
}

// Unlike handles DELETE /comments/:id/likes.
func (h *CommentsHandler) Unlike(c *fiber.Ctx) error {
	return unlike(c, h.likes, domain.LikeTargetComment)
}
