package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-api/internal/api/dto"
	"github.com/spec-kit/bookstore-api/internal/auth"
	"github.com/spec-kit/bookstore-api/internal/domain"
	"github.com/spec-kit/bookstore-api/internal/repository"
	"github.com/spec-kit/bookstore-api/internal/service"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

// ReviewsHandler manages reviews and review likes.
type ReviewsHandler struct {
	reviews *service.ReviewService
	likes   *service.LikeService
}

// NewReviewsHandler constructs handler.
func NewReviewsHandler(reviewService *service.ReviewService, likeService *service.LikeService) *ReviewsHandler {
	return &ReviewsHandler{reviews: reviewService, likes: likeService}
}

// Create handles POST /reviews.
func (h *ReviewsHandler) Create(c *fiber.Ctx) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	var req dto.ReviewCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	review, err := h.reviews.Create(c.UserContext(), claim, service.ReviewInput{
		UserID:  req.UserID,
		BookID:  req.BookID,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "review created", "review": review})
}

// List handles GET /reviews.
func (h *ReviewsHandler) List(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	filter := repository.ReviewFilter{ListQuery: q}
	if raw := c.Query("rating"); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil || rating < 1 || rating > 5 {
			return apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": raw})
		}
		filter.Rating = &rating
	}
	if raw := c.Query("bookId"); raw != "" {
		bookID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || bookID <= 0 {
			return apperrors.NewValidationError("bookId must be a positive integer", map[string]any{"bookId": raw})
		}
		filter.BookID = &bookID
	}
	page, err := h.reviews.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(listResponse("reviews", page.Items, page.Page, page.Size, page.Total))
}

// Get handles GET /reviews/:id.
func (h *ReviewsHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	review, err := h.reviews.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"review": review})
}

// Update handles PATCH /reviews/:id.
func (h *ReviewsHandler) Update(c *fiber.Ctx) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ReviewUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	review, err := h.reviews.Update(c.UserContext(), claim, id, service.ReviewUpdateInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "review updated", "review": review})
}

// Delete handles DELETE /reviews/:id.
func (h *ReviewsHandler) Delete(c *fiber.Ctx) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.reviews.Delete(c.UserContext(), claim, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "review deleted"})
}

// Comments handles GET /reviews/:id/comments.
func (h *ReviewsHandler) Comments(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	comments, err := h.reviews.Comments(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(countResponse("reviewId", id, "comments", comments))
}

// Likes handles GET /reviews/:id/likes.
func (h *ReviewsHandler) Likes(c *fiber.Ctx) error {
	return listLikes(c, h.likes, domain.LikeTargetReview, "reviewId")
}

// Like handles POST /reviews/:id/likes.
func (h *ReviewsHandler) Like(c *fiber.Ctx) error {
	return like(c, h.likes, domain.LikeTargetReview)
}

// Unlike handles DELETE /reviews/:id/likes.
func (h *ReviewsHandler) Unlike(c *fiber.Ctx) error {
	return unlike(c, h.likes, domain.LikeTargetReview)
}

func listLikes(c *fiber.Ctx, likes *service.LikeService, target domain.LikeTarget, ownerKey string) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	items, err := likes.List(c.UserContext(), target, id)
	if err != nil {
		return err
	}
	return c.JSON(countResponse(ownerKey, id, "likes", items))
}

func like(c *fiber.Ctx, likes *service.LikeService, target domain.LikeTarget) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	item, err := likes.Like(c.UserContext(), claim, target, id)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": string(target) + " liked", "like": item})
}

func unlike(c *fiber.Ctx, likes *service.LikeService, target domain.LikeTarget) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := likes.Unlike(c.UserContext(), claim, target, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": string(target) + " unliked"})
}
