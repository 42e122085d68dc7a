package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-api/internal/api/dto"
	"github.com/spec-kit/bookstore-api/internal/auth"
	"github.com/spec-kit/bookstore-api/internal/service"
)

// CartsHandler manages cart lines.
type CartsHandler struct {
	carts *service.CartService
}

// NewCartsHandler constructs handler.
func NewCartsHandler(cartService *service.CartService) *CartsHandler {
	return &CartsHandler{carts: cartService}
}

// Create handles POST /carts. Adding a book already in the cart bumps its quantity.
func (h *CartsHandler) Create(c *fiber.Ctx) error {
	var req dto.CartCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	item, created, err := h.carts.Add(c.UserContext(), service.CartAddInput{
		UserID:   req.UserID,
		BookID:   req.BookID,
		Quantity: req.Quantity,
	})
	if err != nil {
		return err
	}
	if !created {
		return c.JSON(fiber.Map{"message": "cart quantity updated", "item": item})
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "book added to cart", "item": item})
}

// List handles GET /carts.
func (h *CartsHandler) List(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	page, err := h.carts.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(listResponse("carts", page.Items, page.Page, page.Size, page.Total))
}

// ListByUser handles GET /carts/user/:userId.
func (h *CartsHandler) ListByUser(c *fiber.Ctx) error {
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	items, err := h.carts.ListByUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(countResponse("userId", userID, "carts", items))
}

// Get handles GET /carts/:id.
func (h *CartsHandler) Get(c *fiber.Ctx) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	item, err := h.carts.Get(c.UserContext(), claim, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"item": item})
}

// Update handles PATCH /carts/:id.
func (h *CartsHandler) Update(c *fiber.Ctx) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.CartUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	item, err := h.carts.UpdateQuantity(c.UserContext(), claim, id, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "cart item updated", "item": item})
}

// Delete handles DELETE /carts/:id.
func (h *CartsHandler) Delete(c *fiber.Ctx) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.carts.Delete(c.UserContext(), claim, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "cart item deleted"})
}
