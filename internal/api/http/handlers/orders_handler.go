package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-api/internal/api/dto"
	"github.com/spec-kit/bookstore-api/internal/auth"
	"github.com/spec-kit/bookstore-api/internal/domain"
	"github.com/spec-kit/bookstore-api/internal/repository"
	"github.com/spec-kit/bookstore-api/internal/service"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

// OrdersHandler places and manages orders.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orderService *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orderService}
}

// Create handles POST /orders.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	var req dto.OrderCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	input := service.OrderCreateInput{UserID: req.UserID, DeliveryAddress: req.DeliveryAddress}
	for _, item := range req.Items {
		input.Items = append(input.Items, service.OrderItemInput{BookID: item.BookID, Quantity: item.Quantity})
	}
	order, err := h.orders.Create(c.UserContext(), claim, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "order placed", "order": order})
}

// List handles GET /orders.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	filter := repository.OrderFilter{ListQuery: q}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := domain.OrderStatus(strings.ToUpper(raw))
		if !status.Valid() {
			return apperrors.NewValidationError("invalid status filter", map[string]any{"status": raw})
		}
		filter.Status = &status
	}
	page, err := h.orders.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(listResponse("orders", page.Items, page.Page, page.Size, page.Total))
}

// ListByUser handles GET /orders/user/:userId.
func (h *OrdersHandler) ListByUser(c *fiber.Ctx) error {
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	orders, err := h.orders.ListByUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(countResponse("userId", userID, "orders", orders))
}

// Get handles GET /orders/:id.
func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	order, err := h.orders.Get(c.UserContext(), claim, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"order": order})
}

// UpdateStatus handles PATCH /orders/:id.
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.OrderStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	order, err := h.orders.UpdateStatus(c.UserContext(), claim, id, req.OrderStatus)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "order updated", "order": order})
}

// Delete handles DELETE /orders/:id.
func (h *OrdersHandler) Delete(c *fiber.Ctx) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.orders.Delete(c.UserContext(), claim, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "order deleted"})
}
