package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-api/internal/auth"
	"github.com/spec-kit/bookstore-api/internal/domain"
	"github.com/spec-kit/bookstore-api/internal/repository"
	"github.com/spec-kit/bookstore-api/internal/service"
)

// AdminHandler serves the administrator console.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: adminService}
}

// ListUsers handles GET /admin/users. Page 0 and 1 both address the first page;
// the requested page is echoed back.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	requested := 1
	if raw := c.Query("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			requested = parsed
		}
	}
	q.Page = requested
	filter := repository.UserFilter{ListQuery: q}
	if raw := c.Query("role"); raw != "" {
		role := domain.ParseRole(raw)
		filter.Role = &role
	}

	page, err := h.admin.ListUsers(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"page":       requested,
		"size":       page.Size,
		"total":      page.Total,
		"totalPages": page.TotalPages(),
		"users":      nonNilSlice(page.Items),
	})
}

// BanUser handles PATCH /admin/users/:id/ban.
func (h *AdminHandler) BanUser(c *fiber.Ctx) error {
	claim, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	user, err := h.admin.BanUser(c.UserContext(), claim, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "user banned", "user": user})
}

// OrderStatistics handles GET /admin/statistics/orders.
func (h *AdminHandler) OrderStatistics(c *fiber.Ctx) error {
	stats, err := h.admin.OrderStatistics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
