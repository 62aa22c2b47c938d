package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/modules"
)

// NavigationHandler menú y dashboard según los módulos activos del tenant.
type NavigationHandler struct {
	registry *modules.Registry
}

// NewNavigationHandler construye el handler.
func NewNavigationHandler(registry *modules.Registry) *NavigationHandler {
	return &NavigationHandler{registry: registry}
}

// Navigation godoc
// @Summary      Ítems de navegación de los módulos activos
// @Tags         modules
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  modules.NavItem
// @Router       /api/navigation [get]
func (h *NavigationHandler) Navigation(c *fiber.Ctx) error {
	items, err := h.registry.NavigationItems(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(items)
}

// Widgets godoc
// @Summary      Widgets de dashboard de los módulos activos
// @Tags         modules
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  modules.Widget
// @Router       /api/dashboard/widgets [get]
func (h *NavigationHandler) Widgets(c *fiber.Ctx) error {
	widgets, err := h.registry.DashboardWidgets(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(widgets)
}
