package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/authz"
	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/modules"
	"github.com/jhoicas/erp-core/internal/application/usecase"
)

// RoleHandler roles del tenant y catálogo de permisos asignables.
type RoleHandler struct {
	uc       *usecase.RoleUseCase
	registry *modules.Registry
}

// NewRoleHandler construye el handler.
func NewRoleHandler(uc *usecase.RoleUseCase, registry *modules.Registry) *RoleHandler {
	return &RoleHandler{uc: uc, registry: registry}
}

// Create godoc
// @Summary      Crear rol
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateRoleRequest  true  "Nombre, slug y permisos"
// @Success      201   {object}  dto.RoleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/roles [post]
func (h *RoleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRoleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.RoleResponse
// @Router       /api/roles [get]
func (h *RoleHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar rol
// @Tags         roles
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del rol"
// @Success      204
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/roles/{id} [delete]
func (h *RoleHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Assign godoc
// @Summary      Asignar rol a un usuario
// @Description  company_id vacío asigna el rol de forma global.
// @Tags         roles
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string                 true  "ID del rol"
// @Param        body  body  dto.AssignRoleRequest  true  "user_id, company_id"
// @Success      204
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/roles/{id}/assign [post]
func (h *RoleHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignRoleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.UserID == "" {
		return badRequest(c, "VALIDATION", "user_id es requerido")
	}
	if err := h.uc.Assign(c.UserContext(), c.Params("id"), in); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Catalog godoc
// @Summary      Catálogo de permisos
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.PermissionCatalogResponse
// @Router       /api/permissions [get]
func (h *RoleHandler) Catalog(c *fiber.Ctx) error {
	out := dto.PermissionCatalogResponse{Core: authz.CorePermissions(), Modules: map[string][]string{}}
	for id, perms := range h.registry.AllPermissions() {
		keys := make([]string, 0, len(perms))
		for _, p := range perms {
			keys = append(keys, p.Key)
		}
		out.Modules[id] = keys
	}
	return c.JSON(out)
}
