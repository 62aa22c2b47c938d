package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/modules"
	"github.com/jhoicas/erp-core/internal/application/tenancy"
	"github.com/jhoicas/erp-core/internal/application/usecase"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// LandlordHandler operaciones del landlord sobre los tenants.
type LandlordHandler struct {
	tenants repository.TenantRepository
	uc      *usecase.TenantUseCase
	modules *modules.Service
}

// NewLandlordHandler construye el handler.
func NewLandlordHandler(tenants repository.TenantRepository, uc *usecase.TenantUseCase, svc *modules.Service) *LandlordHandler {
	return &LandlordHandler{tenants: tenants, uc: uc, modules: svc}
}

// List godoc
// @Summary      Listar tenants
// @Tags         landlord
// @Produce      json
// @Success      200  {array}  dto.TenantResponse
// @Router       /api/landlord/tenants [get]
func (h *LandlordHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar plan, límites y estado de un tenant
// @Tags         landlord
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del tenant"
// @Param        body  body  dto.UpdateTenantRequest  true  "Datos del tenant"
// @Success      200   {object}  dto.TenantResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/landlord/tenants/{id} [put]
func (h *LandlordHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateTenantRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar un tenant
// @Description  No borra datos: el tenant deja de resolverse como activo.
// @Tags         landlord
// @Param        id   path  string  true  "ID del tenant"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/landlord/tenants/{id}/deactivate [post]
func (h *LandlordHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.uc.Deactivate(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Modules godoc
// @Summary      Estado de los módulos de un tenant
// @Tags         landlord
// @Produce      json
// @Param        id   path  string  true  "ID del tenant"
// @Success      200  {array}  modules.State
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/landlord/tenants/{id}/modules [get]
func (h *LandlordHandler) Modules(c *fiber.Ctx) error {
	if err := h.enterTenant(c); err != nil {
		return writeError(c, err)
	}
	states, err := h.modules.States(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(states)
}

// UpdateModules godoc
// @Summary      Activar o desactivar módulos de un tenant
// @Description  Los cambios se aplican juntos; las dependencias se validan contra el estado final.
// @Tags         landlord
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del tenant"
// @Param        body  body  dto.UpdateModulesRequest  true  "id de módulo -> activo"
// @Success      200   {array}  modules.State
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/landlord/tenants/{id}/modules [put]
func (h *LandlordHandler) UpdateModules(c *fiber.Ctx) error {
	var in dto.UpdateModulesRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if len(in.Modules) == 0 {
		return badRequest(c, "VALIDATION", "modules es requerido")
	}
	if err := h.enterTenant(c); err != nil {
		return writeError(c, err)
	}
	ctx := c.UserContext()
	if err := h.modules.Apply(ctx, in.Modules); err != nil {
		return writeError(c, err)
	}
	states, err := h.modules.States(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(states)
}

// enterTenant inicializa el tenant de la ruta en el contexto del request.
func (h *LandlordHandler) enterTenant(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tenant, err := h.tenants.GetByID(ctx, c.Params("id"))
	if err != nil {
		return err
	}
	if tenant == nil {
		return domain.ErrNotFound
	}
	c.SetUserContext(tenancy.WithTenant(ctx, tenant))
	return nil
}
