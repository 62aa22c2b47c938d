package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/sequence"
	"github.com/jhoicas/erp-core/internal/application/tenancy"
	"github.com/jhoicas/erp-core/internal/domain"
)

// SequenceHandler expone los consecutivos de documento de la empresa activa.
type SequenceHandler struct {
	gen *sequence.Generator
}

// NewSequenceHandler construye el handler.
func NewSequenceHandler(gen *sequence.Generator) *SequenceHandler {
	return &SequenceHandler{gen: gen}
}

// Preview godoc
// @Summary      Siguiente número sin reservarlo
// @Tags         sequences
// @Produce      json
// @Security     BearerAuth
// @Param        type  path   string  true   "Tipo de documento"
// @Param        year  query  int     false  "Año (por defecto el actual)"
// @Success      200   {object}  dto.SequenceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sequences/{type}/preview [get]
func (h *SequenceHandler) Preview(c *fiber.Ctx) error {
	return h.respond(c, h.gen.Preview)
}

// Next godoc
// @Summary      Reservar el siguiente número
// @Tags         sequences
// @Produce      json
// @Security     BearerAuth
// @Param        type  path   string  true   "Tipo de documento"
// @Param        year  query  int     false  "Año (por defecto el actual)"
// @Success      201   {object}  dto.SequenceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/sequences/{type}/next [post]
func (h *SequenceHandler) Next(c *fiber.Ctx) error {
	c.Status(fiber.StatusCreated)
	return h.respond(c, h.gen.Next)
}

type sequenceFunc = func(ctx context.Context, companyID, docType string, year int) (string, error)

func (h *SequenceHandler) respond(c *fiber.Ctx, fn sequenceFunc) error {
	ctx := c.UserContext()
	company := tenancy.ActiveCompany(ctx)
	if company == nil {
		return writeError(c, domain.ErrMissingTenantContext)
	}
	docType := c.Params("type")
	// el año se fija una sola vez: el informado es el mismo que se reservó
	year := h.gen.ResolveYear(ctx, company.ID, c.QueryInt("year", 0))
	number, err := fn(ctx, company.ID, docType, year)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SequenceResponse{Type: docType, Year: year, Number: number})
}
