package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// moduleChecker es el contrato mínimo que necesita el middleware para verificar módulos.
// Lo implementa *modules.Registry.
type moduleChecker interface {
	Require(ctx context.Context, id string) error
}

// RequireModule devuelve un middleware Fiber que verifica que todos los módulos estén activos
// para el tenant del request.
//
// Comportamiento:
//   - 403 Forbidden → módulo inactivo para el tenant (MODULE_DISABLED).
//   - 503 Service Unavailable → fallo de infraestructura al consultar la activación.
func RequireModule(checker moduleChecker, moduleIDs ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		for _, id := range moduleIDs {
			err := checker.Require(ctx, id)
			if err == nil {
				continue
			}
			if errors.Is(err, domain.ErrModuleInactive) {
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
					Code:    "MODULE_DISABLED",
					Message: "el módulo '" + id + "' no está activo para este tenant",
				})
			}
			logger.FromContext(ctx).Error().Err(err).Str("module", id).Msg("no se pudo verificar el módulo")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "MODULE_CHECK_FAILED",
				Message: "no se pudo verificar el módulo, intente más tarde",
			})
		}
		return c.Next()
	}
}
