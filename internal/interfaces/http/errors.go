package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// errorMapping status y código HTTP de cada error de dominio.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrMissingTenantContext, fiber.StatusConflict, "MISSING_COMPANY_CONTEXT"},
	{domain.ErrPermissionDenied, fiber.StatusForbidden, "PERMISSION_DENIED"},
	{domain.ErrModuleInactive, fiber.StatusForbidden, "MODULE_DISABLED"},
	{domain.ErrModuleDependency, fiber.StatusUnprocessableEntity, "MODULE_DEPENDENCY"},
	{domain.ErrSequenceContention, fiber.StatusServiceUnavailable, "SEQUENCE_CONTENTION"},
	{domain.ErrInvalidSequenceKey, fiber.StatusBadRequest, "INVALID_SEQUENCE_KEY"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrCompanyCycle, fiber.StatusUnprocessableEntity, "COMPANY_CYCLE"},
	{domain.ErrLimitExceeded, fiber.StatusUnprocessableEntity, "LIMIT_EXCEEDED"},
	{domain.ErrSystemRole, fiber.StatusUnprocessableEntity, "SYSTEM_ROLE"},
	{domain.ErrUserNotFound, fiber.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrTenantNotResolved, fiber.StatusNotFound, "TENANT_NOT_FOUND"},
}

// writeError traduce un error de dominio a la respuesta HTTP. Lo no mapeado es 500 y se registra.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	logger.FromContext(c.UserContext()).Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func invalidBody(c *fiber.Ctx) error {
	return badRequest(c, "INVALID_BODY", "cuerpo inválido")
}
