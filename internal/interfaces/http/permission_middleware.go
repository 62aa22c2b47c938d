package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/tenancy"
	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// authorizer lo implementa *authz.Resolver.
type authorizer interface {
	Authorize(ctx context.Context, user *entity.User, permissions ...string) error
}

// RequirePermission exige todos los permisos en la empresa activa.
// 401 sin usuario; 403 PERMISSION_DENIED si falta alguno. Debe usarse DESPUÉS de ResolveCompany.
func RequirePermission(authz authorizer, permissions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if err := authz.Authorize(ctx, tenancy.UserFromContext(ctx), permissions...); err != nil {
			return writeError(c, err)
		}
		return c.Next()
	}
}
