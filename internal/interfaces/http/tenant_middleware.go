package http

import (
	"crypto/subtle"
	"net"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/tenancy"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/pkg/config"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// HeaderLandlordKey cabecera con la clave de las rutas del landlord.
const HeaderLandlordKey = "X-Landlord-Key"

// TenantMiddleware resuelve el tenant por el host del request.
//   - Dominio central: sigue sin tenant.
//   - Host desconocido: 404 TENANT_NOT_FOUND.
//   - Tenant inactivo o prueba vencida: 403 TENANT_INACTIVE.
func TenantMiddleware(tenants repository.TenantRepository, cfg config.TenancyConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		host := requestHost(c)
		if cfg.IsCentral(host) {
			return c.Next()
		}
		ctx := c.UserContext()
		tenant, err := tenants.FindByDomain(ctx, host)
		if err != nil {
			return writeError(c, err)
		}
		if tenant == nil {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "TENANT_NOT_FOUND", Message: "no hay tenant para " + host})
		}
		if !tenant.IsActive || tenant.IsExpired(time.Now()) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "TENANT_INACTIVE", Message: "el tenant está inactivo o su prueba venció"})
		}
		ctx = tenancy.WithTenant(ctx, tenant)
		zl := logger.FromContext(ctx).With().Str("tenant_id", tenant.ID).Logger()
		c.SetUserContext(logger.WithContext(ctx, zl))
		return c.Next()
	}
}

// RequireCentral limita las rutas del landlord al dominio central y a quien presente la clave.
func RequireCentral(cfg config.TenancyConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tenancy.TenantFromContext(c.UserContext()) != nil || cfg.LandlordAPIKey == "" {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "ruta no disponible"})
		}
		key := c.Get(HeaderLandlordKey)
		if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.LandlordAPIKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_LANDLORD_KEY", Message: "clave del landlord inválida"})
		}
		return c.Next()
	}
}

func requestHost(c *fiber.Ctx) string {
	host := c.Hostname()
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(host)
}
