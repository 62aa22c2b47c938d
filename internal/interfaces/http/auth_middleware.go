package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/tenancy"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/pkg/jwt"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// Locals keys para los datos del token en Fiber.
const (
	LocalUserID         = "user_id"
	LocalTokenCompanyID = "token_company_id"
)

// AuthMiddleware valida el Bearer Token JWT y extrae UserID y la empresa preferida a c.Locals.
// El token debe haber sido emitido para el tenant del request (o para ninguno en el dominio central).
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		tenantID := ""
		if t := tenancy.TenantFromContext(c.UserContext()); t != nil {
			tenantID = t.ID
		}
		if claims.TenantID != tenantID {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token emitido para otro tenant"})
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalTokenCompanyID, claims.CompanyID)
		return c.Next()
	}
}

// LoadUser carga el usuario del token desde el almacén del tenant y lo deja en el contexto.
// Debe usarse DESPUÉS de AuthMiddleware.
func LoadUser(stores repository.StoreProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		store, err := stores.Store(ctx)
		if err != nil {
			return writeError(c, err)
		}
		user, err := store.Users().GetByID(ctx, GetUserID(c))
		if err != nil {
			return writeError(c, err)
		}
		if user == nil || !user.IsActive {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "USER_INACTIVE", Message: "usuario inexistente o inactivo"})
		}
		ctx = tenancy.WithUser(ctx, user)
		zl := logger.FromContext(ctx).With().Str("user_id", user.ID).Logger()
		c.SetUserContext(logger.WithContext(ctx, zl))
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	v := c.Locals(LocalUserID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetTokenCompanyID devuelve la empresa preferida que trae el token, si la hay.
func GetTokenCompanyID(c *fiber.Ctx) string {
	v := c.Locals(LocalTokenCompanyID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
