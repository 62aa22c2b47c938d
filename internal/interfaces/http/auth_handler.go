package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/auth"
	"github.com/jhoicas/erp-core/internal/application/authz"
	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/tenancy"
	"github.com/jhoicas/erp-core/internal/application/usecase"
	"github.com/jhoicas/erp-core/internal/domain"
)

// AuthHandler maneja login y los datos del usuario autenticado.
type AuthHandler struct {
	uc        *auth.AuthUseCase
	companies *usecase.CompanyUseCase
	resolver  *authz.Resolver
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, companies *usecase.CompanyUseCase, resolver *authz.Resolver) *AuthHandler {
	return &AuthHandler{uc: uc, companies: companies, resolver: resolver}
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password, company_id opcional"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return badRequest(c, "VALIDATION", "email y password son requeridos")
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Me godoc
// @Summary      Usuario autenticado y empresa activa
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.MeResponse
// @Router       /api/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	ctx := c.UserContext()
	user := tenancy.UserFromContext(ctx)
	if user == nil {
		return writeError(c, domain.ErrUnauthorized)
	}
	return c.JSON(dto.MeResponse{
		User:    *auth.ToUserResponse(user),
		Company: usecase.ToCompanyResponse(tenancy.ActiveCompany(ctx)),
	})
}

// Permissions godoc
// @Summary      Permisos efectivos en la empresa activa
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.PermissionsResponse
// @Router       /api/me/permissions [get]
func (h *AuthHandler) Permissions(c *fiber.Ctx) error {
	ctx := c.UserContext()
	perms, err := h.resolver.AllPermissions(ctx, tenancy.UserFromContext(ctx))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.PermissionsResponse{CompanyID: tenancy.ActiveCompanyID(ctx), Permissions: perms})
}

// Companies godoc
// @Summary      Empresas del usuario
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.MembershipResponse
// @Router       /api/me/companies [get]
func (h *AuthHandler) Companies(c *fiber.Ctx) error {
	ctx := c.UserContext()
	out, err := h.companies.Memberships(ctx, tenancy.UserFromContext(ctx))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SwitchCompany godoc
// @Summary      Cambiar la empresa activa
// @Description  Valida la membresía y reemite el token con la nueva empresa preferida.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.SwitchCompanyRequest  true  "company_id"
// @Success      200   {object}  dto.SwitchCompanyResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/me/company [post]
func (h *AuthHandler) SwitchCompany(c *fiber.Ctx) error {
	var in dto.SwitchCompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	ctx := c.UserContext()
	user := tenancy.UserFromContext(ctx)
	company, err := h.companies.Switch(ctx, user, in.CompanyID)
	if err != nil {
		return writeError(c, err)
	}
	tenantID := ""
	if t := tenancy.TenantFromContext(ctx); t != nil {
		tenantID = t.ID
	}
	token, err := h.uc.IssueToken(tenantID, user, company.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SwitchCompanyResponse{Token: token, Company: *usecase.ToCompanyResponse(company)})
}
