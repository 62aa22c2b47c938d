package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/tenancy"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/pkg/logger"
)

// HeaderCompanyID cabecera con la empresa que el cliente quiere usar en este request.
const HeaderCompanyID = "X-Company-Id"

// companyResolver lo implementa *usecase.CompanyUseCase.
type companyResolver interface {
	ResolveActive(ctx context.Context, user *entity.User, preferred ...string) (*entity.Company, error)
}

// ResolveCompany fija la empresa activa del request: cabecera X-Company-Id, empresa del token,
// empresa por defecto y primera membresía, en ese orden. Sin empresa el request sigue y las
// operaciones acotadas fallan con MISSING_COMPANY_CONTEXT. La empresa se limpia al terminar.
// Debe usarse DESPUÉS de LoadUser.
func ResolveCompany(companies companyResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, holder := tenancy.WithCompanyContext(c.UserContext())
		defer holder.Reset()

		company, err := companies.ResolveActive(ctx, tenancy.UserFromContext(ctx), c.Get(HeaderCompanyID), GetTokenCompanyID(c))
		if err != nil {
			return writeError(c, err)
		}
		if company != nil {
			holder.Set(company)
			zl := logger.FromContext(ctx).With().Str("company_id", company.ID).Logger()
			ctx = logger.WithContext(ctx, zl)
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}
