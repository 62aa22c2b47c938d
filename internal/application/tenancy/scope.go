package tenancy

import (
	"context"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// Scope es el filtro por empresa que reciben los repositorios.
type Scope = repository.Scope

// ScopeFromContext lee la empresa activa en el momento de la llamada.
// Sin empresa activa el scope no añade predicado.
func ScopeFromContext(ctx context.Context) Scope {
	if id := ActiveCompanyID(ctx); id != "" {
		return repository.CompanyScope(id)
	}
	return Scope{}
}

// ForCompany acota a una empresa explícita, ignorando la activa.
func ForCompany(companyID string) Scope {
	return repository.CompanyScope(companyID)
}

// AllCompanies consulta todas las empresas del tenant. Solo para operaciones privilegiadas.
func AllCompanies() Scope {
	return repository.Unscoped()
}

// StampCompany fija la empresa activa en una entidad nueva que no trae empresa.
// Un company_id explícito se respeta. Sin ninguno de los dos retorna domain.ErrMissingTenantContext.
func StampCompany(ctx context.Context, e entity.CompanyOwned) error {
	if e.OwningCompanyID() != "" {
		return nil
	}
	id := ActiveCompanyID(ctx)
	if id == "" {
		return domain.ErrMissingTenantContext
	}
	e.SetCompanyID(id)
	return nil
}
