package repository

import (
	"context"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// TenantRepository tenants de la base central (landlord). El alta y la baja física quedan fuera:
// un tenant solo se desactiva.
type TenantRepository interface {
	// FindByDomain devuelve nil, nil si ningún tenant tiene ese dominio.
	FindByDomain(ctx context.Context, domain string) (*entity.Tenant, error)
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)
	// List devuelve todos los tenants con sus dominios, por fecha de alta.
	List(ctx context.Context) ([]*entity.Tenant, error)
	// Update escribe nombre, plan, límites, prueba y estado. domain.ErrNotFound si no existe.
	Update(ctx context.Context, tenant *entity.Tenant) error
	// Deactivate marca el tenant como inactivo. domain.ErrNotFound si no existe.
	Deactivate(ctx context.Context, id string) error
}
