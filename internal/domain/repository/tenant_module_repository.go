package repository

import (
	"context"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// TenantModuleRepository persiste la activación de módulos del tenant.
type TenantModuleRepository interface {
	// Get devuelve nil, nil si el módulo nunca se activó.
	Get(ctx context.Context, module string) (*entity.TenantModule, error)
	List(ctx context.Context) ([]*entity.TenantModule, error)
	// Upsert crea o actualiza por Module.
	Upsert(ctx context.Context, m *entity.TenantModule) error
}
