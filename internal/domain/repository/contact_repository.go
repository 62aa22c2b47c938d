package repository

import (
	"context"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// ContactFilter filtros de listado de contactos.
type ContactFilter struct {
	Type   string
	Search string
	Limit  int
	Offset int
}

// ContactRepository persiste contactos. Toda lectura y escritura posterior a Create va acotada por Scope.
type ContactRepository interface {
	// Create exige CompanyID ya fijado.
	Create(ctx context.Context, contact *entity.Contact) error
	// GetByID devuelve nil, nil si no existe o no es visible con scope.
	GetByID(ctx context.Context, scope Scope, id string) (*entity.Contact, error)
	List(ctx context.Context, scope Scope, filter ContactFilter) ([]*entity.Contact, error)
	// Update nunca modifica company_id. domain.ErrNotFound si la fila no es visible con scope.
	Update(ctx context.Context, scope Scope, contact *entity.Contact) error
	Delete(ctx context.Context, scope Scope, id string) error
}
