package repository

import (
	"context"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	// Update no modifica el ID ni CreatedAt. domain.ErrNotFound si no existe.
	Update(ctx context.Context, company *entity.Company) error
	List(ctx context.Context, activeOnly bool) ([]*entity.Company, error)
	Count(ctx context.Context) (int, error)
}

// MembershipRepository persiste la relación usuario-empresa (company_user).
type MembershipRepository interface {
	// Attach es idempotente: una membresía existente no se duplica.
	Attach(ctx context.Context, m entity.Membership) error
	Detach(ctx context.Context, companyID, userID string) error
	// SetDefault marca la empresa por defecto del usuario y desmarca las demás.
	SetDefault(ctx context.Context, userID, companyID string) error
	// Get devuelve nil, nil si el usuario no pertenece a la empresa.
	Get(ctx context.Context, userID, companyID string) (*entity.Membership, error)
	// ListForUser ordena por fecha de alta (la primera es la "primera empresa").
	ListForUser(ctx context.Context, userID string) ([]entity.Membership, error)
	ListForCompany(ctx context.Context, companyID string) ([]entity.Membership, error)
}
