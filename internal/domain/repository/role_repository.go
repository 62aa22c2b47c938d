package repository

import (
	"context"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// RoleRepository persiste roles y sus asignaciones (role_user).
type RoleRepository interface {
	Create(ctx context.Context, role *entity.Role) error
	// GetByID y GetBySlug devuelven nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Role, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Role, error)
	List(ctx context.Context) ([]*entity.Role, error)
	Delete(ctx context.Context, id string) error

	// Assign es idempotente por (usuario, rol, empresa).
	Assign(ctx context.Context, a entity.RoleAssignment) error
	// RolesForUser devuelve los roles del usuario en companyID más sus roles globales.
	RolesForUser(ctx context.Context, userID, companyID string) ([]*entity.Role, error)
}
