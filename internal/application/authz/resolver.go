// Package authz resuelve los permisos efectivos de un usuario en la empresa activa.
package authz

import (
	"context"
	"fmt"

	"github.com/jhoicas/erp-core/internal/application/tenancy"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// Resolver calcula permisos a partir de los roles asignados al usuario.
// Roles válidos: los de la empresa activa más los globales (company_id nulo).
// Sin empresa activa se niega todo, incluidos los roles globales. Solo el superadmin pasa siempre.
type Resolver struct {
	stores repository.StoreProvider
}

// NewResolver construye el resolvedor sobre el almacén del tenant.
func NewResolver(stores repository.StoreProvider) *Resolver {
	return &Resolver{stores: stores}
}

// Can indica si user tiene permission en la empresa activa.
// Ante un error del almacén retorna false junto con el error.
func (r *Resolver) Can(ctx context.Context, user *entity.User, permission string) (bool, error) {
	return r.CanAny(ctx, user, []string{permission})
}

// CanAny indica si user tiene al menos uno de los permisos.
func (r *Resolver) CanAny(ctx context.Context, user *entity.User, permissions []string) (bool, error) {
	if user == nil {
		return false, nil
	}
	if user.IsSuperadmin {
		return true, nil
	}
	roles, err := r.roles(ctx, user)
	if err != nil {
		return false, err
	}
	for _, p := range permissions {
		if grants(roles, p) {
			return true, nil
		}
	}
	return false, nil
}

// AllPermissions devuelve la unión sin duplicados de los permisos del usuario, en orden de aparición.
// Superadmin: ["*"]. Sin empresa activa: lista vacía.
func (r *Resolver) AllPermissions(ctx context.Context, user *entity.User) ([]string, error) {
	if user == nil {
		return []string{}, nil
	}
	if user.IsSuperadmin {
		return []string{entity.PermissionWildcard}, nil
	}
	roles, err := r.roles(ctx, user)
	if err != nil {
		return nil, err
	}
	out := []string{}
	seen := make(map[string]struct{})
	for _, role := range roles {
		for _, p := range role.Permissions {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out, nil
}

// Authorize exige todos los permisos. El primero que falte se devuelve envuelto en domain.ErrPermissionDenied.
// Sin usuario retorna domain.ErrUnauthorized.
func (r *Resolver) Authorize(ctx context.Context, user *entity.User, permissions ...string) error {
	if user == nil {
		return domain.ErrUnauthorized
	}
	if user.IsSuperadmin {
		return nil
	}
	roles, err := r.roles(ctx, user)
	if err != nil {
		return fmt.Errorf("authz: %w", err)
	}
	for _, p := range permissions {
		if !grants(roles, p) {
			return fmt.Errorf("%w: %s", domain.ErrPermissionDenied, p)
		}
	}
	return nil
}

func (r *Resolver) roles(ctx context.Context, user *entity.User) ([]*entity.Role, error) {
	companyID := tenancy.ActiveCompanyID(ctx)
	if companyID == "" {
		return nil, nil
	}
	store, err := r.stores.Store(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := store.Roles().RolesForUser(ctx, user.ID, companyID)
	if err != nil {
		return nil, fmt.Errorf("roles del usuario: %w", err)
	}
	return roles, nil
}

func grants(roles []*entity.Role, permission string) bool {
	for _, role := range roles {
		if role.HasPermission(permission) {
			return true
		}
	}
	return false
}
