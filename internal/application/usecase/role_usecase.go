package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-core/internal/application/audit"
	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,99}$`)

// RoleUseCase gestiona roles y sus asignaciones.
type RoleUseCase struct {
	stores   repository.StoreProvider
	observer audit.Observer
	now      func() time.Time
}

// NewRoleUseCase construye el caso de uso. observer nil equivale a audit.Nop.
func NewRoleUseCase(stores repository.StoreProvider, observer audit.Observer) *RoleUseCase {
	if observer == nil {
		observer = audit.Nop{}
	}
	return &RoleUseCase{stores: stores, observer: observer, now: time.Now}
}

// Create crea un rol no de sistema. Los permisos son cadenas opacas; se eliminan duplicados y vacíos.
func (uc *RoleUseCase) Create(ctx context.Context, in dto.CreateRoleRequest) (*dto.RoleResponse, error) {
	name := strings.TrimSpace(in.Name)
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if slug == "" {
		slug = strings.ReplaceAll(strings.ToLower(name), " ", "-")
	}
	if name == "" || !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%w: name y slug válidos son obligatorios", domain.ErrInvalidInput)
	}
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	role := &entity.Role{
		ID:          uuid.New().String(),
		Name:        name,
		Slug:        slug,
		Description: in.Description,
		Permissions: cleanPermissions(in.Permissions),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.Roles().Create(ctx, role); err != nil {
		return nil, err
	}
	audit.Record(ctx, uc.observer, audit.Mutation{
		Event: audit.EventCreated, Entity: "role", EntityID: role.ID,
		New: map[string]any{"slug": role.Slug, "permissions": role.Permissions},
	})
	return entityToRoleResponse(role), nil
}

// List lista los roles del tenant (sistema primero).
func (uc *RoleUseCase) List(ctx context.Context) ([]dto.RoleResponse, error) {
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := store.Roles().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, *entityToRoleResponse(r))
	}
	return out, nil
}

// Delete elimina un rol. Los roles de sistema devuelven domain.ErrSystemRole.
func (uc *RoleUseCase) Delete(ctx context.Context, id string) error {
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return err
	}
	role, err := store.Roles().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if role == nil {
		return domain.ErrNotFound
	}
	if role.IsSystem {
		return domain.ErrSystemRole
	}
	if err := store.Roles().Delete(ctx, id); err != nil {
		return err
	}
	audit.Record(ctx, uc.observer, audit.Mutation{
		Event: audit.EventDeleted, Entity: "role", EntityID: role.ID,
		Old: map[string]any{"slug": role.Slug, "permissions": role.Permissions},
	})
	return nil
}

// Assign asigna el rol al usuario, acotado a una empresa o global (CompanyID vacío).
func (uc *RoleUseCase) Assign(ctx context.Context, roleID string, in dto.AssignRoleRequest) error {
	if in.UserID == "" {
		return fmt.Errorf("%w: user_id es obligatorio", domain.ErrInvalidInput)
	}
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return err
	}
	return store.WithinTx(ctx, func(tx repository.Store) error {
		role, err := tx.Roles().GetByID(ctx, roleID)
		if err != nil {
			return err
		}
		user, err := tx.Users().GetByID(ctx, in.UserID)
		if err != nil {
			return err
		}
		if role == nil || user == nil {
			return domain.ErrNotFound
		}
		a := entity.RoleAssignment{UserID: user.ID, RoleID: role.ID, CreatedAt: uc.now()}
		if in.CompanyID != "" {
			company, err := tx.Companies().GetByID(ctx, in.CompanyID)
			if err != nil {
				return err
			}
			if company == nil {
				return fmt.Errorf("empresa %s: %w", in.CompanyID, domain.ErrNotFound)
			}
			cid := company.ID
			a.CompanyID = &cid
		}
		return tx.Roles().Assign(ctx, a)
	})
}

func cleanPermissions(perms []string) []string {
	seen := make(map[string]struct{}, len(perms))
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func entityToRoleResponse(r *entity.Role) *dto.RoleResponse {
	if r == nil {
		return nil
	}
	perms := r.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &dto.RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Permissions: perms,
		IsSystem:    r.IsSystem,
		CreatedAt:   r.CreatedAt,
	}
}
