package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/erp-core/internal/application/audit"
	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// TenantUseCase administración de tenants desde el dominio central.
// Los cambios de estado tienen efecto en el siguiente request del tenant (TenantMiddleware).
type TenantUseCase struct {
	tenants  repository.TenantRepository
	observer audit.Observer
	now      func() time.Time
}

// NewTenantUseCase construye el caso de uso. observer nil equivale a audit.Nop.
func NewTenantUseCase(tenants repository.TenantRepository, observer audit.Observer) *TenantUseCase {
	if observer == nil {
		observer = audit.Nop{}
	}
	return &TenantUseCase{tenants: tenants, observer: observer, now: time.Now}
}

// List devuelve todos los tenants con sus dominios.
func (uc *TenantUseCase) List(ctx context.Context) ([]dto.TenantResponse, error) {
	list, err := uc.tenants.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TenantResponse, 0, len(list))
	for _, t := range list {
		out = append(out, *entityToTenantResponse(t))
	}
	return out, nil
}

// Update reemplaza nombre, plan, límites, fin de prueba y estado del tenant.
func (uc *TenantUseCase) Update(ctx context.Context, id string, in dto.UpdateTenantRequest) (*dto.TenantResponse, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "" || len(name) > 255:
		return nil, fmt.Errorf("%w: name es obligatorio (máx. 255)", domain.ErrInvalidInput)
	case !entity.IsValidPlan(in.Plan):
		return nil, fmt.Errorf("%w: plan debe ser starter, business o enterprise", domain.ErrInvalidInput)
	case in.MaxUsers != nil && *in.MaxUsers < 1:
		return nil, fmt.Errorf("%w: max_users mínimo 1", domain.ErrInvalidInput)
	case in.MaxCompanies < 1:
		return nil, fmt.Errorf("%w: max_companies mínimo 1", domain.ErrInvalidInput)
	case in.IsActive == nil:
		return nil, fmt.Errorf("%w: is_active es obligatorio", domain.ErrInvalidInput)
	}
	t, err := uc.tenants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	old := tenantAttributes(t)
	t.Name = name
	t.Plan = in.Plan
	t.MaxUsers = in.MaxUsers
	t.MaxCompanies = in.MaxCompanies
	t.IsActive = *in.IsActive
	t.TrialEndsAt = in.TrialEndsAt
	t.UpdatedAt = uc.now()
	if err := uc.tenants.Update(ctx, t); err != nil {
		return nil, err
	}
	audit.Record(ctx, uc.observer, audit.Mutation{
		Event: audit.EventUpdated, Entity: "tenant", EntityID: t.ID,
		Old: old, New: tenantAttributes(t),
	})
	return entityToTenantResponse(t), nil
}

// Deactivate desactiva el tenant sin borrar su base. Idempotente.
func (uc *TenantUseCase) Deactivate(ctx context.Context, id string) error {
	t, err := uc.tenants.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return domain.ErrNotFound
	}
	if !t.IsActive {
		return nil
	}
	if err := uc.tenants.Deactivate(ctx, id); err != nil {
		return err
	}
	audit.Record(ctx, uc.observer, audit.Mutation{
		Event: audit.EventUpdated, Entity: "tenant", EntityID: t.ID,
		Old: map[string]any{"is_active": true}, New: map[string]any{"is_active": false},
	})
	return nil
}

func tenantAttributes(t *entity.Tenant) map[string]any {
	return map[string]any{
		"name":          t.Name,
		"plan":          t.Plan,
		"max_users":     t.MaxUsers,
		"max_companies": t.MaxCompanies,
		"is_active":     t.IsActive,
		"trial_ends_at": t.TrialEndsAt,
	}
}

func entityToTenantResponse(t *entity.Tenant) *dto.TenantResponse {
	return &dto.TenantResponse{
		ID:           t.ID,
		Name:         t.Name,
		Plan:         t.Plan,
		MaxUsers:     t.MaxUsers,
		MaxCompanies: t.MaxCompanies,
		IsActive:     t.IsActive,
		TrialEndsAt:  t.TrialEndsAt,
		Domains:      t.Domains,
		CreatedAt:    t.CreatedAt,
	}
}
