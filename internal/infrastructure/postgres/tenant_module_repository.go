package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.TenantModuleRepository = (*TenantModuleRepo)(nil)

// TenantModuleRepo tabla tenant_modules (activación a nivel de tenant).
type TenantModuleRepo struct {
	q Querier
}

// NewTenantModuleRepository construye el adaptador de módulos del tenant.
func NewTenantModuleRepository(q Querier) *TenantModuleRepo {
	return &TenantModuleRepo{q: q}
}

const moduleColumns = `id, module, is_active, plan, limits, features, activated_at, created_at, updated_at`

func (r *TenantModuleRepo) Get(ctx context.Context, module string) (*entity.TenantModule, error) {
	m, err := scanModule(r.q.QueryRow(ctx, `SELECT `+moduleColumns+` FROM tenant_modules WHERE module = $1`, module))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant module: %w", err)
	}
	return m, nil
}

func (r *TenantModuleRepo) List(ctx context.Context) ([]*entity.TenantModule, error) {
	rows, err := r.q.Query(ctx, `SELECT `+moduleColumns+` FROM tenant_modules ORDER BY module`)
	if err != nil {
		return nil, fmt.Errorf("list tenant modules: %w", err)
	}
	defer rows.Close()
	var out []*entity.TenantModule
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant module: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Upsert crea o actualiza por module. activated_at solo se sobreescribe si llega un valor.
func (r *TenantModuleRepo) Upsert(ctx context.Context, m *entity.TenantModule) error {
	limits := m.Limits
	if limits == nil {
		limits = map[string]any{}
	}
	features := m.Features
	if features == nil {
		features = []string{}
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	plan := m.Plan
	if plan == "" {
		plan = "free"
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO tenant_modules (`+moduleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (module) DO UPDATE SET
			is_active = EXCLUDED.is_active,
			plan = EXCLUDED.plan,
			limits = EXCLUDED.limits,
			features = EXCLUDED.features,
			activated_at = COALESCE(EXCLUDED.activated_at, tenant_modules.activated_at),
			updated_at = now()`,
		m.ID, m.Module, m.IsActive, plan, limits, features, m.ActivatedAt,
	)
	return mapError("upsert tenant module", err)
}

func scanModule(row pgx.Row) (*entity.TenantModule, error) {
	var m entity.TenantModule
	if err := row.Scan(
		&m.ID, &m.Module, &m.IsActive, &m.Plan, &m.Limits, &m.Features, &m.ActivatedAt,
		&m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}
