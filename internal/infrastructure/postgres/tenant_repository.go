package postgres

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.TenantRepository = (*TenantRepo)(nil)

// TenantRepo lee tenants y dominios de la base central (landlord).
type TenantRepo struct {
	q Querier
}

// NewTenantRepository construye el adaptador sobre el pool del landlord.
func NewTenantRepository(q Querier) *TenantRepo {
	return &TenantRepo{q: q}
}

const tenantColumns = `t.id, t.name, t.plan, t.database_name, t.max_users, t.max_companies,
		t.is_active, t.trial_ends_at, t.created_at, t.updated_at`

// FindByDomain busca el tenant dueño del host. nil, nil si no hay coincidencia.
func (r *TenantRepo) FindByDomain(ctx context.Context, domain string) (*entity.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants t
		JOIN domains d ON d.tenant_id = t.id
		WHERE lower(d.domain) = $1`
	t, err := scanTenant(r.q.QueryRow(ctx, query, strings.ToLower(domain)))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find tenant by domain: %w", err)
	}
	return t, nil
}

func (r *TenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	t, err := scanTenant(r.q.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants t WHERE t.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}

func (r *TenantRepo) List(ctx context.Context) ([]*entity.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `,
			COALESCE(array_agg(d.domain ORDER BY d.domain) FILTER (WHERE d.domain IS NOT NULL), '{}')
		FROM tenants t
		LEFT JOIN domains d ON d.tenant_id = t.id
		GROUP BY t.id
		ORDER BY t.created_at, t.id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()
	var out []*entity.Tenant
	for rows.Next() {
		var t entity.Tenant
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Plan, &t.DatabaseName, &t.MaxUsers, &t.MaxCompanies,
			&t.IsActive, &t.TrialEndsAt, &t.CreatedAt, &t.UpdatedAt, &t.Domains,
		); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *TenantRepo) Update(ctx context.Context, t *entity.Tenant) error {
	query, args, err := psql.Update("tenants").SetMap(map[string]interface{}{
		"name":          t.Name,
		"plan":          t.Plan,
		"max_users":     t.MaxUsers,
		"max_companies": t.MaxCompanies,
		"is_active":     t.IsActive,
		"trial_ends_at": t.TrialEndsAt,
		"updated_at":    t.UpdatedAt,
	}).Where(sq.Eq{"id": t.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("build update tenant: %w", err)
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return mapError("update tenant", err)
	}
	return affectedOne(tag)
}

func (r *TenantRepo) Deactivate(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE tenants SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return mapError("deactivate tenant", err)
	}
	return affectedOne(tag)
}

func scanTenant(row pgx.Row) (*entity.Tenant, error) {
	var t entity.Tenant
	if err := row.Scan(
		&t.ID, &t.Name, &t.Plan, &t.DatabaseName, &t.MaxUsers, &t.MaxCompanies,
		&t.IsActive, &t.TrialEndsAt, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}
