package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.RoleRepository = (*RoleRepo)(nil)

// RoleRepo tablas roles y role_user.
type RoleRepo struct {
	q Querier
}

// NewRoleRepository construye el adaptador de roles.
func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

const roleColumns = `r.id, r.name, r.slug, r.description, r.permissions, r.is_system, r.created_at, r.updated_at`

func (r *RoleRepo) Create(ctx context.Context, role *entity.Role) error {
	perms := role.Permissions
	if perms == nil {
		perms = []string{}
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO roles (id, name, slug, description, permissions, is_system, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		role.ID, role.Name, role.Slug, role.Description, perms, role.IsSystem, role.CreatedAt, role.UpdatedAt,
	)
	return mapError("insert role", err)
}

func (r *RoleRepo) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	return r.findOne(ctx, `r.id = $1`, id)
}

func (r *RoleRepo) GetBySlug(ctx context.Context, slug string) (*entity.Role, error) {
	return r.findOne(ctx, `r.slug = $1`, slug)
}

func (r *RoleRepo) List(ctx context.Context) ([]*entity.Role, error) {
	rows, err := r.q.Query(ctx, `SELECT `+roleColumns+` FROM roles r ORDER BY r.is_system DESC, r.name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return collectRoles(rows)
}

func (r *RoleRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return mapError("delete role", err)
	}
	return affectedOne(tag)
}

// Assign usa la restricción única (user_id, role_id, company_id) con NULLS NOT DISTINCT.
func (r *RoleRepo) Assign(ctx context.Context, a entity.RoleAssignment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO role_user (user_id, role_id, company_id, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT ON CONSTRAINT role_user_unique DO NOTHING`,
		a.UserID, a.RoleID, a.CompanyID,
	)
	if err != nil {
		return mapError("assign role", err)
	}
	return nil
}

// RolesForUser roles del usuario en la empresa más los globales.
func (r *RoleRepo) RolesForUser(ctx context.Context, userID, companyID string) ([]*entity.Role, error) {
	rows, err := r.q.Query(ctx, `
		SELECT DISTINCT ON (r.id) `+roleColumns+`
		FROM roles r
		JOIN role_user ru ON ru.role_id = r.id
		WHERE ru.user_id = $1 AND (ru.company_id = $2 OR ru.company_id IS NULL)
		ORDER BY r.id`,
		userID, companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("roles for user: %w", err)
	}
	return collectRoles(rows)
}

func (r *RoleRepo) findOne(ctx context.Context, where string, arg string) (*entity.Role, error) {
	role, err := scanRole(r.q.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles r WHERE `+where, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

func scanRole(row pgx.Row) (*entity.Role, error) {
	var role entity.Role
	if err := row.Scan(
		&role.ID, &role.Name, &role.Slug, &role.Description, &role.Permissions, &role.IsSystem,
		&role.CreatedAt, &role.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &role, nil
}

func collectRoles(rows pgx.Rows) ([]*entity.Role, error) {
	defer rows.Close()
	var out []*entity.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		out = append(out, role)
	}
	return out, rows.Err()
}
