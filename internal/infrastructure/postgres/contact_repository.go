package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.ContactRepository = (*ContactRepo)(nil)

// ContactRepo tabla contacts. Toda consulta posterior a Create pasa por applyScope.
type ContactRepo struct {
	q Querier
}

// NewContactRepository construye el adaptador de contactos.
func NewContactRepository(q Querier) *ContactRepo {
	return &ContactRepo{q: q}
}

var contactColumns = []string{
	"id", "company_id", "code", "type", "first_name", "last_name", "job_title", "organization_id",
	"name", "industry", "email", "phone", "mobile", "website", "notes", "tags", "is_active", "source",
	"created_at", "updated_at",
}

// Create exige company_id; sin él no se escribe nada.
func (r *ContactRepo) Create(ctx context.Context, c *entity.Contact) error {
	if c.CompanyID == "" {
		return domain.ErrMissingTenantContext
	}
	query, args, err := psql.Insert("contacts").Columns(contactColumns...).Values(
		c.ID, c.CompanyID, c.Code, c.Type, c.FirstName, c.LastName, c.JobTitle, c.OrganizationID,
		c.Name, c.Industry, c.Email, c.Phone, c.Mobile, c.Website, c.Notes, tagsOrEmpty(c.Tags), c.IsActive, c.Source,
		c.CreatedAt, c.UpdatedAt,
	).ToSql()
	if err != nil {
		return fmt.Errorf("build insert contact: %w", err)
	}
	_, err = r.q.Exec(ctx, query, args...)
	return mapError("insert contact", err)
}

func (r *ContactRepo) GetByID(ctx context.Context, scope repository.Scope, id string) (*entity.Contact, error) {
	query, args, err := applyScope(
		psql.Select(contactColumns...).From("contacts").Where(sq.Eq{"id": id}),
		scope, "company_id",
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get contact: %w", err)
	}
	c, err := scanContact(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

func (r *ContactRepo) List(ctx context.Context, scope repository.Scope, f repository.ContactFilter) ([]*entity.Contact, error) {
	query, args, err := contactListQuery(scope, f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list contacts: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()
	var out []*entity.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update no escribe company_id ni code: la fila conserva la empresa con la que se creó.
func (r *ContactRepo) Update(ctx context.Context, scope repository.Scope, c *entity.Contact) error {
	query, args, err := contactUpdateQuery(scope, c).ToSql()
	if err != nil {
		return fmt.Errorf("build update contact: %w", err)
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return mapError("update contact", err)
	}
	return affectedOne(tag)
}

func (r *ContactRepo) Delete(ctx context.Context, scope repository.Scope, id string) error {
	query, args, err := applyScope(psql.Delete("contacts").Where(sq.Eq{"id": id}), scope, "company_id").ToSql()
	if err != nil {
		return fmt.Errorf("build delete contact: %w", err)
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return mapError("delete contact", err)
	}
	return affectedOne(tag)
}

func contactListQuery(scope repository.Scope, f repository.ContactFilter) sq.SelectBuilder {
	b := applyScope(psql.Select(contactColumns...).From("contacts"), scope, "company_id")
	if f.Type != "" {
		b = b.Where(sq.Eq{"type": f.Type})
	}
	if f.Search != "" {
		term := "%" + f.Search + "%"
		b = b.Where(sq.Or{
			sq.ILike{"first_name": term},
			sq.ILike{"last_name": term},
			sq.ILike{"name": term},
			sq.ILike{"email": term},
			sq.ILike{"phone": term},
		})
	}
	b = b.OrderBy("created_at DESC", "id")
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		b = b.Offset(uint64(f.Offset))
	}
	return b
}

func contactUpdateQuery(scope repository.Scope, c *entity.Contact) sq.UpdateBuilder {
	return applyScope(psql.Update("contacts").SetMap(map[string]interface{}{
		"type":            c.Type,
		"first_name":      c.FirstName,
		"last_name":       c.LastName,
		"job_title":       c.JobTitle,
		"organization_id": c.OrganizationID,
		"name":            c.Name,
		"industry":        c.Industry,
		"email":           c.Email,
		"phone":           c.Phone,
		"mobile":          c.Mobile,
		"website":         c.Website,
		"notes":           c.Notes,
		"tags":            tagsOrEmpty(c.Tags),
		"is_active":       c.IsActive,
		"source":          c.Source,
		"updated_at":      c.UpdatedAt,
	}).Where(sq.Eq{"id": c.ID}), scope, "company_id")
}

func scanContact(row pgx.Row) (*entity.Contact, error) {
	var c entity.Contact
	if err := row.Scan(
		&c.ID, &c.CompanyID, &c.Code, &c.Type, &c.FirstName, &c.LastName, &c.JobTitle, &c.OrganizationID,
		&c.Name, &c.Industry, &c.Email, &c.Phone, &c.Mobile, &c.Website, &c.Notes, &c.Tags, &c.IsActive, &c.Source,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
