package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.MembershipRepository = (*MembershipRepo)(nil)

// MembershipRepo tabla company_user.
type MembershipRepo struct {
	q Querier
}

// NewMembershipRepository construye el adaptador de membresías.
func NewMembershipRepository(q Querier) *MembershipRepo {
	return &MembershipRepo{q: q}
}

// Attach inserta la membresía; si ya existe no hace nada.
func (r *MembershipRepo) Attach(ctx context.Context, m entity.Membership) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO company_user (company_id, user_id, is_default, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id, user_id) DO NOTHING`
	_, err := r.q.Exec(ctx, query, m.CompanyID, m.UserID, m.IsDefault, m.CreatedAt)
	return mapError("attach user", err)
}

func (r *MembershipRepo) Detach(ctx context.Context, companyID, userID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM company_user WHERE company_id = $1 AND user_id = $2`, companyID, userID)
	if err != nil {
		return mapError("detach user", err)
	}
	return affectedOne(tag)
}

// SetDefault deja como máximo una empresa por defecto para el usuario.
func (r *MembershipRepo) SetDefault(ctx context.Context, userID, companyID string) error {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM company_user WHERE user_id = $1 AND company_id = $2)`,
		userID, companyID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	// Primero se apagan todas: el índice único parcial no admite dos por defecto a la vez.
	if _, err := r.q.Exec(ctx,
		`UPDATE company_user SET is_default = FALSE WHERE user_id = $1 AND is_default AND company_id <> $2`,
		userID, companyID,
	); err != nil {
		return mapError("clear default company", err)
	}
	_, err = r.q.Exec(ctx,
		`UPDATE company_user SET is_default = TRUE WHERE user_id = $1 AND company_id = $2`,
		userID, companyID,
	)
	return mapError("set default company", err)
}

func (r *MembershipRepo) Get(ctx context.Context, userID, companyID string) (*entity.Membership, error) {
	var m entity.Membership
	err := r.q.QueryRow(ctx,
		`SELECT company_id, user_id, is_default, created_at FROM company_user WHERE user_id = $1 AND company_id = $2`,
		userID, companyID,
	).Scan(&m.CompanyID, &m.UserID, &m.IsDefault, &m.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return &m, nil
}

func (r *MembershipRepo) ListForUser(ctx context.Context, userID string) ([]entity.Membership, error) {
	return r.list(ctx, `WHERE user_id = $1`, userID)
}

func (r *MembershipRepo) ListForCompany(ctx context.Context, companyID string) ([]entity.Membership, error) {
	return r.list(ctx, `WHERE company_id = $1`, companyID)
}

func (r *MembershipRepo) list(ctx context.Context, where string, arg string) ([]entity.Membership, error) {
	rows, err := r.q.Query(ctx,
		`SELECT company_id, user_id, is_default, created_at FROM company_user `+where+` ORDER BY created_at, company_id`,
		arg,
	)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()
	var out []entity.Membership
	for rows.Next() {
		var m entity.Membership
		if err := rows.Scan(&m.CompanyID, &m.UserID, &m.IsDefault, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
