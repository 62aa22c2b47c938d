package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.Store = (*Store)(nil)

// Store agrupa los repositorios de la base de un tenant sobre un pool o una transacción.
type Store struct {
	pool        *pgxpool.Pool
	q           Querier
	inTx        bool
	lockTimeout time.Duration
}

// NewStore construye el Store sobre el pool del tenant.
// lockTimeout acota la espera por el bloqueo de fila de un consecutivo (0 = sin límite).
func NewStore(pool *pgxpool.Pool, lockTimeout time.Duration) *Store {
	return &Store{pool: pool, q: pool, lockTimeout: lockTimeout}
}

func (s *Store) Companies() repository.CompanyRepository      { return NewCompanyRepository(s.q) }
func (s *Store) Memberships() repository.MembershipRepository { return NewMembershipRepository(s.q) }
func (s *Store) Users() repository.UserRepository             { return NewUserRepository(s.q) }
func (s *Store) Roles() repository.RoleRepository             { return NewRoleRepository(s.q) }
func (s *Store) Modules() repository.TenantModuleRepository   { return NewTenantModuleRepository(s.q) }
func (s *Store) Sequences() repository.SequenceRepository     { return NewSequenceRepository(s.q, s.lockTimeout) }
func (s *Store) Contacts() repository.ContactRepository       { return NewContactRepository(s.q) }

// WithinTx inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Dentro de una transacción reutiliza la existente.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	txStore := &Store{pool: s.pool, q: tx, inTx: true, lockTimeout: s.lockTimeout}
	if err := fn(txStore); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}
