package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/erp-core/internal/application/tenancy"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/pkg/config"
)

var _ repository.StoreProvider = (*TenantStores)(nil)

// TenantStores abre (una vez) el pool de la base de cada tenant y entrega su Store.
type TenantStores struct {
	cfg *config.Config

	mu    sync.Mutex
	pools map[string]*pgxpool.Pool // database_name -> pool
}

// NewTenantStores crea el proveedor; los pools se abren bajo demanda.
func NewTenantStores(cfg *config.Config) *TenantStores {
	return &TenantStores{cfg: cfg, pools: make(map[string]*pgxpool.Pool)}
}

// Store devuelve el Store del tenant del contexto. Sin tenant retorna domain.ErrTenantNotResolved.
func (s *TenantStores) Store(ctx context.Context) (repository.Store, error) {
	t := tenancy.TenantFromContext(ctx)
	if t == nil {
		return nil, domain.ErrTenantNotResolved
	}
	pool, err := s.pool(ctx, t.DatabaseName)
	if err != nil {
		return nil, err
	}
	return NewStore(pool, s.cfg.Sequence.LockTimeout), nil
}

func (s *TenantStores) pool(ctx context.Context, database string) (*pgxpool.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pools[database]; ok {
		return p, nil
	}
	dsn := s.cfg.Tenancy.TenantDSN(s.cfg.DB, database)
	p, err := NewPoolFromDSN(ctx, dsn, PoolOptions{MaxConns: s.cfg.Tenancy.MaxConnsPerTenant})
	if err != nil {
		return nil, fmt.Errorf("pool tenant %s: %w", database, err)
	}
	s.pools[database] = p
	return p, nil
}

// Close cierra todos los pools abiertos.
func (s *TenantStores) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, p := range s.pools {
		p.Close()
		delete(s.pools, name)
	}
}
