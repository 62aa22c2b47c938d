package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var _ repository.TenantRepository = (*Tenants)(nil)

// Tenants es el directorio de tenants del landlord en memoria.
type Tenants struct {
	mu      sync.RWMutex
	byID    map[string]*entity.Tenant
	domains map[string]string // dominio -> tenant ID
}

// NewTenants crea un directorio vacío.
func NewTenants() *Tenants {
	return &Tenants{byID: make(map[string]*entity.Tenant), domains: make(map[string]string)}
}

// Add registra un tenant con sus dominios.
func (t *Tenants) Add(tenant *entity.Tenant, domains ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := *tenant
	t.byID[tenant.ID] = &cp
	for _, d := range domains {
		t.domains[strings.ToLower(d)] = tenant.ID
	}
}

func (t *Tenants) FindByDomain(_ context.Context, domain string) (*entity.Tenant, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.domains[strings.ToLower(domain)]
	if !ok {
		return nil, nil
	}
	cp := *t.byID[id]
	return &cp, nil
}

func (t *Tenants) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tenant, ok := t.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *tenant
	return &cp, nil
}

func (t *Tenants) List(_ context.Context) ([]*entity.Tenant, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*entity.Tenant, 0, len(t.byID))
	for id, tenant := range t.byID {
		cp := *tenant
		cp.Domains = []string{}
		for d, owner := range t.domains {
			if owner == id {
				cp.Domains = append(cp.Domains, d)
			}
		}
		slices.Sort(cp.Domains)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t *Tenants) Update(_ context.Context, tenant *entity.Tenant) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.byID[tenant.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Name = tenant.Name
	cur.Plan = tenant.Plan
	cur.MaxUsers = tenant.MaxUsers
	cur.MaxCompanies = tenant.MaxCompanies
	cur.IsActive = tenant.IsActive
	cur.TrialEndsAt = tenant.TrialEndsAt
	cur.UpdatedAt = tenant.UpdatedAt
	return nil
}

func (t *Tenants) Deactivate(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	cur.IsActive = false
	cur.UpdatedAt = time.Now()
	return nil
}
