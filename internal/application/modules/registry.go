package modules

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// Registry catálogo de módulos del proceso. El registro es global;
// la activación se consulta por tenant y no depende de la empresa activa.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	modules map[string]Module
	cache   *activationCache
}

// NewRegistry crea el registro. cacheTTL 0 consulta la base en cada llamada.
func NewRegistry(stores repository.StoreProvider, cacheTTL time.Duration) *Registry {
	return &Registry{
		modules: make(map[string]Module),
		cache:   newActivationCache(stores, cacheTTL),
	}
}

// Register añade un módulo. Un ID repetido retorna domain.ErrDuplicate.
func (r *Registry) Register(m Module) error {
	id := m.ID()
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: módulo sin ID", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modules[id]; ok {
		return fmt.Errorf("%w: módulo %q ya registrado", domain.ErrDuplicate, id)
	}
	r.modules[id] = m
	r.order = append(r.order, id)
	return nil
}

// MustRegister registra los módulos o entra en pánico. Uso en el arranque.
func (r *Registry) MustRegister(ms ...Module) {
	for _, m := range ms {
		if err := r.Register(m); err != nil {
			panic(err)
		}
	}
}

// Get devuelve el módulo registrado con id.
func (r *Registry) Get(id string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[id]
	return m, ok
}

// All devuelve los módulos en orden de registro.
func (r *Registry) All() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Module, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.modules[id])
	}
	return out
}

// IsRegistered indica si el proceso conoce el módulo.
func (r *Registry) IsRegistered(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// IsActive indica si el módulo está registrado y activo para el tenant.
// Un módulo sin fila en tenant_modules está inactivo.
func (r *Registry) IsActive(ctx context.Context, id string) (bool, error) {
	if !r.IsRegistered(id) {
		return false, nil
	}
	active, err := r.cache.active(ctx)
	if err != nil {
		return false, err
	}
	return active[id], nil
}

// Require retorna domain.ErrModuleInactive si el módulo no está activo para el tenant.
func (r *Registry) Require(ctx context.Context, id string) error {
	ok, err := r.IsActive(ctx, id)
	if err != nil {
		return fmt.Errorf("comprobar módulo %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrModuleInactive, id)
	}
	return nil
}

// NavigationItems ítems de menú de los módulos activos, ordenados por Order (estable).
func (r *Registry) NavigationItems(ctx context.Context) ([]NavItem, error) {
	active, err := r.activeModules(ctx)
	if err != nil {
		return nil, err
	}
	items := []NavItem{}
	for _, m := range active {
		for _, it := range m.NavigationItems() {
			it.Module = m.ID()
			items = append(items, it)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return orderOf(items[i].Order) < orderOf(items[j].Order) })
	return items, nil
}

// DashboardWidgets widgets de los módulos activos, ordenados por Order (estable).
func (r *Registry) DashboardWidgets(ctx context.Context) ([]Widget, error) {
	active, err := r.activeModules(ctx)
	if err != nil {
		return nil, err
	}
	widgets := []Widget{}
	for _, m := range active {
		for _, w := range m.DashboardWidgets() {
			w.Module = m.ID()
			widgets = append(widgets, w)
		}
	}
	sort.SliceStable(widgets, func(i, j int) bool { return orderOf(widgets[i].Order) < orderOf(widgets[j].Order) })
	return widgets, nil
}

// AllPermissions permisos declarados por módulo, activos o no. Omite módulos sin permisos.
func (r *Registry) AllPermissions() map[string][]PermissionDecl {
	out := make(map[string][]PermissionDecl)
	for _, m := range r.All() {
		if perms := m.Permissions(); len(perms) > 0 {
			out[m.ID()] = slices.Clone(perms)
		}
	}
	return out
}

// PermissionCatalog lista ordenada y sin duplicados de todos los permisos declarados.
// Una clave sin el prefijo del módulo se califica como "<modulo>.<clave>".
func (r *Registry) PermissionCatalog() []string {
	seen := make(map[string]struct{})
	var out []string
	for id, perms := range r.AllPermissions() {
		for _, p := range perms {
			key := p.Key
			if !strings.HasPrefix(key, id+".") {
				key = id + "." + key
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// Invalidate descarta la activación en caché del tenant del contexto.
func (r *Registry) Invalidate(ctx context.Context) {
	r.cache.invalidate(ctx)
}

func (r *Registry) activeModules(ctx context.Context) ([]Module, error) {
	all := r.All()
	if len(all) == 0 {
		return nil, nil
	}
	active, err := r.cache.active(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Module, 0, len(all))
	for _, m := range all {
		if active[m.ID()] {
			out = append(out, m)
		}
	}
	return out, nil
}
