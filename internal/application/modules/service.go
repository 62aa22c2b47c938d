package modules

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-core/internal/application/audit"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// State estado de un módulo registrado para un tenant.
type State struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Dependencies []string   `json:"dependencies"`
	Active       bool       `json:"is_active"`
	ActivatedAt  *time.Time `json:"activated_at,omitempty"`
}

// Service operaciones del landlord sobre la activación de módulos de un tenant.
// Activar o desactivar nunca toca consecutivos ni datos de empresas.
type Service struct {
	registry *Registry
	stores   repository.StoreProvider
	observer audit.Observer
	now      func() time.Time
}

// NewService construye el servicio. observer nil equivale a audit.Nop.
func NewService(registry *Registry, stores repository.StoreProvider, observer audit.Observer) *Service {
	if observer == nil {
		observer = audit.Nop{}
	}
	return &Service{registry: registry, stores: stores, observer: observer, now: time.Now}
}

// States devuelve todos los módulos registrados con su activación en el tenant del contexto.
func (s *Service) States(ctx context.Context) ([]State, error) {
	store, err := s.stores.Store(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := store.Modules().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar módulos: %w", err)
	}
	byID := make(map[string]*entity.TenantModule, len(rows))
	for _, row := range rows {
		byID[row.Module] = row
	}
	states := make([]State, 0, len(byID))
	for _, m := range s.registry.All() {
		st := State{ID: m.ID(), Name: m.Name(), Dependencies: append([]string{}, m.Dependencies()...)}
		if row, ok := byID[m.ID()]; ok {
			st.Active = row.IsActive
			st.ActivatedAt = row.ActivatedAt
		}
		states = append(states, st)
	}
	return states, nil
}

// SetActive activa o desactiva un módulo.
func (s *Service) SetActive(ctx context.Context, id string, active bool) error {
	return s.Apply(ctx, map[string]bool{id: active})
}

// Apply aplica varios cambios en una transacción. Las dependencias se validan
// contra el estado final: activar A y su dependencia B en la misma llamada es válido.
// Un módulo desconocido retorna domain.ErrNotFound; una dependencia inactiva, domain.ErrModuleDependency.
func (s *Service) Apply(ctx context.Context, changes map[string]bool) error {
	if len(changes) == 0 {
		return nil
	}
	ids := make([]string, 0, len(changes))
	for id := range changes {
		if !s.registry.IsRegistered(id) {
			return fmt.Errorf("%w: módulo %q", domain.ErrNotFound, id)
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	store, err := s.stores.Store(ctx)
	if err != nil {
		return err
	}
	var applied []audit.Mutation
	err = store.WithinTx(ctx, func(tx repository.Store) error {
		rows, err := tx.Modules().List(ctx)
		if err != nil {
			return fmt.Errorf("listar módulos: %w", err)
		}
		current := make(map[string]*entity.TenantModule, len(rows))
		final := make(map[string]bool, len(rows)+len(changes))
		for _, row := range rows {
			current[row.Module] = row
			final[row.Module] = row.IsActive
		}
		for id, active := range changes {
			final[id] = active
		}
		for _, id := range ids {
			if !changes[id] {
				continue
			}
			m, _ := s.registry.Get(id)
			var missing []string
			for _, dep := range m.Dependencies() {
				if !final[dep] {
					missing = append(missing, dep)
				}
			}
			if len(missing) > 0 {
				return fmt.Errorf("%w: %s requiere %s", domain.ErrModuleDependency, id, strings.Join(missing, ", "))
			}
		}

		now := s.now().UTC()
		for _, id := range ids {
			active := changes[id]
			row, existed := current[id]
			if !existed {
				row = &entity.TenantModule{ID: uuid.New().String(), Module: id, Plan: "free", CreatedAt: now}
			}
			wasActive := existed && row.IsActive
			if existed && wasActive == active {
				continue
			}
			row.IsActive = active
			row.UpdatedAt = now
			if active {
				row.ActivatedAt = &now
			}
			if err := tx.Modules().Upsert(ctx, row); err != nil {
				return fmt.Errorf("guardar módulo %s: %w", id, err)
			}
			event := audit.EventUpdated
			if !existed {
				event = audit.EventCreated
			}
			applied = append(applied, audit.Mutation{
				Event:    event,
				Entity:   "tenant_module",
				EntityID: id,
				Old:      map[string]any{"is_active": wasActive},
				New:      map[string]any{"is_active": active},
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.registry.Invalidate(ctx)
	for _, m := range applied {
		audit.Record(ctx, s.observer, m)
	}
	return nil
}
