package entity

import (
	"slices"
	"time"
)

// TenantModule es la activación de un módulo para el tenant completo (no por empresa).
type TenantModule struct {
	ID          string
	Module      string
	IsActive    bool
	Plan        string
	Limits      map[string]any
	Features    []string
	ActivatedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasFeature indica si la activación incluye la funcionalidad.
func (m *TenantModule) HasFeature(feature string) bool {
	return slices.Contains(m.Features, feature)
}

// Limit lee un límite numérico del plan del módulo.
func (m *TenantModule) Limit(key string, def int) int {
	v, ok := m.Limits[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}
