package entity

import "time"

// Planes comerciales de un tenant.
const (
	PlanStarter    = "starter"
	PlanBusiness   = "business"
	PlanEnterprise = "enterprise"
)

// Tenant es el cliente del landlord: una base de datos aislada con una o varias empresas.
type Tenant struct {
	ID           string
	Name         string
	Plan         string
	DatabaseName string
	MaxUsers     *int // nil = sin límite
	MaxCompanies int
	IsActive     bool
	TrialEndsAt  *time.Time
	Domains      []string // solo lo carga TenantRepository.List
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsValidPlan indica si plan es uno de los planes comerciales.
func IsValidPlan(plan string) bool {
	switch plan {
	case PlanStarter, PlanBusiness, PlanEnterprise:
		return true
	}
	return false
}

// IsOnTrial indica si el periodo de prueba sigue vigente en now.
func (t *Tenant) IsOnTrial(now time.Time) bool {
	return t.TrialEndsAt != nil && now.Before(*t.TrialEndsAt)
}

// IsExpired indica si el periodo de prueba ya terminó. Sin prueba nunca expira.
func (t *Tenant) IsExpired(now time.Time) bool {
	return t.TrialEndsAt != nil && !now.Before(*t.TrialEndsAt)
}

// CanAddCompany indica si el plan admite una empresa más dado el total actual.
func (t *Tenant) CanAddCompany(current int) bool {
	if t.MaxCompanies <= 0 {
		return true
	}
	return current < t.MaxCompanies
}
