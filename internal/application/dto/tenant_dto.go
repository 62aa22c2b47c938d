package dto

import "time"

// UpdateTenantRequest datos editables de un tenant desde el landlord.
type UpdateTenantRequest struct {
	Name         string     `json:"name"`
	Plan         string     `json:"plan"`
	MaxUsers     *int       `json:"max_users"`
	MaxCompanies int        `json:"max_companies"`
	IsActive     *bool      `json:"is_active"`
	TrialEndsAt  *time.Time `json:"trial_ends_at"`
}

// TenantResponse salida de un tenant para el landlord.
type TenantResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Plan         string     `json:"plan"`
	MaxUsers     *int       `json:"max_users"`
	MaxCompanies int        `json:"max_companies"`
	IsActive     bool       `json:"is_active"`
	TrialEndsAt  *time.Time `json:"trial_ends_at"`
	Domains      []string   `json:"domains,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
