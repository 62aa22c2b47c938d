package dto

import "time"

// CreateCompanyRequest entrada para crear una empresa. Los campos vacíos toman los valores por defecto.
type CreateCompanyRequest struct {
	Name            string         `json:"name"`
	LegalName       string         `json:"legal_name"`
	TaxID           string         `json:"tax_id"`
	CurrencyCode    string         `json:"currency_code"`
	CountryCode     string         `json:"country_code"`
	Locale          string         `json:"locale"`
	Timezone        string         `json:"timezone"`
	FiscalYearStart int            `json:"fiscal_year_start"`
	Settings        map[string]any `json:"settings"`
	ParentID        *string        `json:"parent_id"`
}

// UpdateCompanyRequest entrada para actualizar una empresa (campos opcionales).
type UpdateCompanyRequest struct {
	Name            *string        `json:"name"`
	LegalName       *string        `json:"legal_name"`
	TaxID           *string        `json:"tax_id"`
	CurrencyCode    *string        `json:"currency_code"`
	CountryCode     *string        `json:"country_code"`
	Locale          *string        `json:"locale"`
	Timezone        *string        `json:"timezone"`
	FiscalYearStart *int           `json:"fiscal_year_start"`
	Settings        map[string]any `json:"settings"`
	ParentID        *string        `json:"parent_id"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	LegalName       string         `json:"legal_name"`
	TaxID           string         `json:"tax_id"`
	CurrencyCode    string         `json:"currency_code"`
	CountryCode     string         `json:"country_code"`
	Locale          string         `json:"locale"`
	Timezone        string         `json:"timezone"`
	FiscalYearStart int            `json:"fiscal_year_start"`
	Settings        map[string]any `json:"settings"`
	IsActive        bool           `json:"is_active"`
	ParentID        *string        `json:"parent_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// CompanyListResponse lista de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
}

// AttachUserRequest entrada para asociar un usuario a una empresa.
type AttachUserRequest struct {
	UserID    string `json:"user_id"`
	IsDefault bool   `json:"is_default"`
	// RoleID opcional: se asigna acotado a la empresa.
	RoleID string `json:"role_id"`
}

// SwitchCompanyRequest entrada para cambiar la empresa activa.
type SwitchCompanyRequest struct {
	CompanyID string `json:"company_id"`
}

// MembershipResponse empresa del usuario con su marca de defecto.
type MembershipResponse struct {
	Company   CompanyResponse `json:"company"`
	IsDefault bool            `json:"is_default"`
	IsActive  bool            `json:"is_current"`
}

// SwitchCompanyResponse token reemitido con la nueva empresa preferida.
type SwitchCompanyResponse struct {
	Token   string          `json:"token"`
	Company CompanyResponse `json:"company"`
}
