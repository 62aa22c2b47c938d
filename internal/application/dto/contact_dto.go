package dto

import "time"

// CreateContactRequest entrada para crear un contacto.
type CreateContactRequest struct {
	Type           string   `json:"type"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	JobTitle       string   `json:"job_title"`
	OrganizationID *string  `json:"organization_id"`
	Name           string   `json:"name"`
	Industry       string   `json:"industry"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Mobile         string   `json:"mobile"`
	Website        string   `json:"website"`
	Notes          string   `json:"notes"`
	Tags           []string `json:"tags"`
	Source         string   `json:"source"`
}

// UpdateContactRequest reemplaza los datos editables de un contacto. IsActive nil lo deja igual.
type UpdateContactRequest struct {
	CreateContactRequest
	IsActive *bool `json:"is_active"`
}

// ContactResponse salida de un contacto.
type ContactResponse struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"company_id"`
	Code           string    `json:"code"`
	Type           string    `json:"type"`
	DisplayName    string    `json:"display_name"`
	FirstName      string    `json:"first_name,omitempty"`
	LastName       string    `json:"last_name,omitempty"`
	JobTitle       string    `json:"job_title,omitempty"`
	OrganizationID *string   `json:"organization_id,omitempty"`
	Name           string    `json:"name,omitempty"`
	Industry       string    `json:"industry,omitempty"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Mobile         string    `json:"mobile,omitempty"`
	Website        string    `json:"website,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	Tags           []string  `json:"tags"`
	IsActive       bool      `json:"is_active"`
	Source         string    `json:"source,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ContactListRequest filtros del listado.
type ContactListRequest struct {
	PageRequest
	Type   string `query:"type"`
	Search string `query:"search"`
}

// ContactListResponse lista paginada de contactos.
type ContactListResponse struct {
	Items []ContactResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
