package entity

import "time"

// User representa un usuario del tenant. Puede pertenecer a varias empresas (Membership).
// IsSuperadmin omite toda comprobación de permisos.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	IsActive     bool
	IsSuperadmin bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Membership es la pertenencia de un usuario a una empresa (tabla company_user).
// Como máximo una membresía por usuario tiene IsDefault.
type Membership struct {
	CompanyID string
	UserID    string
	IsDefault bool
	CreatedAt time.Time
}
