package dto

import "time"

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	IsActive     bool      `json:"is_active"`
	IsSuperadmin bool      `json:"is_superadmin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LoginRequest entrada para login. CompanyID opcional: empresa preferida para la sesión.
type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	CompanyID string `json:"company_id"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// MeResponse usuario autenticado con su empresa activa.
type MeResponse struct {
	User    UserResponse     `json:"user"`
	Company *CompanyResponse `json:"company"`
}

// PermissionsResponse permisos efectivos del usuario en la empresa activa.
type PermissionsResponse struct {
	CompanyID   string   `json:"company_id"`
	Permissions []string `json:"permissions"`
}

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// PermissionCatalogResponse permisos que se pueden asignar a un rol.
type PermissionCatalogResponse struct {
	Core    []string            `json:"core"`
	Modules map[string][]string `json:"modules"`
}
