package entity

import "time"

// PermissionWildcard concede cualquier permiso.
const PermissionWildcard = "*"

// Slugs de los roles de sistema sembrados en cada tenant.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
	RoleViewer   = "viewer"
)

// Role agrupa permisos. Las cadenas de permiso son opacas ("contacts.view").
type Role struct {
	ID          string
	Name        string
	Slug        string
	Description string
	Permissions []string
	IsSystem    bool // los roles de sistema no se eliminan
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasPermission indica si el rol concede permission, directamente o por comodín.
func (r *Role) HasPermission(permission string) bool {
	for _, p := range r.Permissions {
		if p == PermissionWildcard || p == permission {
			return true
		}
	}
	return false
}

// RoleAssignment asigna un rol a un usuario (tabla role_user).
// CompanyID nil = asignación global, válida en todas las empresas.
type RoleAssignment struct {
	UserID    string
	RoleID    string
	CompanyID *string
	CreatedAt time.Time
}

// IsGlobal indica si la asignación aplica a todas las empresas.
func (a RoleAssignment) IsGlobal() bool {
	return a.CompanyID == nil
}
