package authz

// Permisos del núcleo: no pertenecen a ningún módulo y siempre forman parte del catálogo.
const (
	PermCompaniesView   = "companies.view"
	PermCompaniesManage = "companies.manage"
	PermUsersManage     = "users.manage"
	PermRolesManage     = "roles.manage"
	PermSequencesView   = "sequences.view"
	PermSequencesManage = "sequences.manage"
)

// CorePermissions lista los permisos del núcleo en orden estable.
func CorePermissions() []string {
	return []string{
		PermCompaniesView,
		PermCompaniesManage,
		PermUsersManage,
		PermRolesManage,
		PermSequencesView,
		PermSequencesManage,
	}
}
