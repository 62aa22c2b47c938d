package repository

// Scope decide qué filas de una tabla particionada por empresa ve una consulta.
// El valor cero no filtra; se obtiene normalmente de tenancy.ScopeFromContext.
type Scope struct {
	companyID string
	all       bool
}

// CompanyScope limita la consulta a una empresa concreta.
func CompanyScope(companyID string) Scope {
	return Scope{companyID: companyID}
}

// Unscoped consulta todas las empresas del tenant. Uso privilegiado.
func Unscoped() Scope {
	return Scope{all: true}
}

// CompanyID devuelve la empresa a filtrar y si hay que añadir el predicado.
func (s Scope) CompanyID() (string, bool) {
	if s.all || s.companyID == "" {
		return "", false
	}
	return s.companyID, true
}

// Allows indica si una fila de companyID es visible con este scope.
func (s Scope) Allows(companyID string) bool {
	id, ok := s.CompanyID()
	return !ok || id == companyID
}

// IsUnscoped indica si el scope se pidió explícitamente sin filtro.
func (s Scope) IsUnscoped() bool { return s.all }
