// Package modules mantiene el catálogo de módulos funcionales y su activación por tenant.
package modules

// DefaultOrder posición de un ítem de navegación o widget que no declara orden.
const DefaultOrder = 50

// Module describe un módulo funcional. Se registra una vez al arrancar el proceso.
type Module interface {
	ID() string
	Name() string
	// Dependencies IDs de módulos que deben estar activos para activar este.
	Dependencies() []string
	Permissions() []PermissionDecl
	NavigationItems() []NavItem
	DashboardWidgets() []Widget
}

// PermissionDecl permiso que declara un módulo. Key es la cadena completa ("contacts.view").
type PermissionDecl struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

// NavItem entrada de menú que aporta un módulo activo.
type NavItem struct {
	Label  string `json:"label"`
	Route  string `json:"route"`
	Icon   string `json:"icon,omitempty"`
	Order  *int   `json:"order,omitempty"`
	Module string `json:"module"`
}

// Widget componente de dashboard que aporta un módulo activo.
type Widget struct {
	Component string `json:"component"`
	Order     *int   `json:"order,omitempty"`
	Span      int    `json:"span,omitempty"`
	Module    string `json:"module"`
}

// Order devuelve un puntero a n, para declarar órdenes en literales.
func Order(n int) *int { return &n }

func orderOf(o *int) int {
	if o == nil {
		return DefaultOrder
	}
	return *o
}
