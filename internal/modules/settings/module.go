// Package settings describe el módulo de ajustes del tenant. Solo aporta navegación.
package settings

import "github.com/jhoicas/erp-core/internal/application/modules"

// ID identificador del módulo.
const ID = "settings"

var _ modules.Module = Module{}

// Module descriptor del módulo de ajustes.
type Module struct{}

func (Module) ID() string                            { return ID }
func (Module) Name() string                          { return "Settings" }
func (Module) Dependencies() []string                { return nil }
func (Module) Permissions() []modules.PermissionDecl { return nil }
func (Module) DashboardWidgets() []modules.Widget    { return nil }

func (Module) NavigationItems() []modules.NavItem {
	return []modules.NavItem{
		{Label: "Settings", Route: "/settings", Icon: "Settings", Order: modules.Order(90)},
	}
}
