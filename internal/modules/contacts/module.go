// Package contacts describe el módulo de contactos (personas y organizaciones).
package contacts

import "github.com/jhoicas/erp-core/internal/application/modules"

// ID identificador del módulo.
const ID = "contacts"

// Permisos que declara el módulo.
const (
	PermView   = "contacts.view"
	PermCreate = "contacts.create"
	PermEdit   = "contacts.edit"
	PermDelete = "contacts.delete"
)

var _ modules.Module = Module{}

// Module descriptor que se registra en modules.Registry al arrancar.
type Module struct{}

func (Module) ID() string             { return ID }
func (Module) Name() string           { return "Contacts" }
func (Module) Dependencies() []string { return nil }

func (Module) Permissions() []modules.PermissionDecl {
	return []modules.PermissionDecl{
		{Key: PermView, Description: "View contacts"},
		{Key: PermCreate, Description: "Create contacts"},
		{Key: PermEdit, Description: "Edit contacts"},
		{Key: PermDelete, Description: "Delete contacts"},
	}
}

func (Module) NavigationItems() []modules.NavItem {
	return []modules.NavItem{
		{Label: "Contacts", Route: "/contacts", Icon: "Users", Order: modules.Order(10)},
	}
}

func (Module) DashboardWidgets() []modules.Widget {
	return []modules.Widget{
		{Component: "ContactsSummaryWidget", Order: modules.Order(10), Span: 1},
	}
}
