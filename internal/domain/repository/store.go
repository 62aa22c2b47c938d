package repository

import "context"

// Store agrupa los repositorios de la base aislada de un tenant.
type Store interface {
	Companies() CompanyRepository
	Memberships() MembershipRepository
	Users() UserRepository
	Roles() RoleRepository
	Modules() TenantModuleRepository
	Sequences() SequenceRepository
	Contacts() ContactRepository

	// WithinTx ejecuta fn en una transacción: commit si fn retorna nil, rollback en otro caso.
	// El Store recibido por fn usa la transacción en todos sus repositorios.
	WithinTx(ctx context.Context, fn func(Store) error) error
}

// StoreProvider devuelve el Store del tenant resuelto para el request.
// Retorna domain.ErrTenantNotResolved si el contexto no tiene tenant.
type StoreProvider interface {
	Store(ctx context.Context) (Store, error)
}
