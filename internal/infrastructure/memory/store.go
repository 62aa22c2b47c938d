// Package memory implementa los puertos de repositorio en memoria.
// Se usa en tests y en desarrollo local sin PostgreSQL.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

var (
	_ repository.Store         = (*Store)(nil)
	_ repository.StoreProvider = (*Provider)(nil)
)

type data struct {
	companies    map[string]*entity.Company
	companyOrder []string
	memberships  []entity.Membership
	users        map[string]*entity.User
	roles        map[string]*entity.Role
	roleOrder    []string
	assignments  []entity.RoleAssignment
	modules      map[string]*entity.TenantModule
	sequences    map[entity.SequenceKey]*entity.DocumentSequence
	contacts     map[string]*entity.Contact
	contactOrder []string
}

func newData() *data {
	return &data{
		companies: make(map[string]*entity.Company),
		users:     make(map[string]*entity.User),
		roles:     make(map[string]*entity.Role),
		modules:   make(map[string]*entity.TenantModule),
		sequences: make(map[entity.SequenceKey]*entity.DocumentSequence),
		contacts:  make(map[string]*entity.Contact),
	}
}

func (d *data) clone() *data {
	c := &data{
		companies:    make(map[string]*entity.Company, len(d.companies)),
		companyOrder: slices.Clone(d.companyOrder),
		memberships:  slices.Clone(d.memberships),
		users:        make(map[string]*entity.User, len(d.users)),
		roles:        make(map[string]*entity.Role, len(d.roles)),
		roleOrder:    slices.Clone(d.roleOrder),
		assignments:  slices.Clone(d.assignments),
		modules:      make(map[string]*entity.TenantModule, len(d.modules)),
		sequences:    make(map[entity.SequenceKey]*entity.DocumentSequence, len(d.sequences)),
		contacts:     make(map[string]*entity.Contact, len(d.contacts)),
		contactOrder: slices.Clone(d.contactOrder),
	}
	for k, v := range d.companies {
		c.companies[k] = copyCompany(v)
	}
	for k, v := range d.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range d.roles {
		c.roles[k] = copyRole(v)
	}
	for k, v := range d.modules {
		c.modules[k] = copyModule(v)
	}
	for k, v := range d.sequences {
		c.sequences[k] = copySequence(v)
	}
	for k, v := range d.contacts {
		c.contacts[k] = copyContact(v)
	}
	return c
}

type state struct {
	mu   sync.Mutex // protege d
	txMu sync.Mutex // serializa transacciones
	d    *data
}

// Store es la base de un tenant en memoria.
type Store struct {
	st *state
	tx bool
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{st: &state{d: newData()}}
}

func (s *Store) Companies() repository.CompanyRepository      { return companyRepo{s.st} }
func (s *Store) Memberships() repository.MembershipRepository { return membershipRepo{s.st} }
func (s *Store) Users() repository.UserRepository             { return userRepo{s.st} }
func (s *Store) Roles() repository.RoleRepository             { return roleRepo{s.st} }
func (s *Store) Modules() repository.TenantModuleRepository   { return moduleRepo{s.st} }
func (s *Store) Sequences() repository.SequenceRepository     { return sequenceRepo{s.st} }
func (s *Store) Contacts() repository.ContactRepository       { return contactRepo{s.st} }

// WithinTx serializa las transacciones y restaura una instantánea si fn falla.
// Una transacción anidada reutiliza la externa.
// Las escrituras hechas fuera de transacción mientras otra hace rollback se pierden.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tx {
		return fn(s)
	}
	s.st.txMu.Lock()
	defer s.st.txMu.Unlock()

	s.st.mu.Lock()
	snapshot := s.st.d.clone()
	s.st.mu.Unlock()

	if err := fn(&Store{st: s.st, tx: true}); err != nil {
		s.st.mu.Lock()
		s.st.d = snapshot
		s.st.mu.Unlock()
		return err
	}
	return nil
}

// Provider resuelve el Store por ID de tenant.
type Provider struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewProvider crea un proveedor vacío.
func NewProvider() *Provider {
	return &Provider{stores: make(map[string]*Store)}
}

// Add registra (o reemplaza) el Store de un tenant.
func (p *Provider) Add(tenantID string, store *Store) {
	p.mu.Lock()
	p.stores[tenantID] = store
	p.mu.Unlock()
}

// Store devuelve el Store del tenant del contexto, creándolo vacío la primera vez.
func (p *Provider) Store(ctx context.Context) (repository.Store, error) {
	tenant := tenantFrom(ctx)
	if tenant == "" {
		return nil, domain.ErrTenantNotResolved
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.stores[tenant]
	if !ok {
		s = NewStore()
		p.stores[tenant] = s
	}
	return s, nil
}

// copias defensivas: nadie fuera del paquete retiene punteros al estado interno.

func copyCompany(c *entity.Company) *entity.Company {
	out := *c
	out.Settings = maps.Clone(c.Settings)
	if c.ParentID != nil {
		p := *c.ParentID
		out.ParentID = &p
	}
	return &out
}

func copyRole(r *entity.Role) *entity.Role {
	out := *r
	out.Permissions = slices.Clone(r.Permissions)
	return &out
}

func copyModule(m *entity.TenantModule) *entity.TenantModule {
	out := *m
	out.Limits = maps.Clone(m.Limits)
	out.Features = slices.Clone(m.Features)
	if m.ActivatedAt != nil {
		t := *m.ActivatedAt
		out.ActivatedAt = &t
	}
	return &out
}

func copySequence(s *entity.DocumentSequence) *entity.DocumentSequence {
	out := *s
	if s.Prefix != nil {
		p := *s.Prefix
		out.Prefix = &p
	}
	return &out
}

func copyContact(c *entity.Contact) *entity.Contact {
	out := *c
	out.Tags = slices.Clone(c.Tags)
	if c.OrganizationID != nil {
		o := *c.OrganizationID
		out.OrganizationID = &o
	}
	return &out
}
