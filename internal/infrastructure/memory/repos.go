package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/jhoicas/erp-core/internal/application/tenancy"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

func tenantFrom(ctx context.Context) string {
	if t := tenancy.TenantFromContext(ctx); t != nil {
		return t.ID
	}
	return ""
}

// ── companies ────────────────────────────────────────────────────────────────

type companyRepo struct{ st *state }

func (r companyRepo) Create(_ context.Context, c *entity.Company) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.d.companies[c.ID]; ok {
		return domain.ErrDuplicate
	}
	r.st.d.companies[c.ID] = copyCompany(c)
	r.st.d.companyOrder = append(r.st.d.companyOrder, c.ID)
	return nil
}

func (r companyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	c, ok := r.st.d.companies[id]
	if !ok {
		return nil, nil
	}
	return copyCompany(c), nil
}

func (r companyRepo) Update(_ context.Context, c *entity.Company) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	old, ok := r.st.d.companies[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	updated := copyCompany(c)
	updated.CreatedAt = old.CreatedAt
	r.st.d.companies[c.ID] = updated
	return nil
}

func (r companyRepo) List(_ context.Context, activeOnly bool) ([]*entity.Company, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	out := make([]*entity.Company, 0, len(r.st.d.companyOrder))
	for _, id := range r.st.d.companyOrder {
		c := r.st.d.companies[id]
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, copyCompany(c))
	}
	return out, nil
}

func (r companyRepo) Count(_ context.Context) (int, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return len(r.st.d.companies), nil
}

// ── memberships ──────────────────────────────────────────────────────────────

type membershipRepo struct{ st *state }

func (r membershipRepo) Attach(_ context.Context, m entity.Membership) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, existing := range r.st.d.memberships {
		if existing.CompanyID == m.CompanyID && existing.UserID == m.UserID {
			return nil
		}
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.st.d.memberships = append(r.st.d.memberships, m)
	return nil
}

func (r membershipRepo) Detach(_ context.Context, companyID, userID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	before := len(r.st.d.memberships)
	r.st.d.memberships = slices.DeleteFunc(r.st.d.memberships, func(m entity.Membership) bool {
		return m.CompanyID == companyID && m.UserID == userID
	})
	if len(r.st.d.memberships) == before {
		return domain.ErrNotFound
	}
	return nil
}

func (r membershipRepo) SetDefault(_ context.Context, userID, companyID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	found := false
	for _, m := range r.st.d.memberships {
		if m.UserID == userID && m.CompanyID == companyID {
			found = true
		}
	}
	if !found {
		return domain.ErrNotFound
	}
	for i := range r.st.d.memberships {
		m := &r.st.d.memberships[i]
		if m.UserID == userID {
			m.IsDefault = m.CompanyID == companyID
		}
	}
	return nil
}

func (r membershipRepo) Get(_ context.Context, userID, companyID string) (*entity.Membership, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, m := range r.st.d.memberships {
		if m.UserID == userID && m.CompanyID == companyID {
			out := m
			return &out, nil
		}
	}
	return nil, nil
}

func (r membershipRepo) ListForUser(_ context.Context, userID string) ([]entity.Membership, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []entity.Membership
	for _, m := range r.st.d.memberships {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b entity.Membership) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (r membershipRepo) ListForCompany(_ context.Context, companyID string) ([]entity.Membership, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []entity.Membership
	for _, m := range r.st.d.memberships {
		if m.CompanyID == companyID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ── users ────────────────────────────────────────────────────────────────────

type userRepo struct{ st *state }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, existing := range r.st.d.users {
		if existing.ID == u.ID || strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrDuplicate
		}
	}
	cp := *u
	r.st.d.users[u.ID] = &cp
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	u, ok := r.st.d.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, u := range r.st.d.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// ── roles ────────────────────────────────────────────────────────────────────

type roleRepo struct{ st *state }

func (r roleRepo) Create(_ context.Context, role *entity.Role) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, existing := range r.st.d.roles {
		if existing.ID == role.ID || existing.Slug == role.Slug {
			return domain.ErrDuplicate
		}
	}
	r.st.d.roles[role.ID] = copyRole(role)
	r.st.d.roleOrder = append(r.st.d.roleOrder, role.ID)
	return nil
}

func (r roleRepo) GetByID(_ context.Context, id string) (*entity.Role, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	role, ok := r.st.d.roles[id]
	if !ok {
		return nil, nil
	}
	return copyRole(role), nil
}

func (r roleRepo) GetBySlug(_ context.Context, slug string) (*entity.Role, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, role := range r.st.d.roles {
		if role.Slug == slug {
			return copyRole(role), nil
		}
	}
	return nil, nil
}

func (r roleRepo) List(_ context.Context) ([]*entity.Role, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	out := make([]*entity.Role, 0, len(r.st.d.roleOrder))
	for _, id := range r.st.d.roleOrder {
		out = append(out, copyRole(r.st.d.roles[id]))
	}
	return out, nil
}

func (r roleRepo) Delete(_ context.Context, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.d.roles[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.st.d.roles, id)
	r.st.d.roleOrder = slices.DeleteFunc(r.st.d.roleOrder, func(x string) bool { return x == id })
	r.st.d.assignments = slices.DeleteFunc(r.st.d.assignments, func(a entity.RoleAssignment) bool { return a.RoleID == id })
	return nil
}

func (r roleRepo) Assign(_ context.Context, a entity.RoleAssignment) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.d.roles[a.RoleID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range r.st.d.assignments {
		if existing.UserID == a.UserID && existing.RoleID == a.RoleID && sameCompany(existing.CompanyID, a.CompanyID) {
			return nil
		}
	}
	if a.CompanyID != nil {
		c := *a.CompanyID
		a.CompanyID = &c
	}
	r.st.d.assignments = append(r.st.d.assignments, a)
	return nil
}

func (r roleRepo) RolesForUser(_ context.Context, userID, companyID string) ([]*entity.Role, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []*entity.Role
	seen := make(map[string]bool)
	for _, a := range r.st.d.assignments {
		if a.UserID != userID || seen[a.RoleID] {
			continue
		}
		if a.CompanyID != nil && *a.CompanyID != companyID {
			continue
		}
		role, ok := r.st.d.roles[a.RoleID]
		if !ok {
			continue
		}
		seen[a.RoleID] = true
		out = append(out, copyRole(role))
	}
	return out, nil
}

func sameCompany(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ── tenant modules ───────────────────────────────────────────────────────────

type moduleRepo struct{ st *state }

func (r moduleRepo) Get(_ context.Context, module string) (*entity.TenantModule, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	m, ok := r.st.d.modules[module]
	if !ok {
		return nil, nil
	}
	return copyModule(m), nil
}

func (r moduleRepo) List(_ context.Context) ([]*entity.TenantModule, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	out := make([]*entity.TenantModule, 0, len(r.st.d.modules))
	for _, m := range r.st.d.modules {
		out = append(out, copyModule(m))
	}
	slices.SortFunc(out, func(a, b *entity.TenantModule) int { return strings.Compare(a.Module, b.Module) })
	return out, nil
}

func (r moduleRepo) Upsert(_ context.Context, m *entity.TenantModule) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if old, ok := r.st.d.modules[m.Module]; ok {
		m.ID = old.ID
		m.CreatedAt = old.CreatedAt
	}
	r.st.d.modules[m.Module] = copyModule(m)
	return nil
}

// ── document sequences ───────────────────────────────────────────────────────

type sequenceRepo struct{ st *state }

func (r sequenceRepo) Increment(ctx context.Context, key entity.SequenceKey, defaults entity.SequenceDefaults) (*entity.DocumentSequence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	now := time.Now()
	seq, ok := r.st.d.sequences[key]
	if !ok {
		prefix := defaults.Prefix
		seq = &entity.DocumentSequence{
			ID:        key.String(),
			CompanyID: key.CompanyID,
			Type:      key.Type,
			Prefix:    &prefix,
			Year:      key.Year,
			Pattern:   defaults.Pattern,
			CreatedAt: now,
		}
		r.st.d.sequences[key] = seq
	}
	seq.Current++
	seq.UpdatedAt = now
	return copySequence(seq), nil
}

func (r sequenceRepo) Get(_ context.Context, key entity.SequenceKey) (*entity.DocumentSequence, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	seq, ok := r.st.d.sequences[key]
	if !ok {
		return nil, nil
	}
	return copySequence(seq), nil
}

// ── contacts ─────────────────────────────────────────────────────────────────

type contactRepo struct{ st *state }

func (r contactRepo) Create(_ context.Context, c *entity.Contact) error {
	if c.CompanyID == "" {
		return domain.ErrMissingTenantContext
	}
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.d.contacts[c.ID]; ok {
		return domain.ErrDuplicate
	}
	r.st.d.contacts[c.ID] = copyContact(c)
	r.st.d.contactOrder = append(r.st.d.contactOrder, c.ID)
	return nil
}

func (r contactRepo) GetByID(_ context.Context, scope repository.Scope, id string) (*entity.Contact, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	c, ok := r.st.d.contacts[id]
	if !ok || !scope.Allows(c.CompanyID) {
		return nil, nil
	}
	return copyContact(c), nil
}

func (r contactRepo) List(_ context.Context, scope repository.Scope, f repository.ContactFilter) ([]*entity.Contact, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []*entity.Contact
	// más recientes primero
	for i := len(r.st.d.contactOrder) - 1; i >= 0; i-- {
		c := r.st.d.contacts[r.st.d.contactOrder[i]]
		if !scope.Allows(c.CompanyID) {
			continue
		}
		if f.Type != "" && c.Type != f.Type {
			continue
		}
		if f.Search != "" && !matchesSearch(c, f.Search) {
			continue
		}
		out = append(out, copyContact(c))
	}
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r contactRepo) Update(_ context.Context, scope repository.Scope, c *entity.Contact) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	old, ok := r.st.d.contacts[c.ID]
	if !ok || !scope.Allows(old.CompanyID) {
		return domain.ErrNotFound
	}
	updated := copyContact(c)
	updated.CompanyID = old.CompanyID
	updated.Code = old.Code
	updated.CreatedAt = old.CreatedAt
	r.st.d.contacts[c.ID] = updated
	return nil
}

func (r contactRepo) Delete(_ context.Context, scope repository.Scope, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	c, ok := r.st.d.contacts[id]
	if !ok || !scope.Allows(c.CompanyID) {
		return domain.ErrNotFound
	}
	delete(r.st.d.contacts, id)
	r.st.d.contactOrder = slices.DeleteFunc(r.st.d.contactOrder, func(x string) bool { return x == id })
	return nil
}

func matchesSearch(c *entity.Contact, term string) bool {
	term = strings.ToLower(term)
	for _, f := range []string{c.FirstName, c.LastName, c.Name, c.Email, c.Phone} {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
