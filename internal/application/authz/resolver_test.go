package authz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/application/authz"
	"github.com/jhoicas/erp-core/internal/application/tenancy"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	resolver *authz.Resolver
	store    *memory.Store
	ctx      context.Context // tenant t1 sin empresa activa
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	provider := memory.NewProvider()
	store := memory.NewStore()
	provider.Add("t1", store)
	ctx := tenancy.WithTenant(context.Background(), &entity.Tenant{ID: "t1"})

	roles := store.Roles()
	require.NoError(t, roles.Create(ctx, &entity.Role{ID: "admin", Slug: "admin", Permissions: []string{"*"}, IsSystem: true}))
	require.NoError(t, roles.Create(ctx, &entity.Role{ID: "viewer", Slug: "viewer", Permissions: []string{"contacts.view", "reports.view"}}))
	require.NoError(t, roles.Create(ctx, &entity.Role{ID: "editor", Slug: "editor", Permissions: []string{"contacts.view", "contacts.edit"}}))

	return &fixture{resolver: authz.NewResolver(provider), store: store, ctx: ctx}
}

func (f *fixture) assign(t *testing.T, userID, roleID string, companyID *string) {
	t.Helper()
	require.NoError(t, f.store.Roles().Assign(f.ctx, entity.RoleAssignment{UserID: userID, RoleID: roleID, CompanyID: companyID}))
}

func (f *fixture) in(companyID string) context.Context {
	return tenancy.WithCompany(f.ctx, &entity.Company{ID: companyID})
}

func ptr(s string) *string { return &s }

// ──────────────────────────────────────────────────────────────────────────────
// Can / CanAny
// ──────────────────────────────────────────────────────────────────────────────

func TestCan_SuperadminSiemprePasa(t *testing.T) {
	f := newFixture(t)
	root := &entity.User{ID: "root", IsSuperadmin: true}

	ok, err := f.resolver.Can(f.ctx, root, "lo.que.sea")
	require.NoError(t, err)
	assert.True(t, ok, "superadmin pasa incluso sin empresa activa")

	perms, err := f.resolver.AllPermissions(f.ctx, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, perms)
}

func TestCan_SinEmpresaActivaNiegaTodo(t *testing.T) {
	f := newFixture(t)
	u := &entity.User{ID: "u1"}
	f.assign(t, "u1", "admin", nil) // rol global con comodín

	ok, err := f.resolver.Can(f.ctx, u, "contacts.view")
	require.NoError(t, err)
	assert.False(t, ok, "ni un rol global concede permisos sin empresa activa")

	perms, err := f.resolver.AllPermissions(f.ctx, u)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestCan_ComodinConcedeTodo(t *testing.T) {
	f := newFixture(t)
	u := &entity.User{ID: "u1"}
	f.assign(t, "u1", "admin", ptr("c1"))

	for _, p := range []string{"contacts.view", "invoices.void", "x"} {
		ok, err := f.resolver.Can(f.in("c1"), u, p)
		require.NoError(t, err)
		assert.True(t, ok, p)
	}
}

func TestCan_RolesDeOtraEmpresaNoCuentan(t *testing.T) {
	f := newFixture(t)
	u := &entity.User{ID: "u1"}
	f.assign(t, "u1", "editor", ptr("c1"))

	ok, err := f.resolver.Can(f.in("c1"), u, "contacts.edit")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.resolver.Can(f.in("c2"), u, "contacts.edit")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCan_RolGlobalAplicaEnCualquierEmpresa(t *testing.T) {
	f := newFixture(t)
	u := &entity.User{ID: "u1"}
	f.assign(t, "u1", "viewer", nil)

	ok, err := f.resolver.Can(f.in("c7"), u, "reports.view")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanAny(t *testing.T) {
	f := newFixture(t)
	u := &entity.User{ID: "u1"}
	f.assign(t, "u1", "viewer", ptr("c1"))

	ok, err := f.resolver.CanAny(f.in("c1"), u, []string{"contacts.delete", "contacts.view"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.resolver.CanAny(f.in("c1"), u, []string{"contacts.delete", "contacts.edit"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCan_UsuarioNulo(t *testing.T) {
	f := newFixture(t)
	ok, err := f.resolver.Can(f.in("c1"), nil, "contacts.view")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, f.resolver.Authorize(f.in("c1"), nil, "contacts.view"), domain.ErrUnauthorized)
}

// ──────────────────────────────────────────────────────────────────────────────
// AllPermissions / Authorize
// ──────────────────────────────────────────────────────────────────────────────

func TestAllPermissions_UnionSinDuplicados(t *testing.T) {
	f := newFixture(t)
	u := &entity.User{ID: "u1"}
	f.assign(t, "u1", "viewer", ptr("c1"))
	f.assign(t, "u1", "editor", nil)

	perms, err := f.resolver.AllPermissions(f.in("c1"), u)
	require.NoError(t, err)
	assert.Equal(t, []string{"contacts.view", "reports.view", "contacts.edit"}, perms)
}

func TestAuthorize_ExigeTodos(t *testing.T) {
	f := newFixture(t)
	u := &entity.User{ID: "u1"}
	f.assign(t, "u1", "viewer", ptr("c1"))

	require.NoError(t, f.resolver.Authorize(f.in("c1"), u, "contacts.view"))

	err := f.resolver.Authorize(f.in("c1"), u, "contacts.view", "contacts.edit")
	require.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.Contains(t, err.Error(), "contacts.edit")
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallo cerrado ante errores del almacén
// ──────────────────────────────────────────────────────────────────────────────

type brokenProvider struct{}

func (brokenProvider) Store(context.Context) (repository.Store, error) {
	return nil, errors.New("db caída")
}

func TestCan_ErrorDeAlmacenNiega(t *testing.T) {
	r := authz.NewResolver(brokenProvider{})
	ctx := tenancy.WithCompany(context.Background(), &entity.Company{ID: "c1"})

	ok, err := r.Can(ctx, &entity.User{ID: "u1"}, "contacts.view")
	assert.Error(t, err)
	assert.False(t, ok)

	err = r.Authorize(ctx, &entity.User{ID: "u1"}, "contacts.view")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrPermissionDenied)
}
