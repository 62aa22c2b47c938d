package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/application/audit"
	"github.com/jhoicas/erp-core/internal/application/auth"
	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/sequence"
	"github.com/jhoicas/erp-core/internal/application/tenancy"
	"github.com/jhoicas/erp-core/internal/application/usecase"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/infrastructure/memory"
	"github.com/jhoicas/erp-core/internal/modules/settings"
	"github.com/jhoicas/erp-core/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testSecret = "test-secret-key-for-unit-tests"

type recorder struct {
	mu   sync.Mutex
	muts []audit.Mutation
}

func (r *recorder) OnMutation(_ context.Context, m audit.Mutation) {
	r.mu.Lock()
	r.muts = append(r.muts, m)
	r.mu.Unlock()
}

func (r *recorder) all() []audit.Mutation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]audit.Mutation{}, r.muts...)
}

type fixture struct {
	provider *memory.Provider
	store    *memory.Store
	tenant   *entity.Tenant
	rec      *recorder
}

func newFixture(t *testing.T, maxCompanies int) *fixture {
	t.Helper()
	provider := memory.NewProvider()
	store := memory.NewStore()
	provider.Add("t1", store)
	return &fixture{
		provider: provider,
		store:    store,
		tenant:   &entity.Tenant{ID: "t1", MaxCompanies: maxCompanies, IsActive: true},
		rec:      &recorder{},
	}
}

func (f *fixture) ctx() context.Context {
	return tenancy.WithTenant(context.Background(), f.tenant)
}

func (f *fixture) companyCtx(c *entity.Company) context.Context {
	return tenancy.WithCompany(f.ctx(), c)
}

func (f *fixture) addCompany(t *testing.T, id string) *entity.Company {
	t.Helper()
	c := &entity.Company{ID: id, Name: id, CurrencyCode: "EUR", CountryCode: "ES", Locale: "es_ES",
		Timezone: "UTC", FiscalYearStart: 1, IsActive: true}
	require.NoError(t, f.store.Companies().Create(context.Background(), c))
	return c
}

func (f *fixture) addUser(t *testing.T, id string, companies ...string) *entity.User {
	t.Helper()
	u := &entity.User{ID: id, Name: id, Email: id + "@test.io", IsActive: true}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	for i, c := range companies {
		require.NoError(t, f.store.Memberships().Attach(context.Background(), entity.Membership{
			CompanyID: c, UserID: id, CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}))
	}
	return u
}

func (f *fixture) contacts() *usecase.ContactUseCase {
	gen := sequence.NewGenerator(f.provider, sequence.Config{MaxAttempts: 3, RetryBackoff: time.Millisecond})
	return usecase.NewContactUseCase(f.provider, gen, f.rec)
}

// ──────────────────────────────────────────────────────────────────────────────
// Empresas
// ──────────────────────────────────────────────────────────────────────────────

func TestCompany_CreateAplicaDefaultsYAudita(t *testing.T) {
	f := newFixture(t, 0)
	uc := usecase.NewCompanyUseCase(f.provider, f.rec)

	out, err := uc.Create(f.ctx(), dto.CreateCompanyRequest{Name: "Acme"})
	require.NoError(t, err)

	assert.Equal(t, entity.DefaultCurrencyCode, out.CurrencyCode)
	assert.Equal(t, entity.DefaultTimezone, out.Timezone)
	assert.Equal(t, 1, out.FiscalYearStart)
	assert.True(t, out.IsActive)
	require.Len(t, f.rec.all(), 1)
	assert.Equal(t, "company", f.rec.all()[0].Entity)
}

func TestCompany_CreateRespetaLimiteDelPlan(t *testing.T) {
	f := newFixture(t, 1)
	uc := usecase.NewCompanyUseCase(f.provider, nil)

	_, err := uc.Create(f.ctx(), dto.CreateCompanyRequest{Name: "Primera"})
	require.NoError(t, err)

	_, err = uc.Create(f.ctx(), dto.CreateCompanyRequest{Name: "Segunda"})
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)
}

func TestCompany_CreateSinTenant(t *testing.T) {
	f := newFixture(t, 0)
	uc := usecase.NewCompanyUseCase(f.provider, nil)

	_, err := uc.Create(context.Background(), dto.CreateCompanyRequest{Name: "Acme"})
	assert.ErrorIs(t, err, domain.ErrTenantNotResolved)
}

func TestCompany_Validaciones(t *testing.T) {
	f := newFixture(t, 0)
	uc := usecase.NewCompanyUseCase(f.provider, nil)

	cases := map[string]dto.CreateCompanyRequest{
		"sin nombre":     {},
		"moneda":         {Name: "A", CurrencyCode: "EURO"},
		"país":           {Name: "A", CountryCode: "E1"},
		"locale":         {Name: "A", Locale: "no es un locale"},
		"zona horaria":   {Name: "A", Timezone: "Marte/Olympus"},
		"mes fiscal":     {Name: "A", FiscalYearStart: 13},
		"padre inexiste": {Name: "A", ParentID: strPtr("nope")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Create(f.ctx(), in)
			require.Error(t, err)
			assert.True(t, isAny(err, domain.ErrInvalidInput, domain.ErrNotFound), err.Error())
		})
	}
}

func TestCompany_UpdateRechazaCiclos(t *testing.T) {
	f := newFixture(t, 0)
	uc := usecase.NewCompanyUseCase(f.provider, nil)
	a := f.addCompany(t, "a")
	f.addCompany(t, "b")

	_, err := uc.Update(f.ctx(), "b", dto.UpdateCompanyRequest{ParentID: strPtr("a")})
	require.NoError(t, err)

	_, err = uc.Update(f.ctx(), a.ID, dto.UpdateCompanyRequest{ParentID: strPtr("b")})
	assert.ErrorIs(t, err, domain.ErrCompanyCycle)

	_, err = uc.Update(f.ctx(), a.ID, dto.UpdateCompanyRequest{ParentID: strPtr("a")})
	assert.ErrorIs(t, err, domain.ErrCompanyCycle, "una empresa no es su propio padre")
}

func TestCompany_DeactivateEsSoft(t *testing.T) {
	f := newFixture(t, 0)
	uc := usecase.NewCompanyUseCase(f.provider, nil)
	f.addCompany(t, "a")

	require.NoError(t, uc.Deactivate(f.ctx(), "a"))

	got, err := uc.GetByID(f.ctx(), "a")
	require.NoError(t, err)
	require.NotNil(t, got, "la empresa sigue existiendo")
	assert.False(t, got.IsActive)

	list, err := uc.List(f.ctx(), true)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestCompany_AttachUserConDefaultYRol(t *testing.T) {
	f := newFixture(t, 0)
	uc := usecase.NewCompanyUseCase(f.provider, nil)
	f.addCompany(t, "a")
	f.addCompany(t, "b")
	f.addUser(t, "u1", "a")
	role := &entity.Role{ID: "r1", Slug: "sales", Permissions: []string{"contacts.view"}}
	require.NoError(t, f.store.Roles().Create(context.Background(), role))

	require.NoError(t, uc.AttachUser(f.ctx(), "b", dto.AttachUserRequest{UserID: "u1", IsDefault: true, RoleID: "r1"}))
	require.NoError(t, uc.AttachUser(f.ctx(), "b", dto.AttachUserRequest{UserID: "u1"}), "idempotente")

	ms, err := f.store.Memberships().ListForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, ms, 2)
	defaults := 0
	for _, m := range ms {
		if m.IsDefault {
			defaults++
			assert.Equal(t, "b", m.CompanyID)
		}
	}
	assert.Equal(t, 1, defaults)

	roles, err := f.store.Roles().RolesForUser(context.Background(), "u1", "b")
	require.NoError(t, err)
	require.Len(t, roles, 1)
	roles, err = f.store.Roles().RolesForUser(context.Background(), "u1", "a")
	require.NoError(t, err)
	assert.Empty(t, roles, "el rol queda acotado a la empresa b")
}

func TestCompany_ResolveActivePrioridades(t *testing.T) {
	f := newFixture(t, 0)
	uc := usecase.NewCompanyUseCase(f.provider, nil)
	f.addCompany(t, "a")
	f.addCompany(t, "b")
	f.addCompany(t, "ajena")
	u := f.addUser(t, "u1", "a", "b")

	got, err := uc.ResolveActive(f.ctx(), u)
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID, "sin preferencia ni defecto: la primera membresía")

	require.NoError(t, f.store.Memberships().SetDefault(context.Background(), "u1", "b"))
	got, err = uc.ResolveActive(f.ctx(), u)
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID, "la empresa por defecto gana a la primera")

	got, err = uc.ResolveActive(f.ctx(), u, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID, "la cabecera gana al token y al defecto")

	got, err = uc.ResolveActive(f.ctx(), u, "ajena", "")
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID, "una preferencia sin membresía se ignora")
}

func TestCompany_ResolveActiveSinEmpresas(t *testing.T) {
	f := newFixture(t, 0)
	uc := usecase.NewCompanyUseCase(f.provider, nil)
	u := f.addUser(t, "u1")

	got, err := uc.ResolveActive(f.ctx(), u)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCompany_Switch(t *testing.T) {
	f := newFixture(t, 0)
	uc := usecase.NewCompanyUseCase(f.provider, nil)
	f.addCompany(t, "a")
	f.addCompany(t, "b")
	u := f.addUser(t, "u1", "a")

	ctx, holder := tenancy.WithCompanyContext(f.ctx())
	_, err := uc.Switch(ctx, u, "b")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.False(t, holder.Check())

	company, err := uc.Switch(ctx, u, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", company.ID)
	assert.Equal(t, "a", holder.ID())

	admin := &entity.User{ID: "root", IsSuperadmin: true}
	_, err = uc.Switch(ctx, admin, "b")
	require.NoError(t, err, "un superadmin entra en cualquier empresa activa")
	assert.Equal(t, "b", holder.ID())
}

func TestCompany_MembershipsMarcaActiva(t *testing.T) {
	f := newFixture(t, 0)
	uc := usecase.NewCompanyUseCase(f.provider, nil)
	a := f.addCompany(t, "a")
	f.addCompany(t, "b")
	u := f.addUser(t, "u1", "a", "b")

	out, err := uc.Memberships(f.companyCtx(a), u)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].IsActive)
	assert.False(t, out[1].IsActive)
}

// ──────────────────────────────────────────────────────────────────────────────
// Contactos
// ──────────────────────────────────────────────────────────────────────────────

func TestContact_CreateAsignaCodigoPorEmpresa(t *testing.T) {
	f := newFixture(t, 0)
	uc := f.contacts()
	a := f.addCompany(t, "a")
	b := f.addCompany(t, "b")

	first, err := uc.Create(f.companyCtx(a), dto.CreateContactRequest{Type: entity.ContactPerson, FirstName: "Ana"})
	require.NoError(t, err)
	second, err := uc.Create(f.companyCtx(a), dto.CreateContactRequest{Type: entity.ContactPerson, FirstName: "Luis"})
	require.NoError(t, err)
	other, err := uc.Create(f.companyCtx(b), dto.CreateContactRequest{Type: entity.ContactOrganization, Name: "Beta SL"})
	require.NoError(t, err)

	assert.Equal(t, "a", first.CompanyID)
	assert.Regexp(t, `^CON\d{4}-00001$`, first.Code)
	assert.Regexp(t, `^CON\d{4}-00002$`, second.Code)
	assert.Regexp(t, `^CON\d{4}-00001$`, other.Code, "cada empresa tiene su propia serie")
	assert.Equal(t, "Beta SL", other.DisplayName)
}

func TestContact_CreateSinEmpresaActiva(t *testing.T) {
	f := newFixture(t, 0)
	uc := f.contacts()

	_, err := uc.Create(f.ctx(), dto.CreateContactRequest{Type: entity.ContactPerson, FirstName: "Ana"})
	assert.ErrorIs(t, err, domain.ErrMissingTenantContext)
}

func TestContact_OrganizacionDeOtraEmpresaNoConsumeConsecutivo(t *testing.T) {
	f := newFixture(t, 0)
	uc := f.contacts()
	a := f.addCompany(t, "a")
	b := f.addCompany(t, "b")

	org, err := uc.Create(f.companyCtx(b), dto.CreateContactRequest{Type: entity.ContactOrganization, Name: "Beta"})
	require.NoError(t, err)

	_, err = uc.Create(f.companyCtx(a), dto.CreateContactRequest{
		Type: entity.ContactPerson, FirstName: "Ana", OrganizationID: &org.ID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "la organización es de otra empresa")

	ok, err := uc.Create(f.companyCtx(a), dto.CreateContactRequest{Type: entity.ContactPerson, FirstName: "Ana"})
	require.NoError(t, err)
	assert.Regexp(t, `^CON\d{4}-00001$`, ok.Code)
}

func TestContact_LecturasAcotadasALaEmpresa(t *testing.T) {
	f := newFixture(t, 0)
	uc := f.contacts()
	a := f.addCompany(t, "a")
	b := f.addCompany(t, "b")

	created, err := uc.Create(f.companyCtx(a), dto.CreateContactRequest{Type: entity.ContactPerson, FirstName: "Ana"})
	require.NoError(t, err)

	got, err := uc.GetByID(f.companyCtx(b), created.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "otra empresa no ve el contacto")

	list, err := uc.List(f.companyCtx(b), dto.ContactListRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	assert.ErrorIs(t, uc.Delete(f.companyCtx(b), created.ID), domain.ErrNotFound)

	_, err = uc.List(f.ctx(), dto.ContactListRequest{})
	assert.ErrorIs(t, err, domain.ErrMissingTenantContext)

	list, err = uc.List(f.companyCtx(a), dto.ContactListRequest{Search: "an"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 20, list.Page.Limit)
}

func TestContact_UpdateAcotadoALaEmpresaActiva(t *testing.T) {
	f := newFixture(t, 0)
	uc := f.contacts()
	a := f.addCompany(t, "a")
	b := f.addCompany(t, "b")

	created, err := uc.Create(f.companyCtx(a), dto.CreateContactRequest{Type: entity.ContactPerson, FirstName: "Ana"})
	require.NoError(t, err)

	_, err = uc.Update(f.companyCtx(b), created.ID, dto.UpdateContactRequest{
		CreateContactRequest: dto.CreateContactRequest{Type: entity.ContactPerson, FirstName: "Intruso"},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "otra empresa no puede editarlo")

	same, err := uc.GetByID(f.companyCtx(a), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", same.FirstName, "la fila queda intacta")

	inactive := false
	updated, err := uc.Update(f.companyCtx(a), created.ID, dto.UpdateContactRequest{
		CreateContactRequest: dto.CreateContactRequest{Type: entity.ContactPerson, FirstName: "Ana María", Email: "ANA@test.io"},
		IsActive:             &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", updated.FirstName)
	assert.Equal(t, "ana@test.io", updated.Email)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "a", updated.CompanyID)
	assert.Equal(t, created.Code, updated.Code, "el código no cambia")

	muts := f.rec.all()
	last := muts[len(muts)-1]
	assert.Equal(t, audit.EventUpdated, last.Event)
	assert.Equal(t, "Ana", last.Old["first_name"])
	assert.Equal(t, "Ana María", last.New["first_name"])
}

func TestContact_UpdateSinEmpresaActivaYValidaciones(t *testing.T) {
	f := newFixture(t, 0)
	uc := f.contacts()
	a := f.addCompany(t, "a")
	created, err := uc.Create(f.companyCtx(a), dto.CreateContactRequest{Type: entity.ContactPerson, FirstName: "Ana"})
	require.NoError(t, err)

	valid := dto.UpdateContactRequest{CreateContactRequest: dto.CreateContactRequest{Type: entity.ContactPerson, FirstName: "Ana"}}
	_, err = uc.Update(f.ctx(), created.ID, valid)
	assert.ErrorIs(t, err, domain.ErrMissingTenantContext)

	_, err = uc.Update(f.companyCtx(a), created.ID, dto.UpdateContactRequest{
		CreateContactRequest: dto.CreateContactRequest{Type: entity.ContactPerson, FirstName: "Ana", OrganizationID: &created.ID},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Update(f.companyCtx(a), "no-existe", valid)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestContact_Validaciones(t *testing.T) {
	f := newFixture(t, 0)
	uc := f.contacts()
	a := f.addCompany(t, "a")

	for _, in := range []dto.CreateContactRequest{
		{Type: "robot"},
		{Type: entity.ContactPerson},
		{Type: entity.ContactOrganization},
		{Type: entity.ContactPerson, FirstName: "Ana", Email: "sin-arroba"},
	} {
		_, err := uc.Create(f.companyCtx(a), in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Roles, usuarios, instalación y login
// ──────────────────────────────────────────────────────────────────────────────

func TestRole_NoSeBorranRolesDeSistema(t *testing.T) {
	f := newFixture(t, 0)
	require.NoError(t, usecase.NewSetupUseCase(f.provider).SeedSystemRoles(f.ctx()))
	require.NoError(t, usecase.NewSetupUseCase(f.provider).SeedSystemRoles(f.ctx()), "idempotente")
	uc := usecase.NewRoleUseCase(f.provider, nil)

	roles, err := uc.List(f.ctx())
	require.NoError(t, err)
	require.Len(t, roles, 4)

	admin, err := f.store.Roles().GetBySlug(context.Background(), entity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, []string{entity.PermissionWildcard}, admin.Permissions)
	assert.ErrorIs(t, uc.Delete(f.ctx(), admin.ID), domain.ErrSystemRole)

	custom, err := uc.Create(f.ctx(), dto.CreateRoleRequest{Name: "Ventas", Permissions: []string{"contacts.view", "contacts.view", " "}})
	require.NoError(t, err)
	assert.Equal(t, "ventas", custom.Slug)
	assert.Equal(t, []string{"contacts.view"}, custom.Permissions)
	require.NoError(t, uc.Delete(f.ctx(), custom.ID))
}

func TestRole_AssignGlobalYPorEmpresa(t *testing.T) {
	f := newFixture(t, 0)
	uc := usecase.NewRoleUseCase(f.provider, nil)
	f.addCompany(t, "a")
	f.addUser(t, "u1", "a")
	custom, err := uc.Create(f.ctx(), dto.CreateRoleRequest{Name: "Ventas", Permissions: []string{"contacts.view"}})
	require.NoError(t, err)

	require.NoError(t, uc.Assign(f.ctx(), custom.ID, dto.AssignRoleRequest{UserID: "u1"}))
	roles, err := f.store.Roles().RolesForUser(context.Background(), "u1", "cualquiera")
	require.NoError(t, err)
	assert.Len(t, roles, 1, "una asignación global aplica en todas las empresas")

	err = uc.Assign(f.ctx(), custom.ID, dto.AssignRoleRequest{UserID: "u1", CompanyID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUser_CreateNoExponeHashEnAuditoria(t *testing.T) {
	f := newFixture(t, 0)
	uc := usecase.NewUserUseCase(f.provider, f.rec)

	out, err := uc.Create(f.ctx(), dto.CreateUserRequest{Email: "Ana@Test.io", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "ana@test.io", out.Email)

	_, err = uc.Create(f.ctx(), dto.CreateUserRequest{Email: "ana@test.io", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(f.ctx(), dto.CreateUserRequest{Email: "b@test.io", Password: "corta"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	muts := f.rec.all()
	require.Len(t, muts, 1)
	assert.NotContains(t, muts[0].New, "password_hash")
	assert.Contains(t, muts[0].New, "email")
}

func TestSetup_InstallYLogin(t *testing.T) {
	f := newFixture(t, 0)
	company, admin, err := usecase.NewSetupUseCase(f.provider).Install(f.ctx(), usecase.InstallRequest{
		Company: dto.CreateCompanyRequest{Name: "Empresa Principal"},
		Admin:   dto.CreateUserRequest{Email: "admin@test.io", Password: "secret123", Name: "Admin"},
	})
	require.NoError(t, err)
	assert.True(t, admin.IsSuperadmin)

	m, err := f.store.Memberships().Get(context.Background(), admin.ID, company.ID)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.True(t, m.IsDefault)

	mod, err := f.store.Modules().Get(context.Background(), settings.ID)
	require.NoError(t, err)
	require.NotNil(t, mod, "la instalación deja activo el módulo de ajustes")
	assert.True(t, mod.IsActive)

	authUC := auth.NewAuthUseCase(f.provider, auth.JWTConfig{Secret: testSecret, ExpMinutes: 5, Issuer: "test"})
	out, err := authUC.Login(f.ctx(), dto.LoginRequest{Email: "ADMIN@test.io", Password: "secret123", CompanyID: company.ID})
	require.NoError(t, err)

	claims, err := jwt.Parse(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.UserID)
	assert.Equal(t, "t1", claims.TenantID)
	assert.Equal(t, company.ID, claims.CompanyID)

	_, err = authUC.Login(f.ctx(), dto.LoginRequest{Email: "admin@test.io", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = authUC.Login(f.ctx(), dto.LoginRequest{Email: "nadie@test.io", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tenants (landlord)
// ──────────────────────────────────────────────────────────────────────────────

func TestTenant_UpdateValidaYAudita(t *testing.T) {
	tenants := memory.NewTenants()
	tenants.Add(&entity.Tenant{ID: "t1", Name: "Acme", Plan: entity.PlanStarter, MaxCompanies: 1, IsActive: true}, "acme.test")
	rec := &recorder{}
	uc := usecase.NewTenantUseCase(tenants, rec)
	active := true

	for _, in := range []dto.UpdateTenantRequest{
		{Name: "", Plan: entity.PlanStarter, MaxCompanies: 1, IsActive: &active},
		{Name: "Acme", Plan: "gold", MaxCompanies: 1, IsActive: &active},
		{Name: "Acme", Plan: entity.PlanStarter, MaxCompanies: 0, IsActive: &active},
		{Name: "Acme", Plan: entity.PlanStarter, MaxCompanies: 1},
	} {
		_, err := uc.Update(context.Background(), "t1", in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}

	out, err := uc.Update(context.Background(), "t1", dto.UpdateTenantRequest{
		Name: "Acme SA", Plan: entity.PlanEnterprise, MaxCompanies: 5, IsActive: &active,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PlanEnterprise, out.Plan)
	require.Len(t, rec.all(), 1)
	assert.Equal(t, "tenant", rec.all()[0].Entity)
	assert.Equal(t, entity.PlanStarter, rec.all()[0].Old["plan"])

	stored, err := tenants.GetByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.MaxCompanies)

	_, err = uc.Update(context.Background(), "t9", dto.UpdateTenantRequest{Name: "X", Plan: entity.PlanStarter, MaxCompanies: 1, IsActive: &active})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTenant_DeactivateEsSoftEIdempotente(t *testing.T) {
	tenants := memory.NewTenants()
	tenants.Add(&entity.Tenant{ID: "t1", Name: "Acme", IsActive: true}, "acme.test")
	rec := &recorder{}
	uc := usecase.NewTenantUseCase(tenants, rec)

	require.NoError(t, uc.Deactivate(context.Background(), "t1"))
	require.NoError(t, uc.Deactivate(context.Background(), "t1"))
	assert.Len(t, rec.all(), 1, "la segunda llamada no cambia nada")

	found, err := tenants.FindByDomain(context.Background(), "acme.test")
	require.NoError(t, err)
	require.NotNil(t, found, "el tenant sigue existiendo")
	assert.False(t, found.IsActive)

	assert.ErrorIs(t, uc.Deactivate(context.Background(), "t9"), domain.ErrNotFound)
}

func strPtr(s string) *string { return &s }

func isAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
