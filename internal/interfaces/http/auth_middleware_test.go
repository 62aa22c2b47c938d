package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/erp-core/internal/application/auth"
	"github.com/jhoicas/erp-core/internal/application/authz"
	"github.com/jhoicas/erp-core/internal/application/modules"
	"github.com/jhoicas/erp-core/internal/application/sequence"
	"github.com/jhoicas/erp-core/internal/application/usecase"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/erp-core/internal/interfaces/http"
	"github.com/jhoicas/erp-core/internal/modules/contacts"
	"github.com/jhoicas/erp-core/internal/modules/settings"
	"github.com/jhoicas/erp-core/pkg/config"
	pkgjwt "github.com/jhoicas/erp-core/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret   = "test-secret-key-for-unit-tests"
	testIssuer      = "erp-core-test"
	testExpMin      = 60
	testHost        = "acme.test"
	testCentralHost = "central.test"
	testLandlordKey = "landlord-key"
)

type testEnv struct {
	app    *fiber.App
	store  *memory.Store
	tenant *entity.Tenant
}

// buildTestApp arma el pipeline completo sobre el almacén en memoria:
//   - tenant "t1" en acme.test (activo) y "t2" en old.test (inactivo)
//   - empresas c1 y c2; módulos contacts y settings registrados pero inactivos
//   - usuarios: admin (superadmin, sin empresas), viewer (c1, contacts.view), plain (c1 y c2, sin roles)
func buildTestApp(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	tenant := &entity.Tenant{ID: "t1", Name: "Acme", IsActive: true}
	tenants := memory.NewTenants()
	tenants.Add(tenant, testHost)
	tenants.Add(&entity.Tenant{ID: "t2", Name: "Old", IsActive: false}, "old.test")

	store := memory.NewStore()
	provider := memory.NewProvider()
	provider.Add("t1", store)

	for _, id := range []string{"c1", "c2"} {
		require.NoError(t, store.Companies().Create(ctx, &entity.Company{
			ID: id, Name: id, CurrencyCode: "EUR", CountryCode: "ES", Locale: "es_ES", Timezone: "UTC",
			FiscalYearStart: 1, IsActive: true,
		}))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	users := []*entity.User{
		{ID: "admin", Email: "admin@acme.test", Name: "Admin", PasswordHash: string(hash), IsActive: true, IsSuperadmin: true},
		{ID: "viewer", Email: "viewer@acme.test", Name: "Viewer", PasswordHash: string(hash), IsActive: true},
		{ID: "plain", Email: "plain@acme.test", Name: "Plain", PasswordHash: string(hash), IsActive: true},
	}
	for _, u := range users {
		require.NoError(t, store.Users().Create(ctx, u))
	}
	now := time.Now()
	require.NoError(t, store.Memberships().Attach(ctx, entity.Membership{CompanyID: "c1", UserID: "viewer", IsDefault: true, CreatedAt: now}))
	require.NoError(t, store.Memberships().Attach(ctx, entity.Membership{CompanyID: "c1", UserID: "plain", IsDefault: true, CreatedAt: now}))
	require.NoError(t, store.Memberships().Attach(ctx, entity.Membership{CompanyID: "c2", UserID: "plain", CreatedAt: now.Add(time.Second)}))

	require.NoError(t, store.Roles().Create(ctx, &entity.Role{ID: "r-view", Name: "Contact viewer", Slug: "contact-viewer",
		Permissions: []string{contacts.PermView}}))
	c1 := "c1"
	require.NoError(t, store.Roles().Assign(ctx, entity.RoleAssignment{UserID: "viewer", RoleID: "r-view", CompanyID: &c1, CreatedAt: now}))

	registry := modules.NewRegistry(provider, 0)
	registry.MustRegister(contacts.Module{}, settings.Module{})
	gen := sequence.NewGenerator(provider, sequence.Config{MaxAttempts: 3, RetryBackoff: time.Millisecond})
	tenancyCfg := config.TenancyConfig{CentralDomains: []string{testCentralHost}, LandlordAPIKey: testLandlordKey}

	app := fiber.New()
	app.Use(apphttp.TenantMiddleware(tenants, tenancyCfg))
	apphttp.Router(app, apphttp.RouterDeps{
		Tenants:   tenants,
		Stores:    provider,
		Registry:  registry,
		Modules:   modules.NewService(registry, provider, nil),
		Resolver:  authz.NewResolver(provider),
		Sequences: gen,
		AuthUC:    auth.NewAuthUseCase(provider, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		CompanyUC: usecase.NewCompanyUseCase(provider, nil),
		ContactUC: usecase.NewContactUseCase(provider, gen, nil),
		RoleUC:    usecase.NewRoleUseCase(provider, nil),
		UserUC:    usecase.NewUserUseCase(provider, nil),
		TenantUC:  usecase.NewTenantUseCase(tenants, nil),
		Tenancy:   tenancyCfg,
		JWTSecret: testJWTSecret,
	})
	return &testEnv{app: app, store: store, tenant: tenant}
}

// tokenFor genera un JWT del tenant t1 para el usuario, con empresa preferida opcional.
func tokenFor(t *testing.T, userID, companyID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, "t1", companyID, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func (e *testEnv) activateContacts(t *testing.T) {
	t.Helper()
	require.NoError(t, e.store.Modules().Upsert(context.Background(), &entity.TenantModule{
		ID: "m-contacts", Module: contacts.ID, IsActive: true, Plan: "free",
	}))
}

type request struct {
	method  string
	host    string
	path    string
	auth    string
	body    any
	headers map[string]string
}

// doRequest ejecuta el request y decodifica el cuerpo JSON (si lo hay).
func doRequest(t *testing.T, app *fiber.App, r request) (int, map[string]any) {
	t.Helper()
	var body io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	host := r.host
	if host == "" {
		host = testHost
	}
	req := httptest.NewRequest(r.method, "http://"+host+r.path, body)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.auth != "" {
		req.Header.Set("Authorization", r.auth)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolución de tenant
// ──────────────────────────────────────────────────────────────────────────────

func TestTenant_HostDesconocido(t *testing.T) {
	env := buildTestApp(t)
	status, body := doRequest(t, env.app, request{method: http.MethodPost, host: "nadie.test", path: "/api/auth/login"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "TENANT_NOT_FOUND", body["code"])
}

func TestTenant_Inactivo(t *testing.T) {
	env := buildTestApp(t)
	status, body := doRequest(t, env.app, request{method: http.MethodPost, host: "old.test", path: "/api/auth/login"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "TENANT_INACTIVE", body["code"])
}

func TestTenant_HostConPuerto(t *testing.T) {
	env := buildTestApp(t)
	status, _ := doRequest(t, env.app, request{method: http.MethodGet, host: testHost + ":8080", path: "/api/me", auth: tokenFor(t, "viewer", "")})
	assert.Equal(t, http.StatusOK, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_SinToken(t *testing.T) {
	env := buildTestApp(t)
	status, body := doRequest(t, env.app, request{method: http.MethodGet, path: "/api/me"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", body["code"])
}

func TestAuth_FormatoInvalido(t *testing.T) {
	env := buildTestApp(t)
	status, body := doRequest(t, env.app, request{method: http.MethodGet, path: "/api/me", auth: "Token abc"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", body["code"])
}

func TestAuth_FirmaIncorrecta(t *testing.T) {
	env := buildTestApp(t)
	tok, err := pkgjwt.Generate("otra-clave", "viewer", "t1", "", testIssuer, testExpMin)
	require.NoError(t, err)
	status, body := doRequest(t, env.app, request{method: http.MethodGet, path: "/api/me", auth: "Bearer " + tok})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", body["code"])
}

func TestAuth_TokenDeOtroTenant(t *testing.T) {
	env := buildTestApp(t)
	tok, err := pkgjwt.Generate(testJWTSecret, "viewer", "t9", "", testIssuer, testExpMin)
	require.NoError(t, err)
	status, body := doRequest(t, env.app, request{method: http.MethodGet, path: "/api/me", auth: "Bearer " + tok})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", body["code"])
}

func TestAuth_UsuarioInexistente(t *testing.T) {
	env := buildTestApp(t)
	status, body := doRequest(t, env.app, request{method: http.MethodGet, path: "/api/me", auth: tokenFor(t, "fantasma", "")})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "USER_INACTIVE", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Login
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_Exitoso(t *testing.T) {
	env := buildTestApp(t)
	status, body := doRequest(t, env.app, request{method: http.MethodPost, path: "/api/auth/login",
		body: map[string]string{"email": "Viewer@Acme.test", "password": "secret123"}})
	require.Equal(t, http.StatusOK, status)
	tok, _ := body["token"].(string)
	claims, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "viewer", claims.UserID)
	assert.Equal(t, "t1", claims.TenantID)
}

func TestLogin_Fallido(t *testing.T) {
	env := buildTestApp(t)
	tests := []struct {
		name     string
		body     map[string]string
		wantCode int
		code     string
	}{
		{"password incorrecta", map[string]string{"email": "viewer@acme.test", "password": "otra-cosa"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"email desconocido", map[string]string{"email": "nadie@acme.test", "password": "secret123"}, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"campos vacíos", map[string]string{"email": ""}, http.StatusBadRequest, "VALIDATION"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doRequest(t, env.app, request{method: http.MethodPost, path: "/api/auth/login", body: tc.body})
			assert.Equal(t, tc.wantCode, status)
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func newGet(t *testing.T, path, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "http://"+testHost+path, nil)
	req.Header.Set("Authorization", token)
	return req
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}
