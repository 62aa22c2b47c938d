package tenancy

import (
	"context"
	"sync"

	"github.com/jhoicas/erp-core/internal/domain/entity"
)

// contextKey tipo privado para evitar colisiones con claves de otras librerías.
type contextKey int

const (
	companyContextKey contextKey = iota
	tenantKey
	userKey
)

// CompanyContext guarda la empresa activa durante un request.
// Se crea por request con WithCompanyContext y viaja en el context.Context.
// Todos los métodos aceptan receptor nil: un contexto sin holder equivale a "sin empresa activa".
type CompanyContext struct {
	mu      sync.RWMutex
	company *entity.Company
}

// Set fija la empresa activa. Set(nil) equivale a Reset.
func (c *CompanyContext) Set(company *entity.Company) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.company = company
	c.mu.Unlock()
}

// Get devuelve la empresa activa o nil.
func (c *CompanyContext) Get() *entity.Company {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.company
}

// ID devuelve el ID de la empresa activa o "" si no hay.
func (c *CompanyContext) ID() string {
	if company := c.Get(); company != nil {
		return company.ID
	}
	return ""
}

// Check indica si hay empresa activa.
func (c *CompanyContext) Check() bool {
	return c.Get() != nil
}

// Reset elimina la empresa activa.
func (c *CompanyContext) Reset() {
	c.Set(nil)
}

// CurrencyCode moneda de la empresa activa; EUR si no hay empresa o no tiene moneda.
func (c *CompanyContext) CurrencyCode() string {
	if company := c.Get(); company != nil && company.CurrencyCode != "" {
		return company.CurrencyCode
	}
	return entity.DefaultCurrencyCode
}

// WithCompanyContext adjunta un holder vacío al contexto.
func WithCompanyContext(ctx context.Context) (context.Context, *CompanyContext) {
	holder := &CompanyContext{}
	return context.WithValue(ctx, companyContextKey, holder), holder
}

// WithCompany adjunta un holder ya inicializado con company (jobs, tests, tareas de fondo).
func WithCompany(ctx context.Context, company *entity.Company) context.Context {
	ctx, holder := WithCompanyContext(ctx)
	holder.Set(company)
	return ctx
}

// CompanyContextFrom devuelve el holder del contexto o nil.
func CompanyContextFrom(ctx context.Context) *CompanyContext {
	if ctx == nil {
		return nil
	}
	holder, _ := ctx.Value(companyContextKey).(*CompanyContext)
	return holder
}

// ActiveCompany devuelve la empresa activa del contexto o nil.
func ActiveCompany(ctx context.Context) *entity.Company {
	return CompanyContextFrom(ctx).Get()
}

// ActiveCompanyID devuelve el ID de la empresa activa o "".
func ActiveCompanyID(ctx context.Context) string {
	return CompanyContextFrom(ctx).ID()
}

// WithTenant adjunta el tenant resuelto al contexto.
func WithTenant(ctx context.Context, tenant *entity.Tenant) context.Context {
	return context.WithValue(ctx, tenantKey, tenant)
}

// TenantFromContext devuelve el tenant resuelto o nil.
func TenantFromContext(ctx context.Context) *entity.Tenant {
	if ctx == nil {
		return nil
	}
	tenant, _ := ctx.Value(tenantKey).(*entity.Tenant)
	return tenant
}

// WithUser adjunta el usuario autenticado al contexto.
func WithUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext devuelve el usuario autenticado o nil.
func UserFromContext(ctx context.Context) *entity.User {
	if ctx == nil {
		return nil
	}
	user, _ := ctx.Value(userKey).(*entity.User)
	return user
}
