package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-core/internal/application/auth"
	"github.com/jhoicas/erp-core/internal/application/authz"
	"github.com/jhoicas/erp-core/internal/application/modules"
	"github.com/jhoicas/erp-core/internal/application/sequence"
	"github.com/jhoicas/erp-core/internal/application/usecase"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/internal/modules/contacts"
	"github.com/jhoicas/erp-core/pkg/config"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Tenants   repository.TenantRepository
	Stores    repository.StoreProvider
	Registry  *modules.Registry
	Modules   *modules.Service
	Resolver  *authz.Resolver
	Sequences *sequence.Generator
	AuthUC    *auth.AuthUseCase
	CompanyUC *usecase.CompanyUseCase
	ContactUC *usecase.ContactUseCase
	RoleUC    *usecase.RoleUseCase
	UserUC    *usecase.UserUseCase
	TenantUC  *usecase.TenantUseCase
	Tenancy   config.TenancyConfig
	JWTSecret string
}

// Router registra las rutas de la API. TenantMiddleware debe ir antes (ver cmd/api).
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Landlord (dominio central, clave de landlord)
	landlord := api.Group("/landlord", RequireCentral(deps.Tenancy))
	landlordHandler := NewLandlordHandler(deps.Tenants, deps.TenantUC, deps.Modules)
	landlord.Get("/tenants", landlordHandler.List)
	landlord.Put("/tenants/:id", landlordHandler.Update)
	landlord.Post("/tenants/:id/deactivate", landlordHandler.Deactivate)
	landlord.Get("/tenants/:id/modules", landlordHandler.Modules)
	landlord.Put("/tenants/:id/modules", landlordHandler.UpdateModules)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.CompanyUC, deps.Resolver)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas: token, usuario y empresa activa
	protected := api.Group("/",
		AuthMiddleware(deps.JWTSecret),
		LoadUser(deps.Stores),
		ResolveCompany(deps.CompanyUC),
	)
	perm := func(p ...string) fiber.Handler { return RequirePermission(deps.Resolver, p...) }

	protected.Get("/me", authHandler.Me)
	protected.Get("/me/permissions", authHandler.Permissions)
	protected.Get("/me/companies", authHandler.Companies)
	protected.Post("/me/company", authHandler.SwitchCompany)

	navHandler := NewNavigationHandler(deps.Registry)
	protected.Get("/navigation", navHandler.Navigation)
	protected.Get("/dashboard/widgets", navHandler.Widgets)

	// Companies
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	protected.Get("/companies", perm(authz.PermCompaniesView), companyHandler.List)
	protected.Post("/companies", perm(authz.PermCompaniesManage), companyHandler.Create)
	protected.Get("/companies/:id", perm(authz.PermCompaniesView), companyHandler.GetByID)
	protected.Put("/companies/:id", perm(authz.PermCompaniesManage), companyHandler.Update)
	protected.Post("/companies/:id/deactivate", perm(authz.PermCompaniesManage), companyHandler.Deactivate)
	protected.Post("/companies/:id/users", perm(authz.PermUsersManage), companyHandler.AttachUser)
	protected.Delete("/companies/:id/users/:userId", perm(authz.PermUsersManage), companyHandler.DetachUser)

	// Users
	userHandler := NewUserHandler(deps.UserUC)
	protected.Post("/users", perm(authz.PermUsersManage), userHandler.Create)
	protected.Get("/users/:id", perm(authz.PermUsersManage), userHandler.GetByID)

	// Roles y catálogo de permisos
	roleHandler := NewRoleHandler(deps.RoleUC, deps.Registry)
	protected.Get("/permissions", perm(authz.PermRolesManage), roleHandler.Catalog)
	protected.Get("/roles", perm(authz.PermRolesManage), roleHandler.List)
	protected.Post("/roles", perm(authz.PermRolesManage), roleHandler.Create)
	protected.Delete("/roles/:id", perm(authz.PermRolesManage), roleHandler.Delete)
	protected.Post("/roles/:id/assign", perm(authz.PermRolesManage), roleHandler.Assign)

	// Sequences
	sequenceHandler := NewSequenceHandler(deps.Sequences)
	protected.Get("/sequences/:type/preview", perm(authz.PermSequencesView), sequenceHandler.Preview)
	protected.Post("/sequences/:type/next", perm(authz.PermSequencesManage), sequenceHandler.Next)

	// Contacts (módulo contacts)
	contactsGroup := protected.Group("/contacts", RequireModule(deps.Registry, contacts.ID))
	contactHandler := NewContactHandler(deps.ContactUC)
	contactsGroup.Get("/", perm(contacts.PermView), contactHandler.List)
	contactsGroup.Post("/", perm(contacts.PermCreate), contactHandler.Create)
	contactsGroup.Get("/:id", perm(contacts.PermView), contactHandler.GetByID)
	contactsGroup.Put("/:id", perm(contacts.PermEdit), contactHandler.Update)
	contactsGroup.Delete("/:id", perm(contacts.PermDelete), contactHandler.Delete)
}
