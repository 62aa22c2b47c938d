package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/internal/modules/settings"
)

// installModules módulos que quedan activos en un tenant recién instalado.
var installModules = []string{settings.ID}

// systemRoles roles sembrados en cada tenant. Solo admin trae permisos: el resto se configura.
var systemRoles = []entity.Role{
	{Name: "Administrator", Slug: entity.RoleAdmin, Description: "Full access to all modules and settings.", Permissions: []string{entity.PermissionWildcard}},
	{Name: "Manager", Slug: entity.RoleManager, Description: "Can manage most operations within assigned modules."},
	{Name: "Employee", Slug: entity.RoleEmployee, Description: "Basic access to assigned modules."},
	{Name: "Viewer", Slug: entity.RoleViewer, Description: "Read-only access."},
}

// InstallRequest datos de la primera empresa y su administrador.
type InstallRequest struct {
	Company dto.CreateCompanyRequest
	Admin   dto.CreateUserRequest
}

// SetupUseCase prepara la base de un tenant recién migrado.
type SetupUseCase struct {
	stores repository.StoreProvider
	now    func() time.Time
}

// NewSetupUseCase construye el caso de uso.
func NewSetupUseCase(stores repository.StoreProvider) *SetupUseCase {
	return &SetupUseCase{stores: stores, now: time.Now}
}

// SeedSystemRoles crea los roles de sistema que falten. Idempotente.
func (uc *SetupUseCase) SeedSystemRoles(ctx context.Context) error {
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return err
	}
	return store.WithinTx(ctx, func(tx repository.Store) error {
		return uc.seedRoles(ctx, tx)
	})
}

// Install siembra los roles, crea la primera empresa y un superadmin con rol admin global
// y esa empresa por defecto, y activa los módulos base. Todo o nada.
func (uc *SetupUseCase) Install(ctx context.Context, in InstallRequest) (*entity.Company, *entity.User, error) {
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return nil, nil, err
	}
	now := uc.now()
	company := &entity.Company{
		ID:              uuid.New().String(),
		Name:            in.Company.Name,
		LegalName:       in.Company.LegalName,
		TaxID:           in.Company.TaxID,
		CurrencyCode:    orDefault(in.Company.CurrencyCode, entity.DefaultCurrencyCode),
		CountryCode:     orDefault(in.Company.CountryCode, entity.DefaultCountryCode),
		Locale:          orDefault(in.Company.Locale, entity.DefaultLocale),
		Timezone:        orDefault(in.Company.Timezone, entity.DefaultTimezone),
		FiscalYearStart: 1,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := validateCompany(company); err != nil {
		return nil, nil, err
	}
	admin, err := newUser(in.Admin, now)
	if err != nil {
		return nil, nil, err
	}
	admin.IsSuperadmin = true

	err = store.WithinTx(ctx, func(tx repository.Store) error {
		if err := uc.seedRoles(ctx, tx); err != nil {
			return err
		}
		if err := tx.Companies().Create(ctx, company); err != nil {
			return fmt.Errorf("crear empresa: %w", err)
		}
		if err := tx.Users().Create(ctx, admin); err != nil {
			return fmt.Errorf("crear administrador: %w", err)
		}
		if err := tx.Memberships().Attach(ctx, entity.Membership{CompanyID: company.ID, UserID: admin.ID, CreatedAt: now}); err != nil {
			return err
		}
		if err := tx.Memberships().SetDefault(ctx, admin.ID, company.ID); err != nil {
			return err
		}
		for _, id := range installModules {
			existing, err := tx.Modules().Get(ctx, id)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			if err := tx.Modules().Upsert(ctx, &entity.TenantModule{
				ID: uuid.New().String(), Module: id, IsActive: true, Plan: "free",
				ActivatedAt: &now, CreatedAt: now, UpdatedAt: now,
			}); err != nil {
				return fmt.Errorf("activar módulo %s: %w", id, err)
			}
		}
		role, err := tx.Roles().GetBySlug(ctx, entity.RoleAdmin)
		if err != nil {
			return err
		}
		return tx.Roles().Assign(ctx, entity.RoleAssignment{UserID: admin.ID, RoleID: role.ID, CreatedAt: now})
	})
	if err != nil {
		return nil, nil, err
	}
	return company, admin, nil
}

func (uc *SetupUseCase) seedRoles(ctx context.Context, tx repository.Store) error {
	now := uc.now()
	for _, def := range systemRoles {
		existing, err := tx.Roles().GetBySlug(ctx, def.Slug)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		role := def
		role.ID = uuid.New().String()
		role.IsSystem = true
		role.Permissions = append([]string{}, def.Permissions...)
		role.CreatedAt = now
		role.UpdatedAt = now
		if err := tx.Roles().Create(ctx, &role); err != nil {
			return fmt.Errorf("sembrar rol %s: %w", def.Slug, err)
		}
	}
	return nil
}
