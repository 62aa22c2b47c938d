package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/jhoicas/erp-core/internal/application/audit"
	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/tenancy"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// CompanyUseCase aplica reglas de negocio para empresas y membresías.
type CompanyUseCase struct {
	stores   repository.StoreProvider
	observer audit.Observer
	now      func() time.Time
}

// NewCompanyUseCase construye el caso de uso. observer nil equivale a audit.Nop.
func NewCompanyUseCase(stores repository.StoreProvider, observer audit.Observer) *CompanyUseCase {
	if observer == nil {
		observer = audit.Nop{}
	}
	return &CompanyUseCase{stores: stores, observer: observer, now: time.Now}
}

// Create crea una empresa. Respeta el máximo de empresas del plan del tenant.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	tenant := tenancy.TenantFromContext(ctx)
	if tenant == nil {
		return nil, domain.ErrTenantNotResolved
	}
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	company := &entity.Company{
		ID:              uuid.New().String(),
		Name:            strings.TrimSpace(in.Name),
		LegalName:       in.LegalName,
		TaxID:           in.TaxID,
		CurrencyCode:    orDefault(strings.ToUpper(in.CurrencyCode), entity.DefaultCurrencyCode),
		CountryCode:     orDefault(strings.ToUpper(in.CountryCode), entity.DefaultCountryCode),
		Locale:          orDefault(in.Locale, entity.DefaultLocale),
		Timezone:        orDefault(in.Timezone, entity.DefaultTimezone),
		FiscalYearStart: in.FiscalYearStart,
		Settings:        in.Settings,
		IsActive:        true,
		ParentID:        emptyToNil(in.ParentID),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if company.FiscalYearStart == 0 {
		company.FiscalYearStart = 1
	}
	if err := validateCompany(company); err != nil {
		return nil, err
	}

	err = store.WithinTx(ctx, func(tx repository.Store) error {
		count, err := tx.Companies().Count(ctx)
		if err != nil {
			return fmt.Errorf("contar empresas: %w", err)
		}
		if !tenant.CanAddCompany(count) {
			return fmt.Errorf("%w: máximo %d empresas", domain.ErrLimitExceeded, tenant.MaxCompanies)
		}
		if err := checkParent(ctx, tx.Companies(), company); err != nil {
			return err
		}
		return tx.Companies().Create(ctx, company)
	})
	if err != nil {
		return nil, err
	}
	audit.Record(ctx, uc.observer, audit.Mutation{
		Event: audit.EventCreated, Entity: "company", EntityID: company.ID, CompanyID: company.ID,
		New: companyAttributes(company),
	})
	return ToCompanyResponse(company), nil
}

// GetByID obtiene una empresa por ID. nil, nil si no existe.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return nil, err
	}
	company, err := store.Companies().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToCompanyResponse(company), nil
}

// List lista las empresas del tenant.
func (uc *CompanyUseCase) List(ctx context.Context, activeOnly bool) (*dto.CompanyListResponse, error) {
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return nil, err
	}
	list, err := store.Companies().List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *ToCompanyResponse(c))
	}
	return &dto.CompanyListResponse{Items: items}, nil
}

// Update aplica los campos presentes. La jerarquía resultante debe seguir siendo un árbol.
func (uc *CompanyUseCase) Update(ctx context.Context, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return nil, err
	}
	var before map[string]any
	var company *entity.Company
	err = store.WithinTx(ctx, func(tx repository.Store) error {
		found, err := tx.Companies().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if found == nil {
			return domain.ErrNotFound
		}
		company = found
		before = companyAttributes(company)
		applyCompanyUpdate(company, in)
		company.UpdatedAt = uc.now()
		if err := validateCompany(company); err != nil {
			return err
		}
		if err := checkParent(ctx, tx.Companies(), company); err != nil {
			return err
		}
		return tx.Companies().Update(ctx, company)
	})
	if err != nil {
		return nil, err
	}
	audit.Record(ctx, uc.observer, audit.Mutation{
		Event: audit.EventUpdated, Entity: "company", EntityID: company.ID, CompanyID: company.ID,
		Old: before, New: companyAttributes(company),
	})
	return ToCompanyResponse(company), nil
}

// Deactivate desactiva la empresa. Las empresas nunca se borran físicamente.
func (uc *CompanyUseCase) Deactivate(ctx context.Context, id string) error {
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return err
	}
	company, err := store.Companies().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if company == nil {
		return domain.ErrNotFound
	}
	if !company.IsActive {
		return nil
	}
	company.IsActive = false
	company.UpdatedAt = uc.now()
	if err := store.Companies().Update(ctx, company); err != nil {
		return err
	}
	audit.Record(ctx, uc.observer, audit.Mutation{
		Event: audit.EventUpdated, Entity: "company", EntityID: company.ID, CompanyID: company.ID,
		Old: map[string]any{"is_active": true}, New: map[string]any{"is_active": false},
	})
	return nil
}

// AttachUser asocia un usuario a la empresa (idempotente), opcionalmente como empresa por defecto
// y con un rol acotado a la empresa.
func (uc *CompanyUseCase) AttachUser(ctx context.Context, companyID string, in dto.AttachUserRequest) error {
	if in.UserID == "" {
		return fmt.Errorf("%w: user_id es obligatorio", domain.ErrInvalidInput)
	}
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return err
	}
	return store.WithinTx(ctx, func(tx repository.Store) error {
		company, err := tx.Companies().GetByID(ctx, companyID)
		if err != nil {
			return err
		}
		user, err := tx.Users().GetByID(ctx, in.UserID)
		if err != nil {
			return err
		}
		if company == nil || user == nil {
			return domain.ErrNotFound
		}
		if err := tx.Memberships().Attach(ctx, entity.Membership{
			CompanyID: companyID, UserID: user.ID, CreatedAt: uc.now(),
		}); err != nil {
			return err
		}
		if in.IsDefault {
			if err := tx.Memberships().SetDefault(ctx, user.ID, companyID); err != nil {
				return err
			}
		}
		if in.RoleID == "" {
			return nil
		}
		role, err := tx.Roles().GetByID(ctx, in.RoleID)
		if err != nil {
			return err
		}
		if role == nil {
			return fmt.Errorf("rol %s: %w", in.RoleID, domain.ErrNotFound)
		}
		cid := companyID
		return tx.Roles().Assign(ctx, entity.RoleAssignment{
			UserID: user.ID, RoleID: role.ID, CompanyID: &cid, CreatedAt: uc.now(),
		})
	})
}

// DetachUser quita la membresía. domain.ErrNotFound si no existía.
func (uc *CompanyUseCase) DetachUser(ctx context.Context, companyID, userID string) error {
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return err
	}
	return store.Memberships().Detach(ctx, companyID, userID)
}

// SetDefault marca la empresa por defecto del usuario. Exige membresía.
func (uc *CompanyUseCase) SetDefault(ctx context.Context, userID, companyID string) error {
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return err
	}
	return store.Memberships().SetDefault(ctx, userID, companyID)
}

// Memberships empresas activas del usuario, marcando la por defecto y la activa del request.
func (uc *CompanyUseCase) Memberships(ctx context.Context, user *entity.User) ([]dto.MembershipResponse, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return nil, err
	}
	ms, err := store.Memberships().ListForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	current := tenancy.ActiveCompanyID(ctx)
	out := make([]dto.MembershipResponse, 0, len(ms))
	for _, m := range ms {
		company, err := store.Companies().GetByID(ctx, m.CompanyID)
		if err != nil {
			return nil, err
		}
		if company == nil || !company.IsActive {
			continue
		}
		out = append(out, dto.MembershipResponse{
			Company:   *ToCompanyResponse(company),
			IsDefault: m.IsDefault,
			IsActive:  company.ID == current,
		})
	}
	return out, nil
}

// Switch valida que el usuario puede operar en companyID y la fija como activa en el contexto.
// Un superadmin puede cambiar a cualquier empresa activa.
func (uc *CompanyUseCase) Switch(ctx context.Context, user *entity.User, companyID string) (*entity.Company, error) {
	if companyID == "" {
		return nil, fmt.Errorf("%w: company_id es obligatorio", domain.ErrInvalidInput)
	}
	company, err := uc.accessible(ctx, user, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("empresa %s: %w", companyID, domain.ErrForbidden)
	}
	if holder := tenancy.CompanyContextFrom(ctx); holder != nil {
		holder.Set(company)
	}
	return company, nil
}

// ResolveActive elige la empresa activa del request: la primera preferencia accesible
// (cabecera, token), luego la empresa por defecto y luego la primera membresía.
// Una preferencia inaccesible se ignora. nil, nil si el usuario no tiene ninguna empresa activa.
func (uc *CompanyUseCase) ResolveActive(ctx context.Context, user *entity.User, preferred ...string) (*entity.Company, error) {
	if user == nil {
		return nil, nil
	}
	for _, id := range preferred {
		if id == "" {
			continue
		}
		company, err := uc.accessible(ctx, user, id)
		if err != nil {
			return nil, err
		}
		if company != nil {
			return company, nil
		}
	}
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return nil, err
	}
	ms, err := store.Memberships().ListForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	// la por defecto primero, el resto en orden de alta
	ordered := make([]entity.Membership, 0, len(ms))
	for _, m := range ms {
		if m.IsDefault {
			ordered = append(ordered, m)
		}
	}
	for _, m := range ms {
		if !m.IsDefault {
			ordered = append(ordered, m)
		}
	}
	for _, m := range ordered {
		company, err := store.Companies().GetByID(ctx, m.CompanyID)
		if err != nil {
			return nil, err
		}
		if company != nil && company.IsActive {
			return company, nil
		}
	}
	return nil, nil
}

// accessible devuelve la empresa si existe, está activa y el usuario pertenece a ella (o es superadmin).
func (uc *CompanyUseCase) accessible(ctx context.Context, user *entity.User, companyID string) (*entity.Company, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return nil, err
	}
	company, err := store.Companies().GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil || !company.IsActive {
		return nil, nil
	}
	if user.IsSuperadmin {
		return company, nil
	}
	m, err := store.Memberships().Get(ctx, user.ID, companyID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	return company, nil
}

// checkParent exige que el padre exista y que no sea la propia empresa ni un descendiente.
func checkParent(ctx context.Context, repo repository.CompanyRepository, c *entity.Company) error {
	if c.ParentID == nil {
		return nil
	}
	seen := map[string]bool{c.ID: true}
	next := *c.ParentID
	for next != "" {
		if seen[next] {
			return domain.ErrCompanyCycle
		}
		seen[next] = true
		parent, err := repo.GetByID(ctx, next)
		if err != nil {
			return err
		}
		if parent == nil {
			return fmt.Errorf("empresa padre %s: %w", next, domain.ErrNotFound)
		}
		next = ""
		if parent.ParentID != nil {
			next = *parent.ParentID
		}
	}
	return nil
}

func validateCompany(c *entity.Company) error {
	switch {
	case c.Name == "" || len(c.Name) > 255:
		return fmt.Errorf("%w: name es obligatorio (máx. 255)", domain.ErrInvalidInput)
	case !isLetters(c.CurrencyCode, 3):
		return fmt.Errorf("%w: currency_code debe tener 3 letras", domain.ErrInvalidInput)
	case !isLetters(c.CountryCode, 2):
		return fmt.Errorf("%w: country_code debe tener 2 letras", domain.ErrInvalidInput)
	case c.FiscalYearStart < 1 || c.FiscalYearStart > 12:
		return fmt.Errorf("%w: fiscal_year_start debe estar entre 1 y 12", domain.ErrInvalidInput)
	}
	if _, err := language.Parse(strings.ReplaceAll(c.Locale, "_", "-")); err != nil {
		return fmt.Errorf("%w: locale %q", domain.ErrInvalidInput, c.Locale)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q", domain.ErrInvalidInput, c.Timezone)
	}
	return nil
}

func applyCompanyUpdate(c *entity.Company, in dto.UpdateCompanyRequest) {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.LegalName != nil {
		c.LegalName = *in.LegalName
	}
	if in.TaxID != nil {
		c.TaxID = *in.TaxID
	}
	if in.CurrencyCode != nil {
		c.CurrencyCode = strings.ToUpper(*in.CurrencyCode)
	}
	if in.CountryCode != nil {
		c.CountryCode = strings.ToUpper(*in.CountryCode)
	}
	if in.Locale != nil {
		c.Locale = *in.Locale
	}
	if in.Timezone != nil {
		c.Timezone = *in.Timezone
	}
	if in.FiscalYearStart != nil {
		c.FiscalYearStart = *in.FiscalYearStart
	}
	if in.Settings != nil {
		c.Settings = in.Settings
	}
	if in.ParentID != nil {
		c.ParentID = emptyToNil(in.ParentID)
	}
}

func isLetters(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func companyAttributes(c *entity.Company) map[string]any {
	return map[string]any{
		"name":              c.Name,
		"legal_name":        c.LegalName,
		"tax_id":            c.TaxID,
		"currency_code":     c.CurrencyCode,
		"country_code":      c.CountryCode,
		"locale":            c.Locale,
		"timezone":          c.Timezone,
		"fiscal_year_start": c.FiscalYearStart,
		"is_active":         c.IsActive,
		"parent_id":         c.ParentID,
	}
}

// ToCompanyResponse convierte la entidad en su DTO de salida. nil si c es nil.
func ToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	settings := c.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	return &dto.CompanyResponse{
		ID:              c.ID,
		Name:            c.Name,
		LegalName:       c.LegalName,
		TaxID:           c.TaxID,
		CurrencyCode:    c.CurrencyCode,
		CountryCode:     c.CountryCode,
		Locale:          c.Locale,
		Timezone:        c.Timezone,
		FiscalYearStart: c.FiscalYearStart,
		Settings:        settings,
		IsActive:        c.IsActive,
		ParentID:        c.ParentID,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
