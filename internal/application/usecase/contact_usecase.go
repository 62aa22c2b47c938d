package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/erp-core/internal/application/audit"
	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/sequence"
	"github.com/jhoicas/erp-core/internal/application/tenancy"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// ContactUseCase casos de uso del módulo de contactos. Todo acceso va acotado a la empresa activa.
type ContactUseCase struct {
	stores    repository.StoreProvider
	sequences *sequence.Generator
	observer  audit.Observer
	now       func() time.Time
}

// NewContactUseCase construye el caso de uso. observer nil equivale a audit.Nop.
func NewContactUseCase(stores repository.StoreProvider, sequences *sequence.Generator, observer audit.Observer) *ContactUseCase {
	if observer == nil {
		observer = audit.Nop{}
	}
	return &ContactUseCase{stores: stores, sequences: sequences, observer: observer, now: time.Now}
}

// Create da de alta el contacto en la empresa activa. El código se reserva en la misma
// transacción que la fila: si la inserción falla, el número no se consume.
func (uc *ContactUseCase) Create(ctx context.Context, in dto.CreateContactRequest) (*dto.ContactResponse, error) {
	if err := validateContact(in); err != nil {
		return nil, err
	}
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return nil, err
	}
	var contact *entity.Contact
	err = uc.sequences.Retry(ctx, func(ctx context.Context) error {
		now := uc.now()
		c := &entity.Contact{
			ID:             uuid.New().String(),
			Type:           in.Type,
			FirstName:      strings.TrimSpace(in.FirstName),
			LastName:       strings.TrimSpace(in.LastName),
			JobTitle:       in.JobTitle,
			OrganizationID: emptyToNil(in.OrganizationID),
			Name:           strings.TrimSpace(in.Name),
			Industry:       in.Industry,
			Email:          strings.ToLower(strings.TrimSpace(in.Email)),
			Phone:          in.Phone,
			Mobile:         in.Mobile,
			Website:        in.Website,
			Notes:          in.Notes,
			Tags:           in.Tags,
			IsActive:       true,
			Source:         in.Source,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tenancy.StampCompany(ctx, c); err != nil {
			return err
		}
		err := store.WithinTx(ctx, func(tx repository.Store) error {
			if err := checkOrganization(ctx, tx, c.CompanyID, c.OrganizationID); err != nil {
				return err
			}
			if err := uc.sequences.Assign(ctx, tx.Sequences(), c); err != nil {
				return err
			}
			return tx.Contacts().Create(ctx, c)
		})
		if err != nil {
			return err
		}
		contact = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	audit.Record(ctx, uc.observer, audit.Mutation{
		Event: audit.EventCreated, Entity: "contact", EntityID: contact.ID, CompanyID: contact.CompanyID,
		New: contactAttributes(contact),
	})
	return entityToContactResponse(contact), nil
}

// GetByID obtiene un contacto de la empresa activa. nil, nil si no existe o es de otra empresa.
func (uc *ContactUseCase) GetByID(ctx context.Context, id string) (*dto.ContactResponse, error) {
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return nil, err
	}
	scope, err := activeScope(ctx)
	if err != nil {
		return nil, err
	}
	c, err := store.Contacts().GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	return entityToContactResponse(c), nil
}

// List lista los contactos de la empresa activa, más recientes primero.
func (uc *ContactUseCase) List(ctx context.Context, in dto.ContactListRequest) (*dto.ContactListResponse, error) {
	in.DefaultPage()
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return nil, err
	}
	scope, err := activeScope(ctx)
	if err != nil {
		return nil, err
	}
	list, err := store.Contacts().List(ctx, scope, repository.ContactFilter{
		Type: in.Type, Search: strings.TrimSpace(in.Search), Limit: in.Limit, Offset: in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ContactResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToContactResponse(c))
	}
	return &dto.ContactListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// Update reemplaza los datos de un contacto de la empresa activa. La empresa y el código no cambian.
// Un contacto de otra empresa se trata como inexistente.
func (uc *ContactUseCase) Update(ctx context.Context, id string, in dto.UpdateContactRequest) (*dto.ContactResponse, error) {
	if err := validateContact(in.CreateContactRequest); err != nil {
		return nil, err
	}
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return nil, err
	}
	scope, err := activeScope(ctx)
	if err != nil {
		return nil, err
	}
	var before, after *entity.Contact
	err = store.WithinTx(ctx, func(tx repository.Store) error {
		c, err := tx.Contacts().GetByID(ctx, scope, id)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrNotFound
		}
		old := *c
		orgID := emptyToNil(in.OrganizationID)
		if orgID != nil && *orgID == c.ID {
			return fmt.Errorf("%w: un contacto no pertenece a sí mismo", domain.ErrInvalidInput)
		}
		if err := checkOrganization(ctx, tx, c.CompanyID, orgID); err != nil {
			return err
		}
		c.Type = in.Type
		c.FirstName = strings.TrimSpace(in.FirstName)
		c.LastName = strings.TrimSpace(in.LastName)
		c.JobTitle = in.JobTitle
		c.OrganizationID = orgID
		c.Name = strings.TrimSpace(in.Name)
		c.Industry = in.Industry
		c.Email = strings.ToLower(strings.TrimSpace(in.Email))
		c.Phone = in.Phone
		c.Mobile = in.Mobile
		c.Website = in.Website
		c.Notes = in.Notes
		c.Tags = in.Tags
		c.Source = in.Source
		if in.IsActive != nil {
			c.IsActive = *in.IsActive
		}
		c.UpdatedAt = uc.now()
		if err := tx.Contacts().Update(ctx, scope, c); err != nil {
			return err
		}
		before, after = &old, c
		return nil
	})
	if err != nil {
		return nil, err
	}
	audit.Record(ctx, uc.observer, audit.Mutation{
		Event: audit.EventUpdated, Entity: "contact", EntityID: after.ID, CompanyID: after.CompanyID,
		Old: contactAttributes(before), New: contactAttributes(after),
	})
	return entityToContactResponse(after), nil
}

// Delete elimina un contacto de la empresa activa.
func (uc *ContactUseCase) Delete(ctx context.Context, id string) error {
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return err
	}
	scope, err := activeScope(ctx)
	if err != nil {
		return err
	}
	c, err := store.Contacts().GetByID(ctx, scope, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	if err := store.Contacts().Delete(ctx, scope, id); err != nil {
		return err
	}
	audit.Record(ctx, uc.observer, audit.Mutation{
		Event: audit.EventDeleted, Entity: "contact", EntityID: c.ID, CompanyID: c.CompanyID,
		Old: contactAttributes(c),
	})
	return nil
}

// activeScope exige empresa activa: las lecturas de la API nunca van sin acotar.
func activeScope(ctx context.Context) (repository.Scope, error) {
	scope := tenancy.ScopeFromContext(ctx)
	if _, ok := scope.CompanyID(); !ok {
		return scope, domain.ErrMissingTenantContext
	}
	return scope, nil
}

// checkOrganization exige que orgID, si viene, sea una organización de la misma empresa.
func checkOrganization(ctx context.Context, tx repository.Store, companyID string, orgID *string) error {
	if orgID == nil {
		return nil
	}
	org, err := tx.Contacts().GetByID(ctx, tenancy.ForCompany(companyID), *orgID)
	if err != nil {
		return err
	}
	if org == nil || org.Type != entity.ContactOrganization {
		return fmt.Errorf("%w: organization_id no es una organización de la empresa", domain.ErrInvalidInput)
	}
	return nil
}

func validateContact(in dto.CreateContactRequest) error {
	switch in.Type {
	case entity.ContactPerson:
		if strings.TrimSpace(in.FirstName) == "" {
			return fmt.Errorf("%w: first_name es obligatorio para personas", domain.ErrInvalidInput)
		}
	case entity.ContactOrganization:
		if strings.TrimSpace(in.Name) == "" {
			return fmt.Errorf("%w: name es obligatorio para organizaciones", domain.ErrInvalidInput)
		}
		if in.OrganizationID != nil && *in.OrganizationID != "" {
			return fmt.Errorf("%w: una organización no pertenece a otra", domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: type debe ser person u organization", domain.ErrInvalidInput)
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	return nil
}

func contactAttributes(c *entity.Contact) map[string]any {
	return map[string]any{
		"code":            c.Code,
		"type":            c.Type,
		"first_name":      c.FirstName,
		"last_name":       c.LastName,
		"name":            c.Name,
		"email":           c.Email,
		"organization_id": c.OrganizationID,
		"is_active":       c.IsActive,
	}
}

func entityToContactResponse(c *entity.Contact) *dto.ContactResponse {
	if c == nil {
		return nil
	}
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return &dto.ContactResponse{
		ID:             c.ID,
		CompanyID:      c.CompanyID,
		Code:           c.Code,
		Type:           c.Type,
		DisplayName:    c.DisplayName(),
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		JobTitle:       c.JobTitle,
		OrganizationID: c.OrganizationID,
		Name:           c.Name,
		Industry:       c.Industry,
		Email:          c.Email,
		Phone:          c.Phone,
		Mobile:         c.Mobile,
		Website:        c.Website,
		Notes:          c.Notes,
		Tags:           tags,
		IsActive:       c.IsActive,
		Source:         c.Source,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
