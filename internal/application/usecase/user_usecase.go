package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/erp-core/internal/application/audit"
	"github.com/jhoicas/erp-core/internal/application/auth"
	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

const minPasswordLength = 8

// UserUseCase aplica reglas de negocio para usuarios del tenant.
type UserUseCase struct {
	stores   repository.StoreProvider
	observer audit.Observer
	now      func() time.Time
}

// NewUserUseCase construye el caso de uso. observer nil equivale a audit.Nop.
func NewUserUseCase(stores repository.StoreProvider, observer audit.Observer) *UserUseCase {
	if observer == nil {
		observer = audit.Nop{}
	}
	return &UserUseCase{stores: stores, observer: observer, now: time.Now}
}

// Create crea un usuario: hashea el password con bcrypt. domain.ErrDuplicate si el email existe.
// El usuario no pertenece a ninguna empresa hasta que se le asocie.
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return nil, err
	}
	user, err := newUser(in, uc.now())
	if err != nil {
		return nil, err
	}
	if err := store.Users().Create(ctx, user); err != nil {
		return nil, err
	}
	audit.Record(ctx, uc.observer, audit.Mutation{
		Event: audit.EventCreated, Entity: "user", EntityID: user.ID,
		New: map[string]any{"email": user.Email, "name": user.Name, "password_hash": user.PasswordHash},
	})
	return auth.ToUserResponse(user), nil
}

// GetByID obtiene un usuario por ID. nil, nil si no existe.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return nil, err
	}
	user, err := store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return auth.ToUserResponse(user), nil
}

func newUser(in dto.CreateUserRequest, now time.Time) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password de al menos %d caracteres", domain.ErrInvalidInput, minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	return &entity.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
