package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/erp-core/internal/application/dto"
	"github.com/jhoicas/erp-core/internal/application/tenancy"
	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación contra los usuarios del tenant.
type AuthUseCase struct {
	stores repository.StoreProvider
	jwtCfg JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(stores repository.StoreProvider, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{stores: stores, jwtCfg: jwtCfg}
}

// Login verifica email/password y emite un JWT atado al tenant del request.
// CompanyID de la entrada viaja en el token solo como preferencia; se valida en cada request.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	tenant := tenancy.TenantFromContext(ctx)
	if tenant == nil {
		return nil, domain.ErrTenantNotResolved
	}
	store, err := uc.stores.Store(ctx)
	if err != nil {
		return nil, err
	}
	user, err := store.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrForbidden
	}
	token, err := uc.IssueToken(tenant.ID, user, in.CompanyID)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *ToUserResponse(user),
	}, nil
}

// IssueToken firma un token para user en tenantID con la empresa preferida (opcional).
func (uc *AuthUseCase) IssueToken(tenantID string, user *entity.User, companyID string) (string, error) {
	return jwt.Generate(uc.jwtCfg.Secret, user.ID, tenantID, companyID, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
}

// ToUserResponse convierte el usuario en su salida pública (sin hash).
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		IsActive:     u.IsActive,
		IsSuperadmin: u.IsSuperadmin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
