// Package auth contiene login, alta directa de usuarios y solicitudes públicas de acceso.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/usecase"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
	"github.com/jhoicas/tienda-erp-api/pkg/jwt"
	"github.com/jhoicas/tienda-erp-api/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	requestRepo repository.AccessRequestRepository
	jwtCfg      JWTConfig
	log         *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, requestRepo repository.AccessRequestRepository, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthUseCase{userRepo: userRepo, requestRepo: requestRepo, jwtCfg: jwtCfg, log: log.Component("auth")}
}

// RegisterUser crea un usuario activo: hashea password con bcrypt y persiste.
// Devuelve ErrEmailAlreadyExists si el email ya está registrado. Sin roles -> vendedor.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	email := normalizeEmail(in.Email)
	existing, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	roles := in.Roles
	if len(roles) == 0 {
		roles = []string{entity.RoleVendedor}
	}
	for _, r := range roles {
		if !entity.ValidRole(r) {
			return nil, domain.ErrInvalidInput
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Roles:        roles,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return usecase.ToUserResponse(user), nil
}

// Login verifica email/password, genera JWT con los roles y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != "active" {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, user.Roles, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *usecase.ToUserResponse(user),
	}, nil
}

// Me devuelve el usuario autenticado.
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return usecase.ToUserResponse(user), nil
}

// RequestAccess registra una solicitud pública de acceso; el password se guarda hasheado
// y pasa al usuario cuando un admin la aprueba.
func (uc *AuthUseCase) RequestAccess(ctx context.Context, in dto.AccessRequestCreate) (*dto.AccessRequestResponse, error) {
	email := normalizeEmail(in.Email)
	existing, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	req := &entity.AccessRequest{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		Message:      strings.TrimSpace(in.Message),
		Status:       entity.AccessRequestPending,
		CreatedAt:    time.Now(),
	}
	if err := uc.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}
	uc.log.Info().Str("request_id", req.ID).Str("email", email).Msg("solicitud de acceso registrada")
	return &dto.AccessRequestResponse{
		ID:        req.ID,
		Email:     req.Email,
		Name:      req.Name,
		Message:   req.Message,
		Status:    req.Status,
		CreatedAt: req.CreatedAt,
	}, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
