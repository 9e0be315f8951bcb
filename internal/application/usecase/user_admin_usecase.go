package usecase

import (
	"context"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
	"github.com/jhoicas/tienda-erp-api/pkg/logger"
)

// UserAdminUseCase administración de usuarios y solicitudes de acceso.
// Los permisos los verifica la base (procedimientos); un actor sin rol admin recibe domain.ErrPermissionDenied.
type UserAdminUseCase struct {
	userRepo    repository.UserRepository
	requestRepo repository.AccessRequestRepository
	log         *logger.Logger
}

// NewUserAdminUseCase construye el caso de uso.
func NewUserAdminUseCase(userRepo repository.UserRepository, requestRepo repository.AccessRequestRepository, log *logger.Logger) *UserAdminUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UserAdminUseCase{userRepo: userRepo, requestRepo: requestRepo, log: log.Component("user-admin")}
}

// ListUsers lista todos los usuarios.
func (uc *UserAdminUseCase) ListUsers(ctx context.Context, actorID string) ([]dto.UserResponse, error) {
	users, err := uc.userRepo.ListAsAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *ToUserResponse(u))
	}
	return out, nil
}

// UpdateRoles reemplaza los roles del usuario. Un admin no puede quitarse su propio rol admin.
func (uc *UserAdminUseCase) UpdateRoles(ctx context.Context, actorID, userID string, roles []string) (*dto.UserResponse, error) {
	if err := validateRoles(roles); err != nil {
		return nil, err
	}
	if err := uc.userRepo.UpdateRoles(ctx, actorID, userID, roles); err != nil {
		return nil, err
	}
	uc.log.Info().Str("actor_id", actorID).Str("user_id", userID).Strs("roles", roles).Msg("roles actualizados")
	u, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return ToUserResponse(u), nil
}

// ListAccessRequests lista las solicitudes pendientes.
func (uc *UserAdminUseCase) ListAccessRequests(ctx context.Context) ([]dto.AccessRequestResponse, error) {
	list, err := uc.requestRepo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AccessRequestResponse, 0, len(list))
	for _, r := range list {
		out = append(out, dto.AccessRequestResponse{
			ID:        r.ID,
			Email:     r.Email,
			Name:      r.Name,
			Message:   r.Message,
			Status:    r.Status,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

// ApproveAccessRequest crea el usuario con los roles indicados.
func (uc *UserAdminUseCase) ApproveAccessRequest(ctx context.Context, actorID, requestID string, roles []string) (*dto.UserResponse, error) {
	if err := validateRoles(roles); err != nil {
		return nil, err
	}
	userID, err := uc.requestRepo.Approve(ctx, actorID, requestID, roles)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("actor_id", actorID).Str("request_id", requestID).Str("user_id", userID).Msg("solicitud de acceso aprobada")
	u, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return ToUserResponse(u), nil
}

// RejectAccessRequest rechaza la solicitud.
func (uc *UserAdminUseCase) RejectAccessRequest(ctx context.Context, actorID, requestID, reason string) error {
	if err := uc.requestRepo.Reject(ctx, actorID, requestID, reason); err != nil {
		return err
	}
	uc.log.Info().Str("actor_id", actorID).Str("request_id", requestID).Msg("solicitud de acceso rechazada")
	return nil
}

func validateRoles(roles []string) error {
	if len(roles) == 0 {
		return domain.ErrInvalidInput
	}
	for _, r := range roles {
		if !entity.ValidRole(r) {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// ToUserResponse convierte un usuario en su DTO (sin hash).
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Roles:     append([]string{}, u.Roles...),
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
