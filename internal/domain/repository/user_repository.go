package repository

import (
	"context"

	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User.
// Las operaciones administrativas se resuelven con procedimientos que verifican el rol del actor.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	ListAsAdmin(ctx context.Context, actorID string) ([]*entity.User, error)
	UpdateRoles(ctx context.Context, actorID, userID string, roles []string) error
}

// AccessRequestRepository define el puerto de persistencia para solicitudes de acceso.
type AccessRequestRepository interface {
	Create(ctx context.Context, req *entity.AccessRequest) error
	ListPending(ctx context.Context) ([]*entity.AccessRequest, error)
	// Approve crea el usuario con los roles indicados y devuelve su ID.
	Approve(ctx context.Context, actorID, requestID string, roles []string) (string, error)
	Reject(ctx context.Context, actorID, requestID, reason string) error
}
