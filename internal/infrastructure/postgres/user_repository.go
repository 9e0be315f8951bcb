package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un nuevo usuario. Email repetido -> ErrEmailAlreadyExists.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, roles, status, created_at, updated_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Roles, user.Status,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		err = mapPgError(err, "")
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

// FindByEmail obtiene un usuario por email (sin distinguir mayúsculas).
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, `WHERE email = lower($1)`, email)
}

func (r *UserRepo) findOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	query := `
		SELECT id, email, password_hash, name, roles, status, created_at, updated_at
		FROM users ` + where
	var u entity.User
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Roles, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// ListAsAdmin lista usuarios vía list_users_as_admin; la base verifica que actorID sea admin.
func (r *UserRepo) ListAsAdmin(ctx context.Context, actorID string) ([]*entity.User, error) {
	var list []*entity.User
	err := queryProcedure(ctx, r.q, ProcListUsersAsAdmin, []any{actorID}, func(rows pgx.Rows) error {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Roles, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		list = append(list, &u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateRoles reemplaza los roles del usuario vía update_user_roles.
func (r *UserRepo) UpdateRoles(ctx context.Context, actorID, userID string, roles []string) error {
	return execProcedure(ctx, r.q, ProcUpdateUserRoles, actorID, userID, roles)
}
