package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

var _ repository.AccessRequestRepository = (*AccessRequestRepo)(nil)

// AccessRequestRepo implementación del puerto AccessRequestRepository sobre PostgreSQL.
type AccessRequestRepo struct {
	q Querier
}

// NewAccessRequestRepository construye el adaptador de solicitudes de acceso.
func NewAccessRequestRepository(q Querier) *AccessRequestRepo {
	return &AccessRequestRepo{q: q}
}

// Create registra una solicitud pendiente. Ya hay otra pendiente con el mismo email -> ErrDuplicate.
func (r *AccessRequestRepo) Create(ctx context.Context, req *entity.AccessRequest) error {
	query := `
		INSERT INTO access_requests (id, email, name, password_hash, message, status, created_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, req.ID, req.Email, req.Name, req.PasswordHash, req.Message, req.Status, req.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert access request: %w", mapPgError(err, ""))
	}
	return nil
}

// ListPending lista las solicitudes pendientes, más antiguas primero.
func (r *AccessRequestRepo) ListPending(ctx context.Context) ([]*entity.AccessRequest, error) {
	query := `
		SELECT id, email, name, message, status, reviewed_by, reviewed_at, created_at
		FROM access_requests WHERE status = 'pendiente' ORDER BY created_at`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list access requests: %w", err)
	}
	defer rows.Close()
	var list []*entity.AccessRequest
	for rows.Next() {
		var a entity.AccessRequest
		if err := rows.Scan(&a.ID, &a.Email, &a.Name, &a.Message, &a.Status, &a.ReviewedBy, &a.ReviewedAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan access request: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// Approve crea el usuario y cierra la solicitud vía approve_access_request.
func (r *AccessRequestRepo) Approve(ctx context.Context, actorID, requestID string, roles []string) (string, error) {
	var userID string
	err := queryProcedure(ctx, r.q, ProcApproveAccessRequest, []any{actorID, requestID, roles}, func(rows pgx.Rows) error {
		return rows.Scan(&userID)
	})
	if err != nil {
		return "", err
	}
	return userID, nil
}

// Reject cierra la solicitud vía reject_access_request.
func (r *AccessRequestRepo) Reject(ctx context.Context, actorID, requestID, reason string) error {
	return execProcedure(ctx, r.q, ProcRejectAccessRequest, actorID, requestID, reason)
}
