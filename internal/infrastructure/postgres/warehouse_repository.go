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

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para depósitos.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// Create persiste un nuevo depósito. Nombre repetido -> ErrDuplicate.
func (r *WarehouseRepo) Create(ctx context.Context, warehouse *entity.Warehouse) error {
	query := `
		INSERT INTO warehouses (id, name, address, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, false, $4, $5)`
	_, err := r.q.Exec(ctx, query,
		warehouse.ID, warehouse.Name, warehouse.Address, warehouse.CreatedAt, warehouse.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert warehouse: %w", mapPgError(err, ""))
	}
	return nil
}

// GetByID obtiene un depósito por ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	query := `
		SELECT id, name, address, is_default, created_at, updated_at
		FROM warehouses WHERE id = $1`
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.Name, &w.Address, &w.IsDefault, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

// Update actualiza nombre y dirección. La marca de predeterminado se cambia con MarkDefault.
func (r *WarehouseRepo) Update(ctx context.Context, warehouse *entity.Warehouse) error {
	query := `
		UPDATE warehouses SET name = $2, address = $3, updated_at = $4
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		warehouse.ID, warehouse.Name, warehouse.Address, warehouse.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update warehouse: %w", mapPgError(err, ""))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista depósitos, el predeterminado primero.
func (r *WarehouseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	query := `
		SELECT id, name, address, is_default, created_at, updated_at
		FROM warehouses ORDER BY is_default DESC, name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limitArg(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Warehouse
	for rows.Next() {
		var w entity.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Address, &w.IsDefault, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}

// Delete elimina un depósito. Con lotes asociados -> ErrConflict.
func (r *WarehouseRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM warehouses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete warehouse: %w", mapPgError(err, ""))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClearDefault quita la marca de predeterminado.
func (r *WarehouseRepo) ClearDefault(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `UPDATE warehouses SET is_default = false, updated_at = now() WHERE is_default`); err != nil {
		return fmt.Errorf("clear default warehouse: %w", mapPgError(err, ""))
	}
	return nil
}

// MarkDefault marca el depósito como predeterminado.
func (r *WarehouseRepo) MarkDefault(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE warehouses SET is_default = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark default warehouse: %w", mapPgError(err, ""))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
