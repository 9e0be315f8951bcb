package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación del puerto LotRepository sobre PostgreSQL.
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de persistencia para lotes.
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// Create persiste un lote nuevo.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	query := `
		INSERT INTO lots (id, product_id, warehouse_id, lot_number, initial_qty, current_qty, expires_at, cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.ProductID, lot.WarehouseID, lot.LotNumber, lot.InitialQty, lot.CurrentQty,
		lot.ExpiresAt, lot.Cost, lot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lot: %w", mapPgError(err, ""))
	}
	return nil
}

// GetByID obtiene un lote con el nombre de su depósito. nil si no existe.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	query := `
		SELECT l.id, l.product_id, l.warehouse_id, w.name, l.lot_number, l.initial_qty, l.current_qty,
			l.expires_at, l.cost, l.created_at
		FROM lots l JOIN warehouses w ON w.id = l.warehouse_id
		WHERE l.id = $1`
	var l entity.Lot
	err := r.q.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.ProductID, &l.WarehouseID, &l.WarehouseName, &l.LotNumber, &l.InitialQty, &l.CurrentQty,
		&l.ExpiresAt, &l.Cost, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return &l, nil
}

// ListByProduct lista todos los lotes del producto en todos los depósitos.
func (r *LotRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Lot, error) {
	query := `
		SELECT l.id, l.product_id, l.warehouse_id, w.name, l.lot_number, l.initial_qty, l.current_qty,
			l.expires_at, l.cost, l.created_at
		FROM lots l JOIN warehouses w ON w.id = l.warehouse_id
		WHERE l.product_id = $1
		ORDER BY l.expires_at NULLS LAST, l.created_at, l.id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		var l entity.Lot
		if err := rows.Scan(&l.ID, &l.ProductID, &l.WarehouseID, &l.WarehouseName, &l.LotNumber,
			&l.InitialQty, &l.CurrentQty, &l.ExpiresAt, &l.Cost, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// ListAvailableForUpdate bloquea los lotes con stock de los productos indicados.
// El orden por id evita interbloqueos entre ventas concurrentes.
func (r *LotRepo) ListAvailableForUpdate(ctx context.Context, productIDs []string) ([]*entity.Lot, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT l.id, l.product_id, l.warehouse_id, l.lot_number, l.initial_qty, l.current_qty,
			l.expires_at, l.cost, l.created_at
		FROM lots l
		WHERE l.product_id = ANY($1) AND l.current_qty > 0
		ORDER BY l.id
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("lock lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		var l entity.Lot
		if err := rows.Scan(&l.ID, &l.ProductID, &l.WarehouseID, &l.LotNumber, &l.InitialQty, &l.CurrentQty,
			&l.ExpiresAt, &l.Cost, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// Decrement descuenta qty con guarda: nunca deja el lote en negativo.
func (r *LotRepo) Decrement(ctx context.Context, lotID string, qty decimal.Decimal) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE lots SET current_qty = current_qty - $2 WHERE id = $1 AND current_qty >= $2`,
		lotID, qty,
	)
	if err != nil {
		return false, fmt.Errorf("decrement lot: %w", mapPgError(err, ""))
	}
	return cmd.RowsAffected() == 1, nil
}
