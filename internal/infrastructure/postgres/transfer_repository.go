package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo adaptador de los procedimientos transfer_stock y list_transfer_history.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador de transferencias.
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

func scanTransfer(rows pgx.Row) (*entity.StockTransfer, error) {
	var t entity.StockTransfer
	var actor *string
	err := rows.Scan(&t.ID, &t.ProductID, &t.ProductName, &t.LotNumber, &t.SourceLotID, &t.DestLotID,
		&t.FromWarehouseID, &t.FromWarehouseName, &t.ToWarehouseID, &t.ToWarehouseName,
		&t.Quantity, &actor, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if actor != nil {
		t.ActorID = *actor
	}
	return &t, nil
}

// Transfer mueve stock entre depósitos de forma atómica y devuelve el registro creado.
func (r *TransferRepo) Transfer(ctx context.Context, cmd repository.TransferCommand) (*entity.StockTransfer, error) {
	var (
		transferID, destLotID string
		createdAt             time.Time
		found                 bool
	)
	args := []any{cmd.SourceLotID, cmd.DestWarehouseID, cmd.Quantity, nullableID(cmd.ActorID)}
	err := queryProcedure(ctx, r.q, ProcTransferStock, args, func(rows pgx.Rows) error {
		found = true
		return rows.Scan(&transferID, &destLotID, &createdAt)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("transfer_stock: %w", domain.ErrAllocationIntegrity)
	}

	query := `
		SELECT t.id, t.product_id, p.name, t.lot_number, t.source_lot_id, t.dest_lot_id,
			t.from_warehouse_id, wf.name, t.to_warehouse_id, wt.name, t.quantity, t.actor_id, t.created_at
		FROM stock_transfers t
		JOIN products p    ON p.id = t.product_id
		JOIN warehouses wf ON wf.id = t.from_warehouse_id
		JOIN warehouses wt ON wt.id = t.to_warehouse_id
		WHERE t.id = $1`
	t, err := scanTransfer(r.q.QueryRow(ctx, query, transferID))
	if err != nil {
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return t, nil
}

// ListHistory lista las transferencias, más recientes primero. productID vacío = todas.
func (r *TransferRepo) ListHistory(ctx context.Context, productID string, limit int) ([]*entity.StockTransfer, error) {
	var list []*entity.StockTransfer
	err := queryProcedure(ctx, r.q, ProcListTransferHistory, []any{nullableID(productID), limitArg(limit)},
		func(rows pgx.Rows) error {
			t, err := scanTransfer(rows)
			if err != nil {
				return err
			}
			list = append(list, t)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return list, nil
}
