package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/tienda-erp-api/internal/application/sales"
	"github.com/jhoicas/tienda-erp-api/internal/application/usecase"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

// Ensure TxRunner implements sales.SalesTxRunner and usecase.WarehouseTxRunner.
var _ sales.SalesTxRunner = (*TxRunner)(nil)
var _ usecase.WarehouseTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// inTx inicia una transacción, ejecuta fn y hace Commit; cualquier error deja Rollback.
func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunSales ejecuta fn con repos de lotes y ventas atados a una misma transacción.
func (r *TxRunner) RunSales(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewLotRepository(tx), NewSaleRepository(tx))
	})
}

// RunWarehouses ejecuta fn con el repo de depósitos atado a una transacción (cambio de predeterminado).
func (r *TxRunner) RunWarehouses(ctx context.Context, fn func(warehouseRepo repository.WarehouseRepository) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewWarehouseRepository(tx))
	})
}
