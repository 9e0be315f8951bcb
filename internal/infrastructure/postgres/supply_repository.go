package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

var _ repository.SupplyRepository = (*SupplyRepo)(nil)

// SupplyRepo implementación del puerto SupplyRepository sobre PostgreSQL.
type SupplyRepo struct {
	q Querier
}

// NewSupplyRepository construye el adaptador de persistencia para insumos.
func NewSupplyRepository(q Querier) *SupplyRepo {
	return &SupplyRepo{q: q}
}

func scanSupply(row pgx.Row) (*entity.Supply, error) {
	var s entity.Supply
	if err := row.Scan(&s.ID, &s.Name, &s.UnitMeasure, &s.Stock, &s.UnitCost, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SupplyRepo) Create(ctx context.Context, supply *entity.Supply) error {
	query := `
		INSERT INTO supplies (id, name, unit_measure, stock, unit_cost, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, supply.ID, supply.Name, supply.UnitMeasure, supply.Stock, supply.UnitCost,
		supply.CreatedAt, supply.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert supply: %w", mapPgError(err, ""))
	}
	return nil
}

func (r *SupplyRepo) GetByID(ctx context.Context, id string) (*entity.Supply, error) {
	s, err := scanSupply(r.q.QueryRow(ctx,
		`SELECT id, name, unit_measure, stock, unit_cost, created_at, updated_at FROM supplies WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supply: %w", err)
	}
	return s, nil
}

// Update modifica nombre y unidad. Stock y costo cambian solo vía AddStock.
func (r *SupplyRepo) Update(ctx context.Context, supply *entity.Supply) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE supplies SET name = $2, unit_measure = $3, updated_at = $4 WHERE id = $1`,
		supply.ID, supply.Name, supply.UnitMeasure, supply.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update supply: %w", mapPgError(err, ""))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SupplyRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM supplies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete supply: %w", mapPgError(err, ""))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SupplyRepo) List(ctx context.Context) ([]*entity.Supply, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, name, unit_measure, stock, unit_cost, created_at, updated_at FROM supplies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list supplies: %w", err)
	}
	defer rows.Close()
	var list []*entity.Supply
	for rows.Next() {
		s, err := scanSupply(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supply: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// AddStock suma stock y recalcula el costo promedio ponderado en la base.
func (r *SupplyRepo) AddStock(ctx context.Context, supplyID string, qty, unitCost decimal.Decimal) (*entity.Supply, error) {
	var out *entity.Supply
	err := queryProcedure(ctx, r.q, ProcAddInsumoStock, []any{supplyID, qty, unitCost}, func(rows pgx.Rows) error {
		s, err := scanSupply(rows)
		out = s
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, domain.ErrNotFound
	}
	return out, nil
}
