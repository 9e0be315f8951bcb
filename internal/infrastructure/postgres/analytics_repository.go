package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/reporting"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el tablero de ventas y costos.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// SalesTimeline agrupa las ventas no canceladas por hora.
func (r *AnalyticsRepo) SalesTimeline(ctx context.Context, since time.Time) ([]reporting.SalePoint, error) {
	const query = `
	SELECT
	    date_trunc('hour', s.sale_date) AS bucket,
	    SUM(s.total)                     AS total,
	    COUNT(*)                         AS sale_count
	FROM sales s
	WHERE s.status <> 'Cancelada'
	  AND s.sale_date >= $1
	GROUP BY bucket
	ORDER BY bucket`

	rows, err := r.q.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("analytics.SalesTimeline: %w", err)
	}
	defer rows.Close()

	var points []reporting.SalePoint
	for rows.Next() {
		var p reporting.SalePoint
		if err := rows.Scan(&p.Date, &p.Total, &p.Count); err != nil {
			return nil, fmt.Errorf("analytics.SalesTimeline scan: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// ProductCostInputs arma, para cada producto activo, su lista de materiales y el costo del lote más reciente.
func (r *AnalyticsRepo) ProductCostInputs(ctx context.Context) ([]repository.ProductCostInput, error) {
	const productsQuery = `
	SELECT
	    p.id,
	    p.sku,
	    p.name,
	    p.price_public,
	    COALESCE((
	        SELECT l.cost FROM lots l
	        WHERE l.product_id = p.id
	        ORDER BY l.created_at DESC, l.id DESC
	        LIMIT 1
	    ), 0) AS latest_lot_cost
	FROM products p
	WHERE p.active
	ORDER BY p.name`

	rows, err := r.q.Query(ctx, productsQuery)
	if err != nil {
		return nil, fmt.Errorf("analytics.ProductCostInputs: %w", err)
	}
	var inputs []repository.ProductCostInput
	index := make(map[string]int)
	for rows.Next() {
		var in repository.ProductCostInput
		if err := rows.Scan(&in.ProductID, &in.SKU, &in.ProductName, &in.Price, &in.LatestLotCost); err != nil {
			rows.Close()
			return nil, fmt.Errorf("analytics.ProductCostInputs scan: %w", err)
		}
		index[in.ProductID] = len(inputs)
		inputs = append(inputs, in)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics.ProductCostInputs: %w", err)
	}

	const bomQuery = `
	SELECT ps.product_id, ps.quantity, s.unit_cost
	FROM product_supplies ps
	JOIN supplies s ON s.id = ps.supply_id`

	err = r.scanRows(ctx, bomQuery, func(rows pgx.Rows) error {
		var productID string
		var line reporting.BOMLine
		if err := rows.Scan(&productID, &line.Quantity, &line.UnitCost); err != nil {
			return err
		}
		if i, ok := index[productID]; ok {
			inputs[i].BOM = append(inputs[i].BOM, line)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("analytics.ProductCostInputs bom: %w", err)
	}
	return inputs, nil
}

// ProductStatistics invoca product_statistics para [from, to).
func (r *AnalyticsRepo) ProductStatistics(ctx context.Context, from, to time.Time) ([]entity.ProductStatistics, error) {
	var stats []entity.ProductStatistics
	err := queryProcedure(ctx, r.q, ProcProductStatistics, []any{from, to}, func(rows pgx.Rows) error {
		var s entity.ProductStatistics
		if err := rows.Scan(&s.ProductID, &s.ProductName, &s.UnitsSold, &s.Revenue, &s.SalesCount, &s.LastSaleAt); err != nil {
			return err
		}
		stats = append(stats, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *AnalyticsRepo) scanRows(ctx context.Context, query string, fn func(pgx.Rows) error) error {
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
