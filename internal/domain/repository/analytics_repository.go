package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/reporting"
)

// ProductCostInput datos para el costo de un producto: precio, lista de materiales
// con el costo vigente de cada insumo y el costo del lote más reciente.
type ProductCostInput struct {
	ProductID     string
	SKU           string
	ProductName   string
	Price         decimal.Decimal
	BOM           []reporting.BOMLine
	LatestLotCost decimal.Decimal
}

// AnalyticsRepository define las consultas de lectura del tablero.
// Las implementaciones son read-only.
type AnalyticsRepository interface {
	// SalesTimeline devuelve total y cantidad de ventas no canceladas agrupadas por hora desde since.
	// La granularidad horaria permite rearmar días en la zona del negocio. since cero = todo el historial.
	SalesTimeline(ctx context.Context, since time.Time) ([]reporting.SalePoint, error)

	// ProductCostInputs devuelve los insumos de costo de todos los productos activos.
	ProductCostInputs(ctx context.Context) ([]ProductCostInput, error)

	// ProductStatistics invoca el procedimiento product_statistics para el rango dado.
	ProductStatistics(ctx context.Context, from, to time.Time) ([]entity.ProductStatistics, error)
}
