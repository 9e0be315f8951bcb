package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardResponse respuesta de GET /api/dashboard.
type DashboardResponse struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Days        []BucketDTO            `json:"days"`   // últimos 30 días, incluye hoy
	Months      []BucketDTO            `json:"months"` // últimos 12 meses, incluye el actual
	Years       []BucketDTO            `json:"years"`
	Costs       []ProductCostDTO       `json:"costs"`
	Statistics  []ProductStatisticsDTO `json:"statistics"`
}

// BucketDTO total de ventas de un período.
type BucketDTO struct {
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// ProductCostDTO costo y margen de un producto.
type ProductCostDTO struct {
	ProductID   string          `json:"product_id"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	MarginPct   decimal.Decimal `json:"margin_pct"`
}

// ProductStatisticsDTO ventas de un producto en el período consultado.
type ProductStatisticsDTO struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitsSold   decimal.Decimal `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
	SalesCount  int             `json:"sales_count"`
	LastSaleAt  *time.Time      `json:"last_sale_at,omitempty"`
}
