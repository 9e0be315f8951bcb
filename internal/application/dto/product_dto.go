package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExportAttributesDTO datos logísticos opcionales del producto.
type ExportAttributesDTO struct {
	BoxLengthCM      decimal.Decimal `json:"box_length_cm" validate:"gt=0"`
	BoxWidthCM       decimal.Decimal `json:"box_width_cm" validate:"gt=0"`
	BoxHeightCM      decimal.Decimal `json:"box_height_cm" validate:"gt=0"`
	BoxGrossWeightKG decimal.Decimal `json:"box_gross_weight_kg" validate:"gt=0"`
	UnitsPerBox      int             `json:"units_per_box" validate:"min=1"`
	HSCode           string          `json:"hs_code" validate:"max=20"`
}

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU            string               `json:"sku" validate:"required,min=1,max=100"`
	Name           string               `json:"name" validate:"required,min=1,max=200"`
	Description    string               `json:"description"`
	PricePublic    decimal.Decimal      `json:"price_public" validate:"gte=0"`
	PriceRetail    decimal.Decimal      `json:"price_retail" validate:"gte=0"`
	PriceWholesale decimal.Decimal      `json:"price_wholesale" validate:"gte=0"`
	Active         *bool                `json:"active"`
	Export         *ExportAttributesDTO `json:"export" validate:"omitempty"`
}

// UpdateProductRequest entrada para actualizar un producto (el stock se maneja con lotes).
type UpdateProductRequest struct {
	SKU            *string              `json:"sku" validate:"omitempty,min=1,max=100"`
	Name           *string              `json:"name" validate:"omitempty,min=1,max=200"`
	Description    *string              `json:"description"`
	PricePublic    *decimal.Decimal     `json:"price_public"`
	PriceRetail    *decimal.Decimal     `json:"price_retail"`
	PriceWholesale *decimal.Decimal     `json:"price_wholesale"`
	Active         *bool                `json:"active"`
	Export         *ExportAttributesDTO `json:"export" validate:"omitempty"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID             string               `json:"id"`
	SKU            string               `json:"sku"`
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	PricePublic    decimal.Decimal      `json:"price_public"`
	PriceRetail    decimal.Decimal      `json:"price_retail"`
	PriceWholesale decimal.Decimal      `json:"price_wholesale"`
	Active         bool                 `json:"active"`
	Export         *ExportAttributesDTO `json:"export,omitempty"`
	StockTotal     decimal.Decimal      `json:"stock_total"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// CreateLotRequest alta de un lote de producción o compra.
type CreateLotRequest struct {
	WarehouseID string          `json:"warehouse_id" validate:"required,uuid"`
	LotNumber   string          `json:"lot_number" validate:"required,max=60"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	ExpiresAt   *time.Time      `json:"expires_at"`
	Cost        decimal.Decimal `json:"cost" validate:"gte=0"`
}

// LotResponse salida de un lote.
type LotResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	WarehouseID   string          `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name,omitempty"`
	LotNumber     string          `json:"lot_number"`
	InitialQty    decimal.Decimal `json:"initial_qty"`
	CurrentQty    decimal.Decimal `json:"current_qty"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	Cost          decimal.Decimal `json:"cost"`
	CreatedAt     time.Time       `json:"created_at"`
}

// WarehouseStockDTO stock de un producto en un depósito.
type WarehouseStockDTO struct {
	WarehouseID   string          `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// ProductStockResponse producto con lotes y desglose por depósito.
type ProductStockResponse struct {
	Product     ProductResponse     `json:"product"`
	StockTotal  decimal.Decimal     `json:"stock_total"`
	Lots        []LotResponse       `json:"lots"`
	ByWarehouse []WarehouseStockDTO `json:"by_warehouse"`
}

// ProductSupplyDTO línea de la lista de materiales.
type ProductSupplyDTO struct {
	SupplyID   string          `json:"supply_id" validate:"required,uuid"`
	SupplyName string          `json:"supply_name,omitempty"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Quantity   decimal.Decimal `json:"quantity" validate:"gt=0"`
}

// SetProductSuppliesRequest reemplaza la lista de materiales.
type SetProductSuppliesRequest struct {
	Supplies []ProductSupplyDTO `json:"supplies" validate:"dive"`
}
