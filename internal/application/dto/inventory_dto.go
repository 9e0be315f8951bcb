package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferRequest movimiento de un lote hacia otro depósito.
type TransferRequest struct {
	SourceLotID     string          `json:"source_lot_id" validate:"required,uuid"`
	DestWarehouseID string          `json:"dest_warehouse_id" validate:"required,uuid"`
	Quantity        decimal.Decimal `json:"quantity" validate:"gt=0"`
}

// TransferResponse registro de transferencia.
type TransferResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name"`
	LotNumber         string          `json:"lot_number"`
	SourceLotID       string          `json:"source_lot_id"`
	DestLotID         string          `json:"dest_lot_id"`
	FromWarehouseID   string          `json:"from_warehouse_id"`
	FromWarehouseName string          `json:"from_warehouse_name"`
	ToWarehouseID     string          `json:"to_warehouse_id"`
	ToWarehouseName   string          `json:"to_warehouse_name"`
	Quantity          decimal.Decimal `json:"quantity"`
	ActorID           string          `json:"actor_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// SupplyRequest alta o modificación de un insumo.
type SupplyRequest struct {
	Name        string          `json:"name" validate:"required,max=120"`
	UnitMeasure string          `json:"unit_measure" validate:"required,max=20"`
	Stock       decimal.Decimal `json:"stock" validate:"gte=0"`
	UnitCost    decimal.Decimal `json:"unit_cost" validate:"gte=0"`
}

// AddSupplyStockRequest ingreso de stock de insumo a un costo dado.
type AddSupplyStockRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitCost decimal.Decimal `json:"unit_cost" validate:"gte=0"`
}

// SupplyResponse salida de un insumo.
type SupplyResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	UnitMeasure string          `json:"unit_measure"`
	Stock       decimal.Decimal `json:"stock"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
