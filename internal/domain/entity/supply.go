package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supply insumo (materia prima) con stock propio.
type Supply struct {
	ID          string
	Name        string
	UnitMeasure string // g, ml, unidad...
	Stock       decimal.Decimal
	UnitCost    decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductSupply cantidad de insumo requerida por unidad de producto.
type ProductSupply struct {
	ProductID  string
	SupplyID   string
	SupplyName string          // solo lectura (join)
	UnitCost   decimal.Decimal // solo lectura (join): costo actual del insumo
	Quantity   decimal.Decimal
}
