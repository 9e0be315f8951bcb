package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot es una partida de producción o compra de un producto, ubicada en un único depósito.
// Invariante: 0 <= CurrentQty <= InitialQty.
type Lot struct {
	ID            string
	ProductID     string
	WarehouseID   string
	WarehouseName string // solo lectura (join)
	LotNumber     string
	InitialQty    decimal.Decimal
	CurrentQty    decimal.Decimal
	ExpiresAt     *time.Time
	Cost          decimal.Decimal // costo de laboratorio/producción del lote
	CreatedAt     time.Time
}

// Valid verifica el invariante de cantidades.
func (l *Lot) Valid() bool {
	return !l.CurrentQty.IsNegative() && l.CurrentQty.LessThanOrEqual(l.InitialQty)
}
