package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockTransfer registro inmutable de un movimiento entre depósitos.
type StockTransfer struct {
	ID                string
	ProductID         string
	ProductName       string
	LotNumber         string
	SourceLotID       string
	DestLotID         string
	FromWarehouseID   string
	FromWarehouseName string
	ToWarehouseID     string
	ToWarehouseName   string
	Quantity          decimal.Decimal
	ActorID           string
	CreatedAt         time.Time
}
