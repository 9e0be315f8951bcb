package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatistics fila devuelta por el procedimiento product_statistics.
type ProductStatistics struct {
	ProductID   string
	ProductName string
	UnitsSold   decimal.Decimal
	Revenue     decimal.Decimal
	SalesCount  int
	LastSaleAt  *time.Time
}
