package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceList lista de precios con nombre; sus ítems reemplazan al precio público.
type PriceList struct {
	ID          string
	Name        string // único
	Description string
	Public      bool // visible en el portal de clientes
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Items       []PriceListItem
}

// PriceListItem precio de un producto dentro de una lista.
type PriceListItem struct {
	PriceListID string
	ProductID   string
	ProductSKU  string // solo lectura (join)
	ProductName string // solo lectura (join)
	Price       decimal.Decimal
}
