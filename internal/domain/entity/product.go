package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de venta: determinan qué lista base de precios aplica.
const (
	SaleTypePublic    = "publico"
	SaleTypeRetail    = "minorista"
	SaleTypeWholesale = "mayorista"
)

// Product representa un producto del catálogo.
// El stock no se persiste en la fila: se deriva de los lotes (StockTotal).
type Product struct {
	ID             string
	SKU            string // único
	Name           string
	Description    string
	PricePublic    decimal.Decimal
	PriceRetail    decimal.Decimal
	PriceWholesale decimal.Decimal
	Active         bool
	Export         *ExportAttributes // nil = sin datos logísticos
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Cargados bajo demanda (no son columnas de products).
	Lots           []Lot
	WarehouseStock []WarehouseStock
	Supplies       []ProductSupply
}

// ExportAttributes datos logísticos para cotizaciones COMEX.
type ExportAttributes struct {
	BoxLengthCM      decimal.Decimal
	BoxWidthCM       decimal.Decimal
	BoxHeightCM      decimal.Decimal
	BoxGrossWeightKG decimal.Decimal
	UnitsPerBox      int
	HSCode           string
}

// WarehouseStock stock agregado de un producto en un depósito.
type WarehouseStock struct {
	WarehouseID   string
	WarehouseName string
	Quantity      decimal.Decimal
}

// StockTotal suma la cantidad restante de todos los lotes cargados.
func (p *Product) StockTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range p.Lots {
		total = total.Add(l.CurrentQty)
	}
	return total
}

// PriceFor devuelve el precio de lista según el tipo de venta. Tipo desconocido -> precio público.
func (p *Product) PriceFor(saleType string) decimal.Decimal {
	switch saleType {
	case SaleTypeRetail:
		return p.PriceRetail
	case SaleTypeWholesale:
		return p.PriceWholesale
	default:
		return p.PricePublic
	}
}

// ValidSaleType informa si t pertenece al conjunto de tipos de venta.
func ValidSaleType(t string) bool {
	return t == SaleTypePublic || t == SaleTypeRetail || t == SaleTypeWholesale
}
