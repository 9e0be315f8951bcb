// Package reporting contiene los cálculos puros del tablero: costo, margen e histogramas.
package reporting

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// BOMLine insumo requerido por unidad de producto y su costo unitario vigente.
type BOMLine struct {
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// ProductCost costo unitario = Σ(cantidad de insumo × costo del insumo) + costo del último lote.
// Se usa el costo del lote más reciente, sin promediar.
func ProductCost(bom []BOMLine, latestLotCost decimal.Decimal) decimal.Decimal {
	total := latestLotCost
	for _, l := range bom {
		total = total.Add(l.Quantity.Mul(l.UnitCost))
	}
	return total
}

// Margin porcentaje (precio − costo) / precio × 100, redondeado a 2 decimales.
// Precio <= 0 devuelve 0.
func Margin(price, cost decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	return price.Sub(cost).Div(price).Mul(hundred).Round(2)
}
