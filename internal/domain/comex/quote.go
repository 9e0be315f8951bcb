// Package comex calcula cotizaciones de exportación a partir de los datos logísticos del producto.
package comex

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
)

// VolumetricFactor kg por m³ usado por la carga aérea (1:6000 cm³/kg).
var VolumetricFactor = decimal.NewFromInt(167)

var (
	cm3PerM3 = decimal.NewFromInt(1_000_000)
	hundred  = decimal.NewFromInt(100)
)

// QuoteInput parámetros de la cotización.
type QuoteInput struct {
	Units        int
	ExchangeRate decimal.Decimal // moneda local por unidad de moneda extranjera
	FreightPerKG decimal.Decimal // en moneda extranjera
	InsurancePct decimal.Decimal // porcentaje sobre FOB + flete
}

// Quote resultado; importes en moneda extranjera.
type Quote struct {
	Units              int
	Boxes              int
	GrossWeightKG      decimal.Decimal
	VolumeM3           decimal.Decimal
	VolumetricWeightKG decimal.Decimal
	ChargeableWeightKG decimal.Decimal
	UnitFOB            decimal.Decimal
	FOB                decimal.Decimal
	Freight            decimal.Decimal
	Insurance          decimal.Decimal
	CIF                decimal.Decimal
	HSCode             string
}

// Calculate cotiza in.Units del producto al precio mayorista.
// Cajas = ceil(unidades / unidades por caja); el peso cobrable es el mayor entre bruto y volumétrico.
func Calculate(p *entity.Product, in QuoteInput) (*Quote, error) {
	if p == nil || p.Export == nil || p.Export.UnitsPerBox <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Units <= 0 || !in.ExchangeRate.IsPositive() || in.FreightPerKG.IsNegative() || in.InsurancePct.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	ex := p.Export

	boxes := (in.Units + ex.UnitsPerBox - 1) / ex.UnitsPerBox
	nBoxes := decimal.NewFromInt(int64(boxes))

	gross := nBoxes.Mul(ex.BoxGrossWeightKG)
	boxVolume := ex.BoxLengthCM.Mul(ex.BoxWidthCM).Mul(ex.BoxHeightCM).Div(cm3PerM3)
	volume := nBoxes.Mul(boxVolume)
	volumetric := volume.Mul(VolumetricFactor)
	chargeable := decimal.Max(gross, volumetric)

	unitFOB := p.PriceWholesale.Div(in.ExchangeRate)
	fob := unitFOB.Mul(decimal.NewFromInt(int64(in.Units)))
	freight := chargeable.Mul(in.FreightPerKG)
	insurance := fob.Add(freight).Mul(in.InsurancePct).Div(hundred)

	return &Quote{
		Units:              in.Units,
		Boxes:              boxes,
		GrossWeightKG:      gross.Round(2),
		VolumeM3:           volume.Round(4),
		VolumetricWeightKG: volumetric.Round(2),
		ChargeableWeightKG: chargeable.Round(2),
		UnitFOB:            unitFOB.Round(4),
		FOB:                fob.Round(2),
		Freight:            freight.Round(2),
		Insurance:          insurance.Round(2),
		CIF:                fob.Add(freight).Add(insurance).Round(2),
		HSCode:             ex.HSCode,
	}, nil
}
