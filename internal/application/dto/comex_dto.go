package dto

import "github.com/shopspring/decimal"

// QuoteRequest parámetros de una cotización de exportación.
type QuoteRequest struct {
	ProductID    string          `json:"product_id" validate:"required,uuid"`
	Units        int             `json:"units" validate:"min=1"`
	ExchangeRate decimal.Decimal `json:"exchange_rate" validate:"gt=0"`
	FreightPerKG decimal.Decimal `json:"freight_per_kg" validate:"gte=0"`
	InsurancePct decimal.Decimal `json:"insurance_pct" validate:"gte=0"`
}

// QuoteResponse resultado FOB/CIF en moneda extranjera.
type QuoteResponse struct {
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	HSCode             string          `json:"hs_code,omitempty"`
	Units              int             `json:"units"`
	Boxes              int             `json:"boxes"`
	GrossWeightKG      decimal.Decimal `json:"gross_weight_kg"`
	VolumeM3           decimal.Decimal `json:"volume_m3"`
	VolumetricWeightKG decimal.Decimal `json:"volumetric_weight_kg"`
	ChargeableWeightKG decimal.Decimal `json:"chargeable_weight_kg"`
	UnitFOB            decimal.Decimal `json:"unit_fob"`
	FOB                decimal.Decimal `json:"fob"`
	Freight            decimal.Decimal `json:"freight"`
	Insurance          decimal.Decimal `json:"insurance"`
	CIF                decimal.Decimal `json:"cif"`
}
