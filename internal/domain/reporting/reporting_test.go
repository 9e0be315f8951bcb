package reporting_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-erp-api/internal/domain/reporting"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProductCost_SumaInsumosMasUltimoLote(t *testing.T) {
	bom := []reporting.BOMLine{
		{Quantity: d("0.2"), UnitCost: d("1000")}, // 200
		{Quantity: d("3"), UnitCost: d("15.5")},   // 46.5
	}
	assert.True(t, reporting.ProductCost(bom, d("120")).Equal(d("366.5")))
	assert.True(t, reporting.ProductCost(nil, decimal.Zero).IsZero())
}

func TestMargin(t *testing.T) {
	assert.True(t, reporting.Margin(d("200"), d("150")).Equal(d("25")))
	assert.True(t, reporting.Margin(d("3"), d("1")).Equal(d("66.67")))
	assert.True(t, reporting.Margin(d("100"), d("130")).Equal(d("-30")), "margen negativo si el costo supera el precio")
}

func TestMargin_PrecioCeroONegativoDevuelveCero(t *testing.T) {
	assert.True(t, reporting.Margin(decimal.Zero, d("10")).IsZero())
	assert.True(t, reporting.Margin(d("-5"), d("10")).IsZero())
}

func TestBucketSales(t *testing.T) {
	loc := time.FixedZone("ART", -3*3600)
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, loc)

	sales := []reporting.SalePoint{
		{Date: time.Date(2024, 3, 15, 9, 0, 0, 0, loc), Total: d("100")},
		{Date: time.Date(2024, 3, 15, 20, 0, 0, 0, loc), Total: d("50")},
		// 2024-03-16 01:00 UTC = 2024-03-15 22:00 ART: cuenta como hoy
		{Date: time.Date(2024, 3, 16, 1, 0, 0, 0, time.UTC), Total: d("25")},
		{Date: time.Date(2024, 2, 15, 12, 0, 0, 0, loc), Total: d("10")},  // primer día de la ventana
		{Date: time.Date(2024, 2, 14, 12, 0, 0, 0, loc), Total: d("7")},   // fuera de días, dentro de meses
		{Date: time.Date(2023, 4, 2, 12, 0, 0, 0, loc), Total: d("3")},    // primer mes de la ventana
		{Date: time.Date(2023, 3, 31, 12, 0, 0, 0, loc), Total: d("1")},   // solo años
		{Date: time.Date(2021, 7, 1, 12, 0, 0, 0, loc), Total: d("1000")}, // solo años
	}

	h := reporting.BucketSales(sales, now)

	require.Len(t, h.Days, 30)
	assert.Equal(t, "2024-02-15", h.Days[0].Label)
	assert.Equal(t, "2024-03-15", h.Days[29].Label)
	assert.True(t, h.Days[29].Total.Equal(d("175")))
	assert.Equal(t, 3, h.Days[29].Count)
	assert.True(t, h.Days[0].Total.Equal(d("10")))

	require.Len(t, h.Months, 12)
	assert.Equal(t, "2023-04", h.Months[0].Label)
	assert.Equal(t, "2024-03", h.Months[11].Label)
	assert.True(t, h.Months[11].Total.Equal(d("175")))
	assert.True(t, h.Months[10].Total.Equal(d("17")))
	assert.True(t, h.Months[0].Total.Equal(d("3")))

	require.Len(t, h.Years, 3)
	assert.Equal(t, "2021", h.Years[0].Label)
	assert.Equal(t, "2023", h.Years[1].Label)
	assert.True(t, h.Years[1].Total.Equal(d("4")))
	assert.True(t, h.Years[2].Total.Equal(d("192")))
}

func TestBucketSales_UsaCountAgregado(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	h := reporting.BucketSales([]reporting.SalePoint{
		{Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), Total: d("900"), Count: 4},
	}, now)
	assert.Equal(t, 4, h.Days[29].Count)
	assert.Equal(t, 4, h.Years[0].Count)
}
