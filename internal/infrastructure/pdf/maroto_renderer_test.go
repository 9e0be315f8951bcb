package pdf_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
	"github.com/jhoicas/tienda-erp-api/internal/infrastructure/pdf"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":          "0,00",
		"999.9":      "999,90",
		"1234.5":     "1.234,50",
		"1000000":    "1.000.000,00",
		"-25000.125": "-25.000,13",
	}
	for in, want := range cases {
		assert.Equal(t, want, pdf.FormatMoney(d(in)), in)
	}
}

func TestPriceList_GeneraPDF(t *testing.T) {
	r := pdf.NewMarotoRenderer("Tienda Natural")

	out, err := r.PriceList(ports.PriceListDocument{
		Title:       "Mayoristas",
		Description: "Precios sin IVA",
		GeneratedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Rows: []ports.PriceListRow{
			{SKU: "CR-01", Name: "Crema facial", Price: d("800"), InStock: true},
			{SKU: "JB-01", Name: "Jabón de avena", Price: d("350.5"), InStock: false},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "debe ser un PDF")
}

func TestPriceList_SinFilas(t *testing.T) {
	out, err := pdf.NewMarotoRenderer("Tienda").PriceList(ports.PriceListDocument{Title: "Vacía", GeneratedAt: time.Now()})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestSaleReceipt_GeneraPDF(t *testing.T) {
	r := pdf.NewMarotoRenderer("Tienda Natural")

	out, err := r.SaleReceipt(ports.SaleReceiptDocument{
		SaleID: "5f0c1a2b-0000-4000-8000-000000000001",
		Date:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Status: "Pagada",
		Lines: []ports.SaleReceiptLine{
			{Description: "Crema facial", LotID: "lote-viejo", Quantity: d("3"), UnitPrice: d("1000"), Total: d("3000")},
			{Description: "Crema facial", LotID: "lote-nuevo", Quantity: d("2"), UnitPrice: d("1000"), Total: d("2000")},
		},
		Subtotal: d("5000"),
		Tax:      d("1050"),
		Total:    d("6050"),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
