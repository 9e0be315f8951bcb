package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-erp-api/internal/application/analytics"
	"github.com/jhoicas/tienda-erp-api/internal/application/fakes"
	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/reporting"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type captureExporter struct {
	sheets []ports.SpreadsheetSheet
}

func (c *captureExporter) Export(sheets []ports.SpreadsheetSheet) ([]byte, error) {
	c.sheets = sheets
	return []byte("xlsx"), nil
}

func TestDashboard_HistogramasCostosYEstadisticas(t *testing.T) {
	now := time.Now().UTC()
	repo := &fakes.AnalyticsRepo{
		Timeline: []reporting.SalePoint{
			{Date: now, Total: d("100"), Count: 2},
			{Date: now.AddDate(-3, 0, 0), Total: d("50"), Count: 1},
		},
		Costs: []repository.ProductCostInput{{
			ProductID:     "p1",
			SKU:           "CR-01",
			ProductName:   "Crema",
			Price:         d("200"),
			BOM:           []reporting.BOMLine{{Quantity: d("2"), UnitCost: d("10")}},
			LatestLotCost: d("30"),
		}},
		Stats: []entity.ProductStatistics{{ProductID: "p1", ProductName: "Crema", UnitsSold: d("4"), Revenue: d("800"), SalesCount: 3}},
	}
	uc := analytics.NewDashboardUseCase(repo, nil, time.UTC)

	out, err := uc.Get(context.Background(), nil, nil)
	require.NoError(t, err)

	require.Len(t, out.Days, 30)
	require.Len(t, out.Months, 12)
	last := out.Days[len(out.Days)-1]
	assert.Equal(t, now.Format("2006-01-02"), last.Label, "el último día es hoy")
	assert.True(t, last.Total.Equal(d("100")))
	assert.Equal(t, 2, last.Count)
	require.Len(t, out.Years, 2, "las ventas viejas solo cuentan en años")

	require.Len(t, out.Costs, 1)
	assert.True(t, out.Costs[0].Cost.Equal(d("50")), "2×10 de insumos + 30 del último lote")
	assert.True(t, out.Costs[0].MarginPct.Equal(d("75")))

	require.Len(t, out.Statistics, 1)
	assert.Equal(t, 3, out.Statistics[0].SalesCount)

	assert.True(t, repo.Since.IsZero(), "los años necesitan todo el historial")
	assert.InDelta(t, 30*24, repo.StatsTo.Sub(repo.StatsFrom).Hours(), 0.01)
}

func TestDashboard_RangoInvalido(t *testing.T) {
	uc := analytics.NewDashboardUseCase(&fakes.AnalyticsRepo{}, nil, time.UTC)
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)

	_, err := uc.Get(context.Background(), &from, &to)
	assert.Error(t, err)
}

func TestDashboard_PropagaErrorDelRepositorio(t *testing.T) {
	boom := errors.New("sin conexión")
	uc := analytics.NewDashboardUseCase(&fakes.AnalyticsRepo{Err: boom}, nil, time.UTC)

	_, err := uc.Get(context.Background(), nil, nil)
	assert.True(t, errors.Is(err, boom))
}

func TestDashboard_ExportArmaUnaHojaPorSeccion(t *testing.T) {
	repo := &fakes.AnalyticsRepo{
		Costs: []repository.ProductCostInput{{ProductID: "p1", SKU: "CR-01", ProductName: "Crema", Price: d("100")}},
	}
	exp := &captureExporter{}
	uc := analytics.NewDashboardUseCase(repo, exp, time.UTC)

	b, err := uc.Export(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), b)

	require.Len(t, exp.sheets, 5)
	assert.Equal(t, "Costos", exp.sheets[3].Name)
	require.Len(t, exp.sheets[3].Rows, 1)
	assert.Equal(t, "CR-01", exp.sheets[3].Rows[0][0])
	assert.Len(t, exp.sheets[0].Rows, 30)
}
