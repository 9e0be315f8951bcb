// Package analytics contiene el tablero: histogramas de ventas, costos y márgenes
// por producto y estadísticas de venta por producto.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/internal/domain/reporting"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

const defaultStatsWindow = 30 * 24 * time.Hour

// DashboardUseCase arma el tablero a partir de consultas read-only.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	xlsx          ports.SpreadsheetExporter
	loc           *time.Location
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso. loc es la zona horaria del negocio
// (define dónde empieza cada día); nil = time.Local.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, xlsx ports.SpreadsheetExporter, loc *time.Location) *DashboardUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardUseCase{analyticsRepo: analyticsRepo, xlsx: xlsx, loc: loc, now: time.Now}
}

// Get construye el tablero. from/to acotan las estadísticas por producto ([from, to));
// nil = últimos 30 días.
//
// Tres consultas en paralelo:
//  1. SalesTimeline         → histogramas de días, meses y años
//  2. ProductCostInputs     → costo y margen por producto
//  3. ProductStatistics     → unidades, facturación y cantidad de ventas por producto
func (uc *DashboardUseCase) Get(ctx context.Context, from, to *time.Time) (*dto.DashboardResponse, error) {
	now := uc.now().In(uc.loc)
	statsTo := now
	if to != nil {
		statsTo = *to
	}
	statsFrom := statsTo.Add(-defaultStatsWindow)
	if from != nil {
		statsFrom = *from
	}
	if !statsFrom.Before(statsTo) {
		return nil, fmt.Errorf("dashboard: rango inválido %s - %s", statsFrom.Format(time.RFC3339), statsTo.Format(time.RFC3339))
	}

	// ── Goroutines para paralelizar las 3 consultas DB ────────────────────────
	type timelineResult struct {
		points []reporting.SalePoint
		err    error
	}
	type costsResult struct {
		inputs []repository.ProductCostInput
		err    error
	}
	type statsResult struct {
		rows []entity.ProductStatistics
		err  error
	}

	timelineCh := make(chan timelineResult, 1)
	costsCh := make(chan costsResult, 1)
	statsCh := make(chan statsResult, 1)

	go func() {
		// Desde cero: los años necesitan todo el historial.
		points, err := uc.analyticsRepo.SalesTimeline(ctx, time.Time{})
		timelineCh <- timelineResult{points, err}
	}()
	go func() {
		inputs, err := uc.analyticsRepo.ProductCostInputs(ctx)
		costsCh <- costsResult{inputs, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.ProductStatistics(ctx, statsFrom, statsTo)
		statsCh <- statsResult{rows, err}
	}()

	timeline := <-timelineCh
	costs := <-costsCh
	stats := <-statsCh

	if timeline.err != nil {
		return nil, fmt.Errorf("dashboard: ventas: %w", timeline.err)
	}
	if costs.err != nil {
		return nil, fmt.Errorf("dashboard: costos: %w", costs.err)
	}
	if stats.err != nil {
		return nil, fmt.Errorf("dashboard: estadísticas: %w", stats.err)
	}

	// ── Histogramas en la zona del negocio ────────────────────────────────────
	h := reporting.BucketSales(timeline.points, now)

	out := &dto.DashboardResponse{
		GeneratedAt: now,
		Days:        toBuckets(h.Days),
		Months:      toBuckets(h.Months),
		Years:       toBuckets(h.Years),
		Costs:       make([]dto.ProductCostDTO, 0, len(costs.inputs)),
		Statistics:  make([]dto.ProductStatisticsDTO, 0, len(stats.rows)),
	}

	// ── Costo y margen ────────────────────────────────────────────────────────
	for _, in := range costs.inputs {
		cost := reporting.ProductCost(in.BOM, in.LatestLotCost)
		out.Costs = append(out.Costs, dto.ProductCostDTO{
			ProductID:   in.ProductID,
			SKU:         in.SKU,
			ProductName: in.ProductName,
			Price:       in.Price,
			Cost:        cost.Round(2),
			MarginPct:   reporting.Margin(in.Price, cost).Round(2),
		})
	}

	for _, r := range stats.rows {
		out.Statistics = append(out.Statistics, dto.ProductStatisticsDTO{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			UnitsSold:   r.UnitsSold,
			Revenue:     r.Revenue,
			SalesCount:  r.SalesCount,
			LastSaleAt:  r.LastSaleAt,
		})
	}
	return out, nil
}

// Export genera el tablero en XLSX: una hoja por histograma, costos y estadísticas.
func (uc *DashboardUseCase) Export(ctx context.Context, from, to *time.Time) ([]byte, error) {
	if uc.xlsx == nil {
		return nil, fmt.Errorf("dashboard: exportador XLSX no configurado")
	}
	d, err := uc.Get(ctx, from, to)
	if err != nil {
		return nil, err
	}
	bucketHeaders := []string{"Período", "Total", "Ventas"}
	sheets := []ports.SpreadsheetSheet{
		{Name: "Días", Headers: bucketHeaders, Rows: bucketRows(d.Days)},
		{Name: "Meses", Headers: bucketHeaders, Rows: bucketRows(d.Months)},
		{Name: "Años", Headers: bucketHeaders, Rows: bucketRows(d.Years)},
		{Name: "Costos", Headers: []string{"SKU", "Producto", "Precio", "Costo", "Margen %"}},
		{Name: "Estadísticas", Headers: []string{"Producto", "Unidades", "Facturación", "Ventas", "Última venta"}},
	}
	for _, c := range d.Costs {
		sheets[3].Rows = append(sheets[3].Rows, []any{c.SKU, c.ProductName, c.Price.InexactFloat64(), c.Cost.InexactFloat64(), c.MarginPct.InexactFloat64()})
	}
	for _, s := range d.Statistics {
		last := ""
		if s.LastSaleAt != nil {
			last = s.LastSaleAt.In(uc.loc).Format("2006-01-02 15:04")
		}
		sheets[4].Rows = append(sheets[4].Rows, []any{s.ProductName, s.UnitsSold.InexactFloat64(), s.Revenue.InexactFloat64(), s.SalesCount, last})
	}
	return uc.xlsx.Export(sheets)
}

func toBuckets(in []reporting.Bucket) []dto.BucketDTO {
	out := make([]dto.BucketDTO, len(in))
	for i, b := range in {
		out[i] = dto.BucketDTO{Label: b.Label, Total: b.Total.Round(2), Count: b.Count}
	}
	return out
}

func bucketRows(in []dto.BucketDTO) [][]any {
	rows := make([][]any, len(in))
	for i, b := range in {
		rows[i] = []any{b.Label, b.Total.InexactFloat64(), b.Count}
	}
	return rows
}
