package reporting

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	dayBuckets   = 30
	monthBuckets = 12
)

// SalePoint total vendido en un instante (o ya agregado por día).
type SalePoint struct {
	Date  time.Time
	Total decimal.Decimal
	Count int
}

// Bucket barra de un histograma.
type Bucket struct {
	Label string
	Start time.Time
	Total decimal.Decimal
	Count int
}

// Histograms ventas agrupadas por día, mes y año.
type Histograms struct {
	Days   []Bucket // últimos 30 días incluido hoy
	Months []Bucket // últimos 12 meses incluido el actual
	Years  []Bucket // cada año con ventas, ascendente
}

// BucketSales agrupa las ventas por límites de calendario calculados desde now,
// en la zona horaria de now. Ventas fuera de las ventanas de días/meses solo cuentan en años.
func BucketSales(sales []SalePoint, now time.Time) Histograms {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	firstDay := today.AddDate(0, 0, -(dayBuckets - 1))
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	firstMonth := thisMonth.AddDate(0, -(monthBuckets - 1), 0)

	h := Histograms{
		Days:   make([]Bucket, dayBuckets),
		Months: make([]Bucket, monthBuckets),
	}
	dayIdx := make(map[string]int, dayBuckets)
	for i := range h.Days {
		start := firstDay.AddDate(0, 0, i)
		h.Days[i] = Bucket{Label: start.Format("2006-01-02"), Start: start, Total: decimal.Zero}
		dayIdx[h.Days[i].Label] = i
	}
	monthIdx := make(map[string]int, monthBuckets)
	for i := range h.Months {
		start := firstMonth.AddDate(0, i, 0)
		h.Months[i] = Bucket{Label: start.Format("2006-01"), Start: start, Total: decimal.Zero}
		monthIdx[h.Months[i].Label] = i
	}
	years := map[int]*Bucket{}

	for _, s := range sales {
		t := s.Date.In(loc)
		count := s.Count
		if count == 0 {
			count = 1
		}
		if i, ok := dayIdx[t.Format("2006-01-02")]; ok {
			h.Days[i].Total = h.Days[i].Total.Add(s.Total)
			h.Days[i].Count += count
		}
		if i, ok := monthIdx[t.Format("2006-01")]; ok {
			h.Months[i].Total = h.Months[i].Total.Add(s.Total)
			h.Months[i].Count += count
		}
		y, ok := years[t.Year()]
		if !ok {
			start := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, loc)
			y = &Bucket{Label: start.Format("2006"), Start: start, Total: decimal.Zero}
			years[t.Year()] = y
		}
		y.Total = y.Total.Add(s.Total)
		y.Count += count
	}

	h.Years = make([]Bucket, 0, len(years))
	for _, y := range years {
		h.Years = append(h.Years, *y)
	}
	sort.Slice(h.Years, func(i, j int) bool { return h.Years[i].Start.Before(h.Years[j].Start) })
	return h
}
