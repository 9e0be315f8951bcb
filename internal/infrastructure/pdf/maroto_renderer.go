// Package pdf genera los documentos PDF de la tienda con Maroto v2:
// la lista de precios pública y el comprobante de venta.
//
// Layout de la lista de precios (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título de la lista      │  Fecha de generación     │
//	│  Descripción                                                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Precio | Disponible                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
)

var _ ports.PDFRenderer = (*MarotoRenderer)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// MarotoRenderer implementa ports.PDFRenderer usando Maroto v2.
type MarotoRenderer struct {
	storeName string
}

// NewMarotoRenderer construye el renderer; storeName aparece como autor y encabezado.
func NewMarotoRenderer(storeName string) *MarotoRenderer {
	return &MarotoRenderer{storeName: storeName}
}

func (g *MarotoRenderer) newDocument(title string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(g.storeName, true).
		Build()
	return maroto.New(cfg)
}

// ── Lista de precios ──────────────────────────────────────────────────────────

// PriceList genera el PDF de la lista de precios.
func (g *MarotoRenderer) PriceList(doc ports.PriceListDocument) ([]byte, error) {
	m := g.newDocument(doc.Title)

	m.AddRows(row.New(18).Add(
		col.New(8).Add(
			text.New(doc.Title, props.Text{Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1}),
			text.New(g.storeName, props.Text{Size: 9, Top: 10, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Generada: "+doc.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	))
	if doc.Description != "" {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New(doc.Description, props.Text{Size: 9, Top: 1}),
		)))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(headerRow(
		headerCol{"SKU", 2, align.Left},
		headerCol{"Producto", 6, align.Left},
		headerCol{"Precio", 2, align.Right},
		headerCol{"Disponible", 2, align.Center},
	))
	for _, r := range doc.Rows {
		stock := "Sí"
		if !r.InStock {
			stock = "Sin stock"
		}
		m.AddRows(row.New(7).Add(
			col.New(2).Add(text.New(r.SKU, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(6).Add(text.New(r.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New("$"+FormatMoney(r.Price), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(stock, props.Text{Size: 8, Align: align.Center, Top: 1})),
		))
	}
	if len(doc.Rows) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("La lista no tiene productos.", props.Text{Size: 9, Align: align.Center, Color: colorGray, Top: 3}),
		)))
	}
	return generate(m)
}

// ── Comprobante de venta ──────────────────────────────────────────────────────

// SaleReceipt genera el comprobante de una venta con sus líneas por lote.
func (g *MarotoRenderer) SaleReceipt(r ports.SaleReceiptDocument) ([]byte, error) {
	m := g.newDocument("Comprobante de venta")

	m.AddRows(row.New(18).Add(
		col.New(7).Add(
			text.New(g.storeName, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Comprobante no válido como factura", props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE VENTA", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(shortID(r.SaleID), props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Fecha: "+r.Date.Format("02/01/2006"), props.Text{Size: 8, Align: align.Right, Top: 14, Color: colorGray}),
		),
	))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(row.New(10).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Cliente: %s   |   Estado: %s", nonEmpty(r.CustomerName, "Consumidor final"), r.Status), props.Text{Size: 9, Top: 2}),
	)))

	m.AddRows(headerRow(
		headerCol{"Cant.", 1, align.Center},
		headerCol{"Descripción", 5, align.Left},
		headerCol{"Lote", 2, align.Left},
		headerCol{"Precio Unit.", 2, align.Right},
		headerCol{"Subtotal", 2, align.Right},
	))
	for _, l := range r.Lines {
		m.AddRows(row.New(7).Add(
			col.New(1).Add(text.New(l.Quantity.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(l.Description, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(shortID(l.LotID), props.Text{Size: 7, Top: 1, Left: 1, Color: colorGray})),
			col.New(2).Add(text.New("$"+FormatMoney(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+FormatMoney(l.Total), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	label := func(s string, grand bool) core.Component {
		p := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2}
		if grand {
			p.Size, p.Color = 10, colorPrimary
		}
		return text.New(s, p)
	}
	m.AddRows(
		row.New(6).Add(col.New(9).Add(label("Subtotal:", false)), col.New(3).Add(label("$"+FormatMoney(r.Subtotal), false))),
		row.New(6).Add(col.New(9).Add(label("Impuestos:", false)), col.New(3).Add(label("$"+FormatMoney(r.Tax), false))),
		row.New(8).Add(col.New(9).Add(label("TOTAL:", true)), col.New(3).Add(label("$"+FormatMoney(r.Total), true))),
	)
	return generate(m)
}

// ── helpers ───────────────────────────────────────────────────────────────────

type headerCol struct {
	label string
	size  int
	align align.Type
}

// headerRow: cabecera de tabla con texto blanco en negrita.
func headerRow(cols ...headerCol) core.Row {
	out := make([]core.Col, 0, len(cols))
	for _, c := range cols {
		out = append(out, col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: c.align,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})).WithStyle(&props.Cell{BackgroundColor: colorPrimary}))
	}
	return row.New(8).Add(out...)
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}

// FormatMoney formatea con punto de miles y coma decimal: 1234.5 → "1.234,50".
func FormatMoney(v decimal.Decimal) string {
	s := v.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	n := len(intPart)
	buf := make([]byte, 0, n+n/3+3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := string(buf) + "," + frac
	if neg {
		return "-" + out
	}
	return out
}
