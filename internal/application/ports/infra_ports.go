package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Locker serializa trabajo por clave entre instancias. release nunca es nil si err == nil.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// PaymentApprovedEmail datos del email de pago aprobado.
type PaymentApprovedEmail struct {
	To         string
	SaleID     string
	PaymentID  string
	Amount     decimal.Decimal
	Currency   string
	PayerEmail string
	ApprovedAt time.Time
}

// EmailQueue encola emails para el pool de workers.
type EmailQueue interface {
	EnqueuePaymentApproved(ctx context.Context, email PaymentApprovedEmail) error
}

// PriceCache caché de la lista de precios publicada en el portal (JSON serializado).
type PriceCache interface {
	// Get devuelve (nil, false, nil) si la clave no está.
	Get(ctx context.Context, listID string) ([]byte, bool, error)
	Set(ctx context.Context, listID string, payload []byte) error
	Invalidate(ctx context.Context, listID string) error
}

// PDFRenderer genera documentos PDF.
type PDFRenderer interface {
	PriceList(list PriceListDocument) ([]byte, error)
	SaleReceipt(receipt SaleReceiptDocument) ([]byte, error)
}

// PriceListDocument contenido del PDF de lista de precios.
type PriceListDocument struct {
	Title       string
	Description string
	GeneratedAt time.Time
	Rows        []PriceListRow
}

// PriceListRow fila del PDF de lista de precios.
type PriceListRow struct {
	SKU     string
	Name    string
	Price   decimal.Decimal
	InStock bool
}

// SaleReceiptDocument contenido del comprobante de venta.
type SaleReceiptDocument struct {
	SaleID       string
	Date         time.Time
	CustomerName string
	Status       string
	Lines        []SaleReceiptLine
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
}

// SaleReceiptLine línea del comprobante.
type SaleReceiptLine struct {
	Description string
	LotID       string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// SpreadsheetSheet hoja de una planilla: encabezados y filas.
type SpreadsheetSheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// SpreadsheetExporter genera planillas XLSX.
type SpreadsheetExporter interface {
	Export(sheets []SpreadsheetSheet) ([]byte, error)
}
