package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta (conjunto cerrado).
const (
	SaleStatusPending   = "Pendiente"
	SaleStatusPaid      = "Pagada"
	SaleStatusShipped   = "Enviada"
	SaleStatusCancelled = "Cancelada"
	SaleStatusAbandoned = "Carrito Abandonado"
)

// Canales de venta.
const (
	ChannelLocal  = "local"
	ChannelOnline = "online"
)

// Sale cabecera de una venta. Subtotal == Σ item.Quantity × item.UnitPrice.
type Sale struct {
	ID            string
	CustomerID    *string // nil = consumidor final
	CustomerName  string
	CustomerEmail string
	Date          time.Time
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	SaleType      string
	Channel       string
	Status        string
	PaymentMethod string
	PaymentID     string
	PreferenceID  string
	PaidAt        *time.Time
	PriceListID   *string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Items         []SaleItem
}

// SaleItem línea de venta asignada a un lote concreto.
type SaleItem struct {
	ID          string
	SaleID      string
	ProductID   string
	ProductName string // solo lectura (join)
	LotID       string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Position    int
}

// LineTotal cantidad × precio unitario.
func (i SaleItem) LineTotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// ValidSaleStatus informa si s pertenece al conjunto de estados.
func ValidSaleStatus(s string) bool {
	switch s {
	case SaleStatusPending, SaleStatusPaid, SaleStatusShipped, SaleStatusCancelled, SaleStatusAbandoned:
		return true
	}
	return false
}

// PayableStatus informa si una venta en estado s puede pasar a Pagada por un pago confirmado.
func PayableStatus(s string) bool {
	return s == SaleStatusPending || s == SaleStatusAbandoned
}
