package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea pedida. Sin UnitPrice se resuelve por lista de precios o tipo de venta.
type SaleItemRequest struct {
	ProductID string           `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal  `json:"quantity" validate:"gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"omitempty,gte=0"`
}

// CreateSaleRequest entrada para registrar una venta.
type CreateSaleRequest struct {
	CustomerID    *string           `json:"customer_id" validate:"omitempty,uuid"`
	CustomerName  string            `json:"customer_name" validate:"max=200"`
	CustomerEmail string            `json:"customer_email" validate:"omitempty,email"`
	Date          *time.Time        `json:"date"`
	SaleType      string            `json:"sale_type" validate:"omitempty,oneof=publico minorista mayorista"`
	Channel       string            `json:"channel" validate:"omitempty,oneof=local online"`
	Status        string            `json:"status"`
	PaymentMethod string            `json:"payment_method" validate:"max=60"`
	PriceListID   *string           `json:"price_list_id" validate:"omitempty,uuid"`
	TaxRate       decimal.Decimal   `json:"tax_rate" validate:"gte=0"` // fracción: 0.21 = 21%
	Items         []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateSaleStatusRequest cambio de estado.
type UpdateSaleStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SaleItemResponse línea de venta con el lote asignado.
type SaleItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	LotID       string          `json:"lot_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID            string             `json:"id"`
	CustomerID    *string            `json:"customer_id,omitempty"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email,omitempty"`
	Date          time.Time          `json:"date"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Tax           decimal.Decimal    `json:"tax"`
	Total         decimal.Decimal    `json:"total"`
	SaleType      string             `json:"sale_type"`
	Channel       string             `json:"channel"`
	Status        string             `json:"status"`
	PaymentMethod string             `json:"payment_method,omitempty"`
	PaymentID     string             `json:"payment_id,omitempty"`
	PaidAt        *time.Time         `json:"paid_at,omitempty"`
	PriceListID   *string            `json:"price_list_id,omitempty"`
	Items         []SaleItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// CheckoutResponse redirección al checkout del proveedor de pagos.
type CheckoutResponse struct {
	SaleID       string `json:"sale_id"`
	PreferenceID string `json:"preference_id"`
	InitPoint    string `json:"init_point"`
}

// WebhookNotification notificación del proveedor. Acepta ambos formatos (type/data.id y topic/id).
type WebhookNotification struct {
	Type   string `json:"type"`
	Topic  string `json:"topic"`
	Action string `json:"action"`
	ID     string `json:"id"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`

	// Cabeceras y query, completados por el handler.
	Signature string `json:"-"`
	RequestID string `json:"-"`
}

// EventType devuelve type o, en el formato viejo, topic.
func (n WebhookNotification) EventType() string {
	if n.Type != "" {
		return n.Type
	}
	return n.Topic
}

// ResourceID devuelve data.id o, en el formato viejo, id.
func (n WebhookNotification) ResourceID() string {
	if n.Data.ID != "" {
		return n.Data.ID
	}
	return n.ID
}
