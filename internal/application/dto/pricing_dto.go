package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceListRequest alta o modificación de una lista de precios.
type PriceListRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=500"`
	Public      bool   `json:"public"`
}

// PriceListItemRequest precio de un producto en la lista.
type PriceListItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
}

// PriceListItemResponse ítem de la lista.
type PriceListItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductSKU  string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
}

// PriceListResponse salida de una lista de precios.
type PriceListResponse struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Public      bool                    `json:"public"`
	Items       []PriceListItemResponse `json:"items,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// PortalItem producto tal como lo ve el cliente en el portal.
type PortalItem struct {
	ProductID   string          `json:"product_id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Overridden  bool            `json:"overridden"` // precio propio de la lista
	InStock     bool            `json:"in_stock"`
}

// PortalPriceList lista publicada en el portal.
type PortalPriceList struct {
	ListID      string       `json:"list_id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
	Items       []PortalItem `json:"items"`
}
