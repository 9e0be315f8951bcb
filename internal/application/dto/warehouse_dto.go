package dto

import "time"

// CreateWarehouseRequest entrada para crear un depósito.
type CreateWarehouseRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=120"`
	Address string `json:"address" validate:"max=255"`
}

// UpdateWarehouseRequest entrada para actualizar un depósito.
type UpdateWarehouseRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=120"`
	Address *string `json:"address" validate:"omitempty,max=255"`
}

// WarehouseResponse salida de un depósito.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
