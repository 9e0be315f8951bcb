package entity

import "time"

// Warehouse representa un depósito. Como máximo uno puede ser el predeterminado.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
