package entity

import "time"

// Customer cliente registrado. Las ventas de mostrador pueden no tener cliente.
type Customer struct {
	ID        string
	Name      string
	TaxID     string // CUIT/DNI, opcional
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
