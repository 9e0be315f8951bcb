package dto

import "time"

// RegisterRequest alta directa de usuario (solo admin).
type RegisterRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	Name     string   `json:"name" validate:"max=120"`
	Roles    []string `json:"roles" validate:"dive,oneof=admin bodeguero vendedor"`
}

// LoginRequest credenciales.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token y usuario autenticado.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse salida de un usuario (sin hash).
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Roles     []string  `json:"roles"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateRolesRequest reemplazo de roles.
type UpdateRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,oneof=admin bodeguero vendedor"`
}

// AccessRequestCreate solicitud pública de acceso.
type AccessRequestCreate struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=120"`
	Password string `json:"password" validate:"required,min=8"`
	Message  string `json:"message" validate:"max=500"`
}

// AccessRequestResponse salida de una solicitud.
type AccessRequestResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Message   string    `json:"message,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ApproveAccessRequest roles a otorgar.
type ApproveAccessRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,oneof=admin bodeguero vendedor"`
}

// RejectAccessRequest motivo del rechazo.
type RejectAccessRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// CustomerRequest alta o modificación de cliente.
type CustomerRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	TaxID   string `json:"tax_id" validate:"max=20"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=40"`
	Address string `json:"address" validate:"max=255"`
}

// CustomerResponse salida de un cliente.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
