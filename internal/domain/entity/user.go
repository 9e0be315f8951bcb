package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// User representa un usuario del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Roles        []string
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole informa si el usuario tiene el rol indicado.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ValidRole informa si r es un rol conocido.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleBodeguero || r == RoleVendedor
}

// Estados de una solicitud de acceso.
const (
	AccessRequestPending  = "pendiente"
	AccessRequestApproved = "aprobada"
	AccessRequestRejected = "rechazada"
)

// AccessRequest solicitud pública de alta de usuario, aprobada o rechazada por un admin.
type AccessRequest struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Message      string
	Status       string
	ReviewedBy   *string
	ReviewedAt   *time.Time
	CreatedAt    time.Time
}
