package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrPermissionDenied   = errors.New("permiso denegado por la política de acceso")
	ErrConflict           = errors.New("conflicto con el estado actual")

	ErrInsufficientStock       = errors.New("stock insuficiente")
	ErrAllocationIntegrity     = errors.New("inconsistencia en la asignación de lotes")
	ErrProcedureNotFound       = errors.New("procedimiento remoto no encontrado")
	ErrSameWarehouseTransfer   = errors.New("el depósito destino es el mismo que el de origen")
	ErrInsufficientSourceStock = errors.New("el lote origen no tiene stock suficiente")

	ErrPaymentVerificationFailed = errors.New("no se pudo verificar el pago con el proveedor")
	ErrUnknownWebhookEvent       = errors.New("evento de webhook desconocido")
)

// InsufficientStockError detalla el faltante de un producto. errors.Is(err, ErrInsufficientStock) == true.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("stock insuficiente para %q: solicitado %s, disponible %s",
		name, e.Requested.String(), e.Available.String())
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// AllocationIntegrityError se produce cuando la asignación no cubre lo solicitado pese a que
// la verificación previa pasó (snapshot obsoleto o decremento rechazado por la base).
type AllocationIntegrityError struct {
	ProductID string
	LotID     string
	Remainder decimal.Decimal
}

func (e *AllocationIntegrityError) Error() string {
	if e.LotID != "" {
		return fmt.Sprintf("inconsistencia de asignación: el lote %s ya no tiene la cantidad asignada (producto %s)", e.LotID, e.ProductID)
	}
	return fmt.Sprintf("inconsistencia de asignación: quedaron %s unidades sin asignar (producto %s)", e.Remainder.String(), e.ProductID)
}

func (e *AllocationIntegrityError) Is(target error) bool { return target == ErrAllocationIntegrity }

// ProcedureNotFoundError indica que un procedimiento remoto no está desplegado en la base.
// Remedy contiene la definición SQL exacta a ejecutar para corregirlo.
type ProcedureNotFoundError struct {
	Procedure string
	Hint      string
	Remedy    string
}

func (e *ProcedureNotFoundError) Error() string {
	return fmt.Sprintf("el procedimiento %s no existe en la base de datos", e.Procedure)
}

func (e *ProcedureNotFoundError) Is(target error) bool { return target == ErrProcedureNotFound }

// DBError error de la base no clasificado, con el código y la pista originales.
type DBError struct {
	Code    string
	Message string
	Hint    string
	Cause   error
}

func (e *DBError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (código %s)", e.Message, e.Code)
}

func (e *DBError) Unwrap() error { return e.Cause }
