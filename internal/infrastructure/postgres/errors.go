package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/tienda-erp-api/internal/domain"
)

// SQLSTATE usados por el adaptador.
const (
	codeUniqueViolation       = "23505"
	codeForeignKeyViolation   = "23503"
	codeCheckViolation        = "23514"
	codeInvalidParameterValue = "22023"
	codeInsufficientPrivilege = "42501"
	codeUndefinedFunction     = "42883"
	codeRaiseException        = "P0001"
	codeNoDataFound           = "P0002"
)

// Código que devuelve la capa REST de Supabase cuando la función no está en su caché de esquema.
const postgrestFunctionNotFound = "PGRST202"

// Mensajes de RAISE EXCEPTION de los procedimientos.
const (
	msgSameWarehouse     = "SAME_WAREHOUSE_TRANSFER"
	msgInsufficientStock = "INSUFFICIENT_SOURCE_STOCK"
	msgPermissionDenied  = "PERMISSION_DENIED"
)

// mapPgError traduce un error de PostgreSQL a errores de dominio.
// procedure es el nombre del procedimiento invocado ("" si la sentencia no es una llamada remota).
func mapPgError(err error, procedure string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		if procedure != "" && strings.Contains(err.Error(), postgrestFunctionNotFound) {
			return procedureNotFound(procedure)
		}
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, pgErr.ConstraintName)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: el registro está referenciado (%s)", domain.ErrConflict, pgErr.ConstraintName)
	case codeCheckViolation:
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
	case codeInvalidParameterValue:
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, pgErr.Message)
	case codeInsufficientPrivilege:
		return domain.ErrPermissionDenied
	case codeNoDataFound:
		return domain.ErrNotFound
	case codeUndefinedFunction:
		if procedure != "" {
			return procedureNotFound(procedure)
		}
	case codeRaiseException:
		switch pgErr.Message {
		case msgSameWarehouse:
			return domain.ErrSameWarehouseTransfer
		case msgInsufficientStock:
			return domain.ErrInsufficientSourceStock
		case msgPermissionDenied:
			return domain.ErrPermissionDenied
		}
	}
	if strings.Contains(pgErr.Message, postgrestFunctionNotFound) && procedure != "" {
		return procedureNotFound(procedure)
	}
	return &domain.DBError{Code: pgErr.Code, Message: pgErr.Message, Hint: pgErr.Hint, Cause: err}
}

func procedureNotFound(procedure string) *domain.ProcedureNotFoundError {
	return &domain.ProcedureNotFoundError{
		Procedure: procedure,
		Hint:      "Ejecutá la definición de Remedy en el editor SQL de la base y reintentá la operación.",
		Remedy:    ProcedureSQL(procedure),
	}
}
