package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
)

// writeError traduce un error de aplicación a status HTTP + dto.ErrorResponse.
// Los errores no clasificados se registran y se responden como 500.
func writeError(c *fiber.Ctx, err error) error {
	var (
		stockErr *domain.InsufficientStockError
		procErr  *domain.ProcedureNotFoundError
		dbErr    *domain.DBError
	)
	switch {
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: stockErr.Error(),
			Details: map[string]string{
				"product_id": stockErr.ProductID,
				"requested":  stockErr.Requested.String(),
				"available":  stockErr.Available.String(),
			},
		})
	case errors.As(err, &procErr):
		log.Error().Str("procedure", procErr.Procedure).Msg("procedimiento remoto no desplegado")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code:    "PROCEDURE_NOT_FOUND",
			Message: procErr.Error(),
			Hint:    procErr.Hint,
			Remedy:  procErr.Remedy,
		})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()})
	case errors.Is(err, domain.ErrSameWarehouseTransfer):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "SAME_WAREHOUSE", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientSourceStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_SOURCE_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrAllocationIntegrity):
		log.Error().Err(err).Msg("inconsistencia de asignación de lotes")
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALLOCATION_INTEGRITY", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrPermissionDenied):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, domain.ErrPaymentVerificationFailed):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "PAYMENT_PROVIDER", Message: err.Error()})
	case errors.As(err, &dbErr):
		log.Error().Err(err).Str("pg_code", dbErr.Code).Msg("error de base de datos")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "DB_ERROR", Message: dbErr.Message, Hint: dbErr.Hint})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error no clasificado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
