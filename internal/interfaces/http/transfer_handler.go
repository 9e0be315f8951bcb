package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/inventory"
)

// TransferHandler maneja transferencias de stock entre depósitos.
type TransferHandler struct {
	uc *inventory.TransferUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *inventory.TransferUseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Transfer godoc
// @Summary      Transferir stock de un lote a otro depósito
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "Lote origen, depósito destino y cantidad"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse  "Mismo depósito"
// @Failure      409   {object}  dto.ErrorResponse  "Stock insuficiente en el lote origen"
// @Router       /api/inventory/transfers [post]
func (h *TransferHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.Transfer(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// History godoc
// @Summary      Historial de transferencias
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        limit       query  int     false  "Límite"  default(50)
// @Success      200         {array}  dto.TransferResponse
// @Router       /api/inventory/transfers [get]
func (h *TransferHandler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	out, err := h.uc.History(c.UserContext(), c.Query("product_id"), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
