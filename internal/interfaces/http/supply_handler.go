package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/usecase"
)

// SupplyHandler maneja insumos.
type SupplyHandler struct {
	uc *usecase.SupplyUseCase
}

// NewSupplyHandler construye el handler.
func NewSupplyHandler(uc *usecase.SupplyUseCase) *SupplyHandler {
	return &SupplyHandler{uc: uc}
}

// Create godoc
// @Summary      Crear insumo
// @Tags         supplies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SupplyRequest  true  "Insumo"
// @Success      201   {object}  dto.SupplyResponse
// @Router       /api/supplies [post]
func (h *SupplyHandler) Create(c *fiber.Ctx) error {
	var in dto.SupplyRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar insumos
// @Tags         supplies
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.SupplyResponse
// @Router       /api/supplies [get]
func (h *SupplyHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar insumo
// @Tags         supplies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del insumo"
// @Param        body  body  dto.SupplyRequest  true  "Insumo"
// @Success      200   {object}  dto.SupplyResponse
// @Router       /api/supplies/{id} [put]
func (h *SupplyHandler) Update(c *fiber.Ctx) error {
	var in dto.SupplyRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar insumo
// @Tags         supplies
// @Security     Bearer
// @Param        id   path  string  true  "ID del insumo"
// @Success      204
// @Router       /api/supplies/{id} [delete]
func (h *SupplyHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddStock godoc
// @Summary      Ingresar stock de insumo
// @Description  El costo unitario resultante es el promedio ponderado entre el stock actual y el ingreso.
// @Tags         supplies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del insumo"
// @Param        body  body  dto.AddSupplyStockRequest  true  "Cantidad y costo"
// @Success      200   {object}  dto.SupplyResponse
// @Router       /api/supplies/{id}/stock [post]
func (h *SupplyHandler) AddStock(c *fiber.Ctx) error {
	var in dto.AddSupplyStockRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.AddStock(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
