package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/usecase"
)

// ComexHandler cotizaciones de exportación.
type ComexHandler struct {
	uc *usecase.ComexUseCase
}

// NewComexHandler construye el handler.
func NewComexHandler(uc *usecase.ComexUseCase) *ComexHandler {
	return &ComexHandler{uc: uc}
}

// Quote godoc
// @Summary      Cotizar exportación (FOB / CIF)
// @Description  Cajas, peso bruto y volumétrico, flete, seguro y CIF en moneda extranjera.
// @Tags         comex
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.QuoteRequest  true  "Producto, unidades y parámetros"
// @Success      200   {object}  dto.QuoteResponse
// @Failure      400   {object}  dto.ErrorResponse  "Producto sin datos de exportación"
// @Router       /api/comex/quote [post]
func (h *ComexHandler) Quote(c *fiber.Ctx) error {
	var in dto.QuoteRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.Quote(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
