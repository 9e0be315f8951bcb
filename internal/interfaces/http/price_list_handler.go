package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/pricing"
)

// PriceListHandler administra listas de precios (protegido) y las publica en el portal (público).
type PriceListHandler struct {
	uc     *pricing.PriceListUseCase
	portal *pricing.PortalUseCase
}

// NewPriceListHandler construye el handler.
func NewPriceListHandler(uc *pricing.PriceListUseCase, portal *pricing.PortalUseCase) *PriceListHandler {
	return &PriceListHandler{uc: uc, portal: portal}
}

// Create godoc
// @Summary      Crear lista de precios
// @Tags         price-lists
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PriceListRequest  true  "Lista"
// @Success      201   {object}  dto.PriceListResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/price-lists [post]
func (h *PriceListHandler) Create(c *fiber.Ctx) error {
	var in dto.PriceListRequest
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
// @Summary      Listar listas de precios
// @Tags         price-lists
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PriceListResponse
// @Router       /api/price-lists [get]
func (h *PriceListHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener lista con sus precios propios
// @Tags         price-lists
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la lista"
// @Success      200  {object}  dto.PriceListResponse
// @Router       /api/price-lists/{id} [get]
func (h *PriceListHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar lista de precios
// @Tags         price-lists
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la lista"
// @Param        body  body  dto.PriceListRequest  true  "Lista"
// @Success      200   {object}  dto.PriceListResponse
// @Router       /api/price-lists/{id} [put]
func (h *PriceListHandler) Update(c *fiber.Ctx) error {
	var in dto.PriceListRequest
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
// @Summary      Eliminar lista de precios
// @Tags         price-lists
// @Security     Bearer
// @Param        id   path  string  true  "ID de la lista"
// @Success      204
// @Router       /api/price-lists/{id} [delete]
func (h *PriceListHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetItem godoc
// @Summary      Fijar precio de un producto en la lista
// @Tags         price-lists
// @Security     Bearer
// @Accept       json
// @Param        id    path  string  true  "ID de la lista"
// @Param        body  body  dto.PriceListItemRequest  true  "Producto y precio"
// @Success      204
// @Router       /api/price-lists/{id}/items [put]
func (h *PriceListHandler) SetItem(c *fiber.Ctx) error {
	var in dto.PriceListItemRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	if err := h.uc.SetItemPrice(c.UserContext(), c.Params("id"), in); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveItem godoc
// @Summary      Quitar precio propio de un producto
// @Tags         price-lists
// @Security     Bearer
// @Param        id          path  string  true  "ID de la lista"
// @Param        product_id  path  string  true  "ID del producto"
// @Success      204
// @Router       /api/price-lists/{id}/items/{product_id} [delete]
func (h *PriceListHandler) RemoveItem(c *fiber.Ctx) error {
	if err := h.uc.RemoveItem(c.UserContext(), c.Params("id"), c.Params("product_id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ── Portal público ────────────────────────────────────────────────────────────

// Portal godoc
// @Summary      Lista de precios publicada
// @Description  Precios efectivos y disponibilidad. La búsqueda ignora acentos y mayúsculas.
// @Tags         portal
// @Produce      json
// @Param        id  path   string  true   "ID de la lista"
// @Param        q   query  string  false  "Búsqueda"
// @Success      200  {object}  dto.PortalPriceList
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/portal/price-lists/{id} [get]
func (h *PriceListHandler) Portal(c *fiber.Ctx) error {
	out, err := h.portal.Get(c.UserContext(), c.Params("id"), c.Query("q"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "public, max-age=60")
	return c.JSON(out)
}

// PortalPDF godoc
// @Summary      Lista de precios publicada en PDF
// @Tags         portal
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la lista"
// @Success      200  {file}  binary
// @Router       /api/portal/price-lists/{id}/pdf [get]
func (h *PriceListHandler) PortalPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.portal.PDF(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, pdf, mimePDF, fmt.Sprintf("lista-precios-%s.pdf", id))
}
