package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/sales"
	"github.com/jhoicas/tienda-erp-api/internal/domain/repository"
)

// SaleHandler maneja ventas: alta con asignación de lotes, consulta, estado, baja y comprobante.
type SaleHandler struct {
	create *sales.CreateSaleUseCase
	uc     *sales.SaleUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(create *sales.CreateSaleUseCase, uc *sales.SaleUseCase) *SaleHandler {
	return &SaleHandler{create: create, uc: uc}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Asigna lotes por vencimiento (FEFO) y descuenta stock en una transacción.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Venta"
// @Success      201   {object}  dto.SaleResponse
// @Failure      409   {object}  dto.ErrorResponse  "Stock insuficiente"
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.create.Execute(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        status   query  string  false  "Estado"
// @Param        channel  query  string  false  "local | online"
// @Param        from     query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to       query  string  false  "Hasta (YYYY-MM-DD o RFC3339)"
// @Param        limit    query  int     false  "Límite"  default(20)
// @Param        offset   query  int     false  "Offset"  default(0)
// @Success      200      {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	from, to, err := dateRangeFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_DATE", Message: err.Error()})
	}
	page := pageFromQuery(c)
	out, err := h.uc.List(c.UserContext(), repository.SaleFilter{
		Status:  c.Query("status"),
		Channel: c.Query("channel"),
		From:    from,
		To:      to,
		Limit:   page.Limit,
		Offset:  page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta con sus ítems
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Cambiar estado de la venta
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la venta"
// @Param        body  body  dto.UpdateSaleStatusRequest  true  "Pendiente | Pagada | Enviada | Cancelada | Carrito Abandonado"
// @Success      200   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/status [patch]
func (h *SaleHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateSaleStatusRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateStatus(c.UserContext(), c.Params("id"), in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar venta restituyendo stock
// @Tags         sales
// @Security     Bearer
// @Param        id   path  string  true  "ID de la venta"
// @Success      204
// @Failure      503  {object}  dto.ErrorResponse  "Procedimiento no desplegado (remedy trae el SQL)"
// @Router       /api/sales/{id} [delete]
func (h *SaleHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Receipt godoc
// @Summary      Comprobante PDF de la venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}  binary
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.uc.Receipt(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, pdf, mimePDF, fmt.Sprintf("venta-%s.pdf", id))
}

// dateRangeFromQuery lee from/to en formato fecha o RFC3339.
func dateRangeFromQuery(c *fiber.Ctx) (from, to *time.Time, err error) {
	if from, err = parseDateParam(c.Query("from")); err != nil {
		return nil, nil, fmt.Errorf("from: %w", err)
	}
	if to, err = parseDateParam(c.Query("to")); err != nil {
		return nil, nil, fmt.Errorf("to: %w", err)
	}
	return from, to, nil
}

func parseDateParam(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("fecha inválida %q", s)
	}
	return &t, nil
}

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// sendFile responde un archivo descargable.
func sendFile(c *fiber.Ctx, body []byte, contentType, filename string) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(body)
}
