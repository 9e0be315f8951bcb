package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/tienda-erp-api/internal/application/analytics"
	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
)

// DashboardHandler maneja los endpoints del tablero.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Get godoc
// @Summary      Tablero de ventas, costos y márgenes
// @Description  Histogramas por día (30), mes (12) y año; costo y margen por producto;
// @Description  estadísticas por producto en [from, to) (por defecto últimos 30 días).
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to    query  string  false  "Hasta (YYYY-MM-DD o RFC3339)"
// @Success      200   {object}  dto.DashboardResponse
// @Router       /api/dashboard [get]
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	from, to, err := dateRangeFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_DATE", Message: err.Error()})
	}
	out, err := h.uc.Get(c.UserContext(), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Tablero en XLSX
// @Tags         dashboard
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        from  query  string  false  "Desde"
// @Param        to    query  string  false  "Hasta"
// @Success      200   {file}  binary
// @Router       /api/dashboard/export [get]
func (h *DashboardHandler) Export(c *fiber.Ctx) error {
	from, to, err := dateRangeFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_DATE", Message: err.Error()})
	}
	b, err := h.uc.Export(c.UserContext(), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, b, mimeXLSX, fmt.Sprintf("tablero-%s.xlsx", time.Now().Format("20060102")))
}
