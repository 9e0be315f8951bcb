package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/payments"
	"github.com/jhoicas/tienda-erp-api/pkg/logger"
)

// PaymentHandler checkout de Mercado Pago y recepción de webhooks.
type PaymentHandler struct {
	checkout *payments.CheckoutUseCase
	webhook  *payments.WebhookUseCase
	log      *logger.Logger
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(checkout *payments.CheckoutUseCase, webhook *payments.WebhookUseCase, log *logger.Logger) *PaymentHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &PaymentHandler{checkout: checkout, webhook: webhook, log: log.Component("http-payments")}
}

// Checkout godoc
// @Summary      Iniciar pago de una venta
// @Description  Crea la preferencia en Mercado Pago y devuelve la URL de pago (init_point).
// @Tags         payments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.CheckoutResponse
// @Failure      409  {object}  dto.ErrorResponse  "La venta no está pendiente"
// @Router       /api/sales/{id}/checkout [post]
func (h *PaymentHandler) Checkout(c *fiber.Ctx) error {
	out, err := h.checkout.Execute(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Webhook godoc
// @Summary      Notificación de Mercado Pago
// @Description  Siempre responde 200; el estado del pago se consulta al proveedor.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/webhooks/mercadopago [post]
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	var n dto.WebhookNotification
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&n); err != nil {
			h.log.Warn().Err(err).Msg("cuerpo de webhook ilegible, se usan los parámetros de la URL")
		}
	}
	// Formato por query string: ?type=payment&data.id=123 o ?topic=payment&id=123.
	if n.Type == "" {
		n.Type = c.Query("type")
	}
	if n.Topic == "" {
		n.Topic = c.Query("topic")
	}
	if n.Data.ID == "" {
		n.Data.ID = c.Query("data.id")
	}
	if n.ID == "" {
		n.ID = c.Query("id")
	}
	n.Signature = c.Get("x-signature")
	n.RequestID = c.Get("x-request-id")

	if err := h.webhook.Handle(c.UserContext(), n); err != nil {
		ev := h.log.Warn()
		if !payments.IsAcknowledged(err) {
			ev = h.log.Error()
		}
		ev.Err(err).
			Str("event_type", n.EventType()).
			Str("resource_id", n.ResourceID()).
			Msg("webhook con error, se confirma igual")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}
