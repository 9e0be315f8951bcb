package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/tienda-erp-api/pkg/logger"
)

// AccessLog registra cada petición con método, ruta, estado y latencia.
// El request id lo deja el middleware requestid de Fiber en la cabecera de respuesta.
func AccessLog(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error().Err(err)
		}
		ev.Str("request_id", string(c.Response().Header.Peek(fiber.HeaderXRequestID))).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("request")
		return err
	}
}
