package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/erp-core/pkg/logger"
)

// HeaderRequestID cabecera de correlación. Se respeta la del cliente o se genera una.
const HeaderRequestID = "X-Request-Id"

// RequestLogger adjunta un logger con request_id al contexto y registra cada request al terminar.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Set(HeaderRequestID, rid)
		zl := log.With().Str("request_id", rid).Logger()
		c.SetUserContext(logger.WithContext(c.UserContext(), zl))

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
		ev := logger.FromContext(c.UserContext()).Info()
		if status >= fiber.StatusInternalServerError {
			ev = logger.FromContext(c.UserContext()).Error().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
		return err
	}
}
