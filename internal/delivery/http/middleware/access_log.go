package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const HeaderRequestID = "X-Request-ID"

type AccessLogMiddleware struct {
	logger zerolog.Logger
}

func NewAccessLogMiddleware(logger zerolog.Logger) *AccessLogMiddleware {
	return &AccessLogMiddleware{logger: logger.With().Str("component", "access").Logger()}
}

// Middleware tags each request with an id (reusing the caller's) and logs one
// line when it finishes.
func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)

		err := c.Next()

		status := c.Response().StatusCode()
		ev := m.logger.Info()
		if status >= fiber.StatusInternalServerError {
			ev = m.logger.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = m.logger.Warn()
		}

		ev.Str("rid", rid).
			Str("ip", c.IP()).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int("req_bytes", c.Request().Header.ContentLength()).
			Int("resp_bytes", len(c.Response().Body())).
			Str("ua", c.Get("User-Agent")).
			Msg("http access")

		return err
	}
}
