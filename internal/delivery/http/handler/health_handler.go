package handler

import (
	"context"
	"time"

	"swipehire/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// Pinger is anything the health check can ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	cache Pinger
}

func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

// Health fails only when the database is down. A missing cache is reported
// as degraded since requests still work without it.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	data := map[string]any{"status": "healthy", "database": "up", "cache": "up"}

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			data["status"] = "unhealthy"
			data["database"] = "down"
			return response.Error(c, fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, data)
		}
	}
	if h.cache == nil || h.cache.Ping(ctx) != nil {
		data["status"] = "degraded"
		data["cache"] = "down"
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}
