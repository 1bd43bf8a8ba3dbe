package routes

import (
	"swipehire/internal/delivery/http/handler"
	"swipehire/internal/delivery/http/middleware"
	"swipehire/internal/protocol"
	"swipehire/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// Registry holds every handler the server mounts. DevResume is optional.
type Registry struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Profile   *handler.ProfileHandler
	DevResume *handler.DevResumeHandler
	Feed      *ws.Handler
	AuthMw    *middleware.AuthMiddleware
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.Health.RegisterRoutes(app)
	r.Auth.RegisterRoutes(app.Group("/auth"))

	// The feed authenticates with a query token, not the header.
	app.Get(protocol.PathJobs, r.Feed.HandleJobsWS)

	if r.DevResume != nil {
		r.DevResume.RegisterRoutes(app.Group("/api"))
	}

	protected := app.Group("", r.AuthMw.Middleware())
	r.Profile.RegisterRoutes(protected)
}
