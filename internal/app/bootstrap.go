package app

import (
	"fmt"
	"strings"

	"swipehire/internal/config"
	"swipehire/internal/delivery/http/handler"
	"swipehire/internal/delivery/http/middleware"
	"swipehire/internal/delivery/http/routes"
	"swipehire/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// multipartOverhead leaves room for form boundaries on a max-size upload.
const multipartOverhead = 1 << 20

// New builds the HTTP app on an existing container.
func New(c *Container) *App {
	cfg := c.Config
	f := fiber.New(fiber.Config{
		AppName:   cfg.App.AppName,
		BodyLimit: int(cfg.Resume.MaxUploadBytes) + multipartOverhead,
	})

	registerGlobalMiddleware(f, c)

	reg := &routes.Registry{
		Health:  handler.NewHealthHandler(c.DB, c.Cache),
		Auth:    handler.NewAuthHandler(c.Auth),
		Profile: handler.NewProfileHandler(c.Profile, cfg.Resume.MaxUploadBytes),
		Feed:    ws.NewHandler(c.Hub, c.Feed, c.JWT, c.Logger),
		AuthMw:  middleware.NewAuthMiddleware(c.JWT),
	}
	if cfg.App.DevResumeStub {
		reg.DevResume = handler.NewDevResumeHandler(c.Script, cfg.Resume.MaxUploadBytes, c.Logger)
		c.Logger.Warn().Msg("development resume stub mounted at /api/parse-resume")
	}
	reg.Register(f)

	return &App{Fiber: f, Container: c}
}

// Bootstrap wires the container and the app. The returned cleanup closes the
// container.
func Bootstrap(cfg config.Config, c *Container) (*App, func() error, error) {
	if c == nil {
		return nil, nil, fmt.Errorf("nil container")
	}
	c.Config = cfg
	app := New(c)
	return app, c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	accessMw := middleware.NewAccessLogMiddleware(c.Logger)
	app.Use(accessMw.Middleware())

	errMw := middleware.NewErrorMiddleware(c.Logger)
	app.Use(errMw.Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
