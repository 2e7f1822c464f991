package app

import (
	"fmt"
	"strings"

	"skillxintell/internal/config"
	"skillxintell/internal/delivery/http/handler"
	"skillxintell/internal/delivery/http/middleware"
	"skillxintell/internal/delivery/http/routes"
	"skillxintell/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName: c.Config.App.AppName,
	})

	registerGlobalMiddleware(f, c)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap builds the container and the HTTP app on top of it. The returned
// cleanup releases the container.
func Bootstrap(cfg config.Config) (*App, func() error, error) {
	c, err := NewContainer(cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(c.Logger.With("component", "http")).Middleware())
	app.Use(middleware.NewMetricsMiddleware(c.Metrics).Middleware())
	app.Use(middleware.NewErrorMiddleware(c.Logger).Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	h := routes.Handlers{
		Health:       handler.NewHealthHandler(c.DB),
		Auth:         handler.NewAuthHandler(c.AuthUsecase, c.Validator),
		User:         handler.NewUserHandler(c.UserUsecase, c.Validator),
		Skill:        handler.NewSkillHandler(c.SkillUsecase, c.Validator),
		Mentor:       handler.NewMentorHandler(c.MentorUsecase),
		Verification: handler.NewVerificationHandler(c.Verification, c.Validator),
		WS:           ws.NewHandler(c.Hub, c.JWT, c.Logger.With("component", "ws")),
		Metrics:      c.Metrics.Handler(),
	}

	routes.NewRegistry(h, middleware.NewAuthMiddleware(c.JWT), routes.Options{}).Register(app)
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
