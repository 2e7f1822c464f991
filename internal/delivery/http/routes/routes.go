package routes

import (
	"net/http"
	"time"

	"skillxintell/internal/delivery/http/handler"
	"skillxintell/internal/delivery/http/middleware"
	"skillxintell/internal/pkg/response"
	"skillxintell/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/limiter"
)

type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Skill        *handler.SkillHandler
	Mentor       *handler.MentorHandler
	Verification *handler.VerificationHandler
	WS           *ws.Handler
	Metrics      http.Handler
}

type Options struct {
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

type Registry struct {
	handlers Handlers
	auth     *middleware.AuthMiddleware
	opts     Options
}

func NewRegistry(h Handlers, auth *middleware.AuthMiddleware, opts Options) *Registry {
	if opts.AuthRateLimit <= 0 {
		opts.AuthRateLimit = 20
	}
	if opts.AuthRateWindow <= 0 {
		opts.AuthRateWindow = time.Minute
	}
	return &Registry{handlers: h, auth: auth, opts: opts}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(app)
	}
	if r.handlers.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(r.handlers.Metrics))
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")

	if r.handlers.WS != nil {
		api.Get("/ws", r.handlers.WS.HandleNotifications)
	}

	authGroup := api.Group("/auth", limiter.New(limiter.Config{
		Max:        r.opts.AuthRateLimit,
		Expiration: r.opts.AuthRateWindow,
		LimitReached: func(c fiber.Ctx) error {
			return response.Error(c, fiber.StatusTooManyRequests, "Too many requests, try again later", nil)
		},
	}))
	r.handlers.Auth.RegisterRoutes(authGroup)

	protected := api.Group("", r.auth.Middleware())

	r.handlers.User.RegisterRoutes(protected.Group("/users"))
	r.handlers.Skill.RegisterRoutes(protected.Group("/skills"))

	verificationGroup := protected.Group("/verification")
	r.handlers.Mentor.RegisterRoutes(verificationGroup)
	r.handlers.Verification.RegisterRoutes(verificationGroup)
}
