package handler

import (
	"context"
	"time"

	"skillxintell/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) RegisterRoutes(app fiber.Router) {
	if app == nil {
		return
	}
	app.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	data := map[string]string{"database": "up"}
	if h.db == nil {
		data["database"] = "unknown"
		return response.Success(c, fiber.StatusOK, response.MessageOK, data)
	}

	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		data["database"] = "down"
		return response.Error(c, fiber.StatusServiceUnavailable, "database unavailable", data)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}
