package ws

import (
	"net/http"
	"strings"

	"skillxintell/internal/pkg/jwt"
	"skillxintell/internal/pkg/logger"
	"skillxintell/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Handler struct {
	hub    *Hub
	jwt    jwt.Service
	logger logger.Logger
}

func NewHandler(hub *Hub, jwtSvc jwt.Service, log logger.Logger) *Handler {
	return &Handler{hub: hub, jwt: jwtSvc, logger: log}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleNotifications upgrades to a websocket bound to the caller. Browsers
// cannot set headers on the upgrade request, so the access token comes from
// the token query parameter.
func (h *Handler) HandleNotifications(c fiber.Ctx) error {
	if h == nil || h.hub == nil || h.jwt == nil {
		return fiber.ErrServiceUnavailable
	}

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		return response.Error(c, fiber.StatusUnauthorized, "missing token", nil)
	}
	claims, err := h.jwt.ValidateToken(token)
	if err != nil || h.jwt.IsRefreshToken(claims) || claims.UserID == uuid.Nil {
		return response.Error(c, fiber.StatusUnauthorized, "invalid token", nil)
	}
	userID := claims.UserID

	upgrade := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if h.logger != nil {
				h.logger.Warn("ws upgrade failed", "err", err)
			}
			return
		}

		client := NewClient(h.hub, conn, userID)
		h.hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	})

	return upgrade(c)
}
