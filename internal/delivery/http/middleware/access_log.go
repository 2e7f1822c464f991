package middleware

import (
	"time"

	"skillxintell/internal/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

type AccessLogMiddleware struct {
	logger logger.Logger
}

func NewAccessLogMiddleware(log logger.Logger) *AccessLogMiddleware {
	if log == nil {
		log = logger.Nop()
	}
	return &AccessLogMiddleware{logger: log}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)
		c.Locals(CtxRequestIDKey, rid)

		err := c.Next()

		status := c.Response().StatusCode()
		kv := []any{
			"rid", rid,
			"method", c.Method(),
			"path", c.OriginalURL(),
			"status", status,
			"latency", time.Since(start),
			"req_bytes", c.Request().Header.ContentLength(),
			"resp_bytes", len(c.Response().Body()),
			"ip", c.IP(),
			"ua", c.Get("User-Agent"),
		}
		if userID, ok := c.Locals(CtxUserIDKey).(uuid.UUID); ok {
			kv = append(kv, "user_id", userID)
		}

		switch {
		case status >= 500:
			m.logger.Error("http access", kv...)
		case status >= 400:
			m.logger.Warn("http access", kv...)
		default:
			m.logger.Info("http access", kv...)
		}

		return err
	}
}
