package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "X-Request-ID"
	requestIDKey    = "request_id"
	loggerKey       = "request_logger"
)

// RequestLogger tags each request with an id, stores a child logger in locals
// and logs one http_request line once the handler chain has finished.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(HeaderRequestID, requestID)
		c.Locals(requestIDKey, requestID)

		reqLogger := logger.With(zap.String("request_id", requestID))
		c.Locals(loggerKey, reqLogger)

		err := c.Next()

		status := c.Response().StatusCode()
		duration := time.Since(start)
		path := RoutePath(c)
		metrics.RecordRequest(path, c.Method(), status, duration)

		reqLogger.Info("http_request",
			zap.String("method", c.Method()),
			zap.String("path", c.OriginalURL()),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get(fiber.HeaderUserAgent)),
		)
		return err
	}
}

// RoutePath returns the matched route pattern so metric labels stay bounded.
func RoutePath(c *fiber.Ctx) string {
	if route := c.Route(); route != nil && route.Path != "" && route.Path != "/" {
		return route.Path
	}
	if c.Path() == "/" {
		return "/"
	}
	return "unmatched"
}

// LoggerFromContext returns the request-scoped logger or fallback.
func LoggerFromContext(c *fiber.Ctx, fallback *zap.Logger) *zap.Logger {
	if l, ok := c.Locals(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return fallback
}

// RequestID returns the id assigned by RequestLogger.
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}
