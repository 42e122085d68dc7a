package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"go.uber.org/zap"

	"github.com/spec-kit/bookstore-api/internal/observability"
	"github.com/spec-kit/bookstore-api/internal/ratelimit"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

// MiddlewareConfig bundles the dependencies of the global middleware chain.
type MiddlewareConfig struct {
	Logger           *zap.Logger
	Metrics          *observability.Metrics
	Timeout          time.Duration
	CORSAllowOrigins string
	// RateLimit enables the per-client limiter when non-nil.
	RateLimit *ratelimit.Config
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
// The request logger wraps the error handler so it records the final status.
func RegisterMiddlewares(app *fiber.App, cfg MiddlewareConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
	app.Use(observability.RequestLogger(logger, cfg.Metrics))
	app.Use(errorHandlingMiddleware(logger, cfg.Metrics))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSAllowOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + observability.HeaderRequestID,
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		ExposeHeaders: "X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset, Retry-After, " + observability.HeaderRequestID,
	}))
	if cfg.RateLimit != nil {
		limit := *cfg.RateLimit
		if limit.Next == nil {
			limit.Next = skipProbes
		}
		app.Use(ratelimit.New(limit))
	}
}

// skipProbes exempts health checks and metric scrapes from rate limiting.
func skipProbes(c *fiber.Ctx) bool {
	path := c.Path()
	return path == "/metrics" || path == "/health" || strings.HasPrefix(path, "/health/")
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				observability.LoggerFromContext(c, logger).Error("panic recovered",
					zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				writeError(c, err, observability.LoggerFromContext(c, logger), metrics)
				err = nil
			}
		}()
		return c.Next()
	}
}

// ErrorHandler is the fiber.Config error handler for failures raised outside the middleware chain.
func ErrorHandler(logger *zap.Logger, metrics *observability.Metrics) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		writeError(c, err, observability.LoggerFromContext(c, logger), metrics)
		return nil
	}
}

// writeError serializes err as {"error":{"code","message","details"?}}.
func writeError(c *fiber.Ctx, err error, logger *zap.Logger, metrics *observability.Metrics) {
	domainErr := toDomainError(err)
	metrics.RecordError(observability.RoutePath(c), c.Method(), domainErr.Code)

	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	if domainErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(domainErr))
	}
	c.Status(domainErr.HTTPStatus)
	_ = c.JSON(fiber.Map{"error": body})
}

// toDomainError also maps errors produced by fiber itself, such as unmatched routes.
func toDomainError(err error) *apperrors.DomainError {
	var domainErr *apperrors.DomainError
	var fiberErr *fiber.Error
	if !errors.As(err, &domainErr) && errors.As(err, &fiberErr) {
		switch {
		case fiberErr.Code == http.StatusNotFound:
			return apperrors.NewDomainError(apperrors.CodeResourceNotFound, fiberErr.Message, fiberErr.Code, nil)
		case fiberErr.Code == http.StatusTooManyRequests:
			return apperrors.NewDomainError(apperrors.CodeTooManyRequests, fiberErr.Message, fiberErr.Code, nil)
		case fiberErr.Code < http.StatusInternalServerError:
			return apperrors.NewDomainError(apperrors.CodeBadRequest, fiberErr.Message, fiberErr.Code, nil)
		}
	}
	return apperrors.ToDomainError(err)
}
