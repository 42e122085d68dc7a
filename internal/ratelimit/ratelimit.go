package ratelimit

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/spec-kit/bookstore-api/internal/cache"
	apperrors "github.com/spec-kit/bookstore-api/pkg/util/errorutil"
)

const (
	DefaultMax    = 100
	DefaultWindow = time.Minute
	keyPrefix     = "ratelimit:"
)

// Config tunes the per-client fixed window limiter.
type Config struct {
	Max    int
	Window time.Duration
	// Store holds the window counters. It should not be shared with the response cache.
	Store cache.Store
	// Next skips limiting for matching requests.
	Next func(c *fiber.Ctx) bool
}

// New returns middleware allowing Max requests per client IP per Window.
// Responses carry X-RateLimit-Limit, X-RateLimit-Remaining and X-RateLimit-Reset;
// rejected requests also get Retry-After and a TOO_MANY_REQUESTS error.
func New(cfg Config) fiber.Handler {
	if cfg.Max <= 0 {
		cfg.Max = DefaultMax
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Store == nil {
		cfg.Store = cache.NewMemory()
	}

	return limiter.New(limiter.Config{
		Next:       cfg.Next,
		Max:        cfg.Max,
		Expiration: cfg.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return keyPrefix + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return apperrors.NewTooManyRequests("too many requests, please try again later", map[string]any{
				"retryAfterSeconds": string(c.Response().Header.Peek(fiber.HeaderRetryAfter)),
			})
		},
		Storage:           &storage{store: cfg.Store},
		LimiterMiddleware: limiter.FixedWindow{},
	})
}

// storage adapts a cache.Store to fiber's synchronous Storage interface.
type storage struct {
	store cache.Store
}

func (s *storage) Get(key string) ([]byte, error) {
	val, ok, err := s.store.Get(context.Background(), key)
	if err != nil || !ok {
		return nil, err
	}
	return val, nil
}

func (s *storage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return s.store.Set(context.Background(), key, val, exp)
}

func (s *storage) Delete(key string) error {
	return s.store.Delete(context.Background(), key)
}

func (s *storage) Reset() error {
	return s.store.Reset(context.Background())
}

func (s *storage) Close() error {
	return nil
}
