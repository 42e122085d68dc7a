package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/bookstore-api/internal/api/http"
	"github.com/spec-kit/bookstore-api/internal/api/http/handlers"
	"github.com/spec-kit/bookstore-api/internal/auth"
	"github.com/spec-kit/bookstore-api/internal/cache"
	"github.com/spec-kit/bookstore-api/internal/config"
	"github.com/spec-kit/bookstore-api/internal/events"
	"github.com/spec-kit/bookstore-api/internal/observability"
	"github.com/spec-kit/bookstore-api/internal/persistence"
	"github.com/spec-kit/bookstore-api/internal/ratelimit"
	"github.com/spec-kit/bookstore-api/internal/repository"
	"github.com/spec-kit/bookstore-api/internal/service"
	"github.com/spec-kit/bookstore-api/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Auth.SharedSecret() {
		logger.Warn("access and refresh tokens share one signing secret; set AUTH_REFRESH_TOKEN_SECRET")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redis *persistence.Redis
	if cfg.UsesRedis() {
		redis, err = persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable; cache and rate limiter fall back to memory", zap.Error(err))
		} else {
			defer redis.Close()
		}
	}

	tokenMgr, err := auth.NewTokenManager(
		cfg.Auth.AccessTokenSecret,
		cfg.Auth.RefreshTokenSecret,
		cfg.Auth.AccessTokenTTL(),
		cfg.Auth.RefreshTokenTTL(),
		auth.WithIssuer(cfg.App.Name),
	)
	if err != nil {
		logger.Fatal("failed to build token manager", zap.Error(err))
	}

	responseCache := newStore(cfg.Cache.Enabled, cfg.Cache.Backend, redis, cfg.Cache.KeyPrefix+":cache")
	limiterStore := newStore(cfg.RateLimit.Enabled, cfg.RateLimit.Backend, redis, cfg.Cache.KeyPrefix+":ratelimit")
	logger.Info("stores configured",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.String("rate_limit_backend", cfg.RateLimit.Backend))

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartCacheInvalidationWorker(dispatcher, responseCache, logger)
	worker.StartNotificationWorker(dispatcher, service.NewNotificationService(logger, cfg.Notify))

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	bookRepo := repository.NewBookRepository(pool)
	cartRepo := repository.NewCartRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	likeRepo := repository.NewLikeRepository(pool)

	authService := service.NewAuthService(userRepo, tokenMgr)
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:    userRepo,
		BookRepo:    bookRepo,
		ReviewRepo:  reviewRepo,
		CommentRepo: commentRepo,
		LikeRepo:    likeRepo,
		CartRepo:    cartRepo,
		OrderRepo:   orderRepo,
		BcryptCost:  cfg.Auth.BcryptCost,
	})
	bookService := service.NewBookService(service.BookDependencies{
		BookRepo:   bookRepo,
		ReviewRepo: reviewRepo,
		Cache:      responseCache,
		Dispatcher: dispatcher,
	})
	cartService := service.NewCartService(cartRepo, userRepo, bookRepo)
	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:  orderRepo,
		UserRepo:   userRepo,
		BookRepo:   bookRepo,
		Dispatcher: dispatcher,
	})
	reviewService := service.NewReviewService(service.ReviewDependencies{
		ReviewRepo:  reviewRepo,
		CommentRepo: commentRepo,
		UserRepo:    userRepo,
		BookRepo:    bookRepo,
		Dispatcher:  dispatcher,
	})
	commentService := service.NewCommentService(commentRepo, reviewRepo, userRepo)
	likeService := service.NewLikeService(likeRepo, reviewRepo, commentRepo)
	adminService := service.NewAdminService(userRepo, orderService, dispatcher, nil)

	metrics := observability.NewMetrics(cfg.App.Name)
	metrics.ObservePool("postgres", pg.PoolStats)
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})

	var limiter *ratelimit.Config
	if cfg.RateLimit.Enabled {
		limiter = &ratelimit.Config{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window(),
			Store:  limiterStore,
		}
	}
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:           logger,
		Metrics:          metrics,
		Timeout:          cfg.App.RequestTimeout(),
		CORSAllowOrigins: cfg.App.CORSAllowOrigins,
		RateLimit:        limiter,
	})

	deps := map[string]handlers.Pinger{"postgres": pg}
	if redis != nil {
		deps["redis"] = redis
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Books:          handlers.NewBooksHandler(bookService),
		Carts:          handlers.NewCartsHandler(cartService),
		Orders:         handlers.NewOrdersHandler(orderService),
		Reviews:        handlers.NewReviewsHandler(reviewService, likeService),
		Comments:       handlers.NewCommentsHandler(commentService, likeService),
		Admin:          handlers.NewAdminHandler(adminService),
		AuthMiddleware: auth.NewAuthMiddleware(tokenMgr),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

// newStore picks the key/value store for the cache or the limiter.
// A disabled store is a no-op; Redis falls back to memory when no client is available.
func newStore(enabled bool, backend string, redis *persistence.Redis, prefix string) cache.Store {
	switch {
	case !enabled:
		return cache.Noop{}
	case backend == config.BackendRedis && redis != nil:
		return redis.Store(prefix)
	default:
		return cache.NewMemory()
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
