package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingSigningSecret is returned by Load when no token signing secret is configured.
var ErrMissingSigningSecret = errors.New("no token signing secret configured (AUTH_ACCESS_TOKEN_SECRET or AUTH_JWT_SECRET)")

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Notify    NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	CORSAllowOrigins      string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	AccessTokenSecret     string
	RefreshTokenSecret    string
	AccessTokenTTLMinutes int
	RefreshTokenTTLHours  int
	BcryptCost            int
}

// SharedSecret reports whether access and refresh tokens are signed with the same key.
func (a AuthConfig) SharedSecret() bool {
	return a.AccessTokenSecret == a.RefreshTokenSecret
}

// AccessTokenTTL returns the access token lifetime.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime.
func (a AuthConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(a.RefreshTokenTTLHours) * time.Hour
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Store backends shared by the cache and the rate limiter.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// CacheConfig configures the read-through cache used by catalogue endpoints.
type CacheConfig struct {
	Enabled   bool
	Backend   string
	KeyPrefix string
}

// RateLimitConfig configures the per-client fixed window limiter.
type RateLimitConfig struct {
	Enabled  bool
	Backend  string
	WindowMS int
	Max      int
}

// Window returns the limiter window length.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowMS) * time.Millisecond
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	sharedSecret := os.Getenv("AUTH_JWT_SECRET")
	accessSecret := getEnv("AUTH_ACCESS_TOKEN_SECRET", sharedSecret)
	refreshSecret := getEnv("AUTH_REFRESH_TOKEN_SECRET", accessSecret)

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "bookstore-api"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", getEnv("PORT", "8080")),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			CORSAllowOrigins:      getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
		Postgres: PostgresConfig{
			DSN:            getEnv("POSTGRES_DSN", os.Getenv("DATABASE_URL")),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			AccessTokenSecret:     accessSecret,
			RefreshTokenSecret:    refreshSecret,
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 15),
			RefreshTokenTTLHours:  getEnvAsInt("AUTH_REFRESH_TOKEN_TTL_HOURS", 7*24),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 10),
		},
		Cache: CacheConfig{
			Enabled:   getEnvAsBool("CACHE_ENABLED", true),
			Backend:   strings.ToLower(getEnv("CACHE_BACKEND", BackendMemory)),
			KeyPrefix: getEnv("CACHE_KEY_PREFIX", "bookstore"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Backend:  strings.ToLower(getEnv("RATE_LIMIT_BACKEND", BackendMemory)),
			WindowMS: getEnvAsInt("RATE_LIMIT_WINDOW_MS", 60_000),
			Max:      getEnvAsInt("RATE_LIMIT_MAX", 100),
		},
		Notify: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service must not start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.AccessTokenSecret) == "" || strings.TrimSpace(c.Auth.RefreshTokenSecret) == "" {
		return ErrMissingSigningSecret
	}
	if c.Auth.AccessTokenTTLMinutes <= 0 {
		return fmt.Errorf("invalid AUTH_ACCESS_TOKEN_TTL_MINUTES: %d", c.Auth.AccessTokenTTLMinutes)
	}
	if c.Auth.RefreshTokenTTLHours <= 0 {
		return fmt.Errorf("invalid AUTH_REFRESH_TOKEN_TTL_HOURS: %d", c.Auth.RefreshTokenTTLHours)
	}
	switch c.Cache.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("invalid CACHE_BACKEND: %q", c.Cache.Backend)
	}
	switch c.RateLimit.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("invalid RATE_LIMIT_BACKEND: %q", c.RateLimit.Backend)
	}
	return nil
}

// UsesRedis reports whether the cache or the rate limiter is backed by Redis.
func (c *Config) UsesRedis() bool {
	return (c.Cache.Enabled && c.Cache.Backend == BackendRedis) ||
		(c.RateLimit.Enabled && c.RateLimit.Backend == BackendRedis)
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
