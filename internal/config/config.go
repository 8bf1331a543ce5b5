package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AuthModeLocal   = "local"
	AuthModeHTTPAPI = "http_api"
)

const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

const (
	CacheTypeMemory = "memory"
	CacheTypeRedis  = "redis"
)

// Config is read once from the environment (and an optional .env file) at
// startup.
type Config struct {
	// Server settings
	ServerAddr   string
	BaseURL      string
	IsProduction bool
	LogLevel     string

	// Session settings
	SessionSecret string
	SessionMaxAge int // seconds

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string // Database connection string (DSN or path)
	DBInitTimeout  time.Duration

	// Authentication
	AuthMode              string // "local" or "http_api"
	JWTSecret             string
	AuthSessionExpiration time.Duration // lifetime of an access token issued by the local provider
	SignInLinkExpiration  time.Duration // lifetime of a passwordless sign-in link
	AuthLookupTimeout     time.Duration // bound on identity resolution and allowlist lookup
	BootstrapSuperAdmin   string        // e-mail seeded as super admin on an empty allowlist

	// HTTP API identity provider (hosted auth service)
	HTTPAPIURL                string
	HTTPAPITimeout            time.Duration
	HTTPAPIInsecureSkipVerify bool
	HTTPAPIAuthMode           string // "none", "simple", or "hmac"
	HTTPAPIAuthSecret         string
	HTTPAPIAuthHeader         string
	HTTPAPIMaxRetries         int
	HTTPAPIRetryDelay         time.Duration
	HTTPAPIMaxRetryDelay      time.Duration

	// Media base URLs for public file links
	MediaBlogBaseURL      string
	MediaPhotosBaseURL    string
	MediaMagazinesBaseURL string

	// Localization
	DefaultLocale    string
	SupportedLocales []string

	// Metrics
	MetricsEnabled bool
	MetricsToken   string

	// Content cache
	CacheType string // "memory" or "redis"
	CacheTTL  time.Duration

	// Redis (rate limiting and content cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limiting
	EnableRateLimit          bool
	RateLimitStore           string
	RateLimitCleanupInterval time.Duration
	SignInRateLimit          int // requests per minute
	ContactRateLimit         int // requests per minute

	// Audit logging
	EnableAuditLogging bool
	AuditLogRetention  time.Duration
	AuditLogBufferSize int

	MaintenanceSchedule     string // cron spec for cleanup jobs
	ContactMessageMaxLength int
}

func Load() *Config {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "psychmag.db"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":8080"),
		BaseURL:      getEnv("BASE_URL", "http://localhost:8080"),
		IsProduction: getEnv("ENVIRONMENT", "development") == "production",
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),

		SessionSecret: getEnv("SESSION_SECRET", defaultSessionSecret),
		SessionMaxAge: getEnvInt("SESSION_MAX_AGE", 86400*7),

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		DBInitTimeout:  getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),

		AuthMode:              getEnv("AUTH_MODE", AuthModeLocal),
		JWTSecret:             getEnv("JWT_SECRET", "your-256-bit-secret-change-in-production"),
		AuthSessionExpiration: getEnvDuration("AUTH_SESSION_EXPIRATION", 24*time.Hour),
		SignInLinkExpiration:  getEnvDuration("SIGN_IN_LINK_EXPIRATION", 15*time.Minute),
		AuthLookupTimeout:     getEnvDuration("AUTH_LOOKUP_TIMEOUT", 5*time.Second),
		BootstrapSuperAdmin:   getEnv("BOOTSTRAP_SUPER_ADMIN_EMAIL", ""),

		HTTPAPIURL:                getEnv("HTTP_API_URL", ""),
		HTTPAPITimeout:            getEnvDuration("HTTP_API_TIMEOUT", 10*time.Second),
		HTTPAPIInsecureSkipVerify: getEnvBool("HTTP_API_INSECURE_SKIP_VERIFY", false),
		HTTPAPIAuthMode:           getEnv("HTTP_API_AUTH_MODE", "none"),
		HTTPAPIAuthSecret:         getEnv("HTTP_API_AUTH_SECRET", ""),
		HTTPAPIAuthHeader:         getEnv("HTTP_API_AUTH_HEADER", "X-API-Secret"),
		HTTPAPIMaxRetries:         getEnvInt("HTTP_API_MAX_RETRIES", 3),
		HTTPAPIRetryDelay:         getEnvDuration("HTTP_API_RETRY_DELAY", 1*time.Second),
		HTTPAPIMaxRetryDelay:      getEnvDuration("HTTP_API_MAX_RETRY_DELAY", 10*time.Second),

		MediaBlogBaseURL:      getEnv("MEDIA_BLOG_BASE_URL", ""),
		MediaPhotosBaseURL:    getEnv("MEDIA_PHOTOS_BASE_URL", ""),
		MediaMagazinesBaseURL: getEnv("MEDIA_MAGAZINES_BASE_URL", ""),

		DefaultLocale:    getEnv("DEFAULT_LOCALE", "tr"),
		SupportedLocales: getEnvSlice("SUPPORTED_LOCALES", []string{"tr", "en"}),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", false),
		MetricsToken:   getEnv("METRICS_TOKEN", ""),

		CacheType: getEnv("CACHE_TYPE", CacheTypeMemory),
		CacheTTL:  getEnvDuration("CACHE_TTL", 1*time.Minute),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		EnableRateLimit:          getEnvBool("ENABLE_RATE_LIMIT", true),
		RateLimitStore:           getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		RateLimitCleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		SignInRateLimit:          getEnvInt("SIGN_IN_RATE_LIMIT", 5),
		ContactRateLimit:         getEnvInt("CONTACT_RATE_LIMIT", 3),

		EnableAuditLogging: getEnvBool("ENABLE_AUDIT_LOGGING", true),
		AuditLogRetention:  getEnvDuration("AUDIT_LOG_RETENTION", 90*24*time.Hour),
		AuditLogBufferSize: getEnvInt("AUDIT_LOG_BUFFER_SIZE", 1000),

		MaintenanceSchedule:     getEnv("MAINTENANCE_SCHEDULE", "@every 1h"),
		ContactMessageMaxLength: getEnvInt("CONTACT_MESSAGE_MAX_LENGTH", 5000),
	}
}

// defaultSessionSecret is what Load falls back to; production must override it.
const defaultSessionSecret = "session-secret-change-in-production"

// Validate reports every inconsistent setting, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch c.AuthMode {
	case AuthModeLocal:
		if c.JWTSecret == "" {
			fail("JWT_SECRET is required when AUTH_MODE=local")
		}
	case AuthModeHTTPAPI:
		if c.HTTPAPIURL == "" {
			fail("HTTP_API_URL is required when AUTH_MODE=http_api")
		}
	default:
		fail("invalid AUTH_MODE: %q (must be: %s, %s)", c.AuthMode, AuthModeLocal, AuthModeHTTPAPI)
	}

	if !slices.Contains([]string{RateLimitStoreMemory, RateLimitStoreRedis}, c.RateLimitStore) {
		fail("invalid RATE_LIMIT_STORE value: %q (must be %q or %q)",
			c.RateLimitStore, RateLimitStoreMemory, RateLimitStoreRedis)
	}
	if !slices.Contains([]string{CacheTypeMemory, CacheTypeRedis}, c.CacheType) {
		fail("invalid CACHE_TYPE value: %q (must be %q or %q)",
			c.CacheType, CacheTypeMemory, CacheTypeRedis)
	}

	if c.AuthLookupTimeout <= 0 {
		fail("AUTH_LOOKUP_TIMEOUT must be positive, got %s", c.AuthLookupTimeout)
	}
	if c.CacheTTL <= 0 {
		fail("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}

	if len(c.SupportedLocales) > 0 && !slices.Contains(c.SupportedLocales, c.DefaultLocale) {
		fail("DEFAULT_LOCALE %q is not in SUPPORTED_LOCALES %v", c.DefaultLocale, c.SupportedLocales)
	}

	if c.IsProduction && c.SessionSecret == defaultSessionSecret {
		fail("SESSION_SECRET must be changed in production")
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// lookup parses key with parse, returning fallback when it is unset or
// malformed.
func lookup[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	return lookup(key, fallback, strconv.ParseBool)
}

func getEnvInt(key string, fallback int) int {
	return lookup(key, fallback, strconv.Atoi)
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	return lookup(key, fallback, time.ParseDuration)
}

// getEnvSlice reads a comma separated list, dropping empty items.
func getEnvSlice(key string, fallback []string) []string {
	var out []string
	for part := range strings.SplitSeq(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
