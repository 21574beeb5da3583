package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

var (
	ErrStorageProviderUnknown  = errors.New("onboarding config: storage provider is invalid")
	ErrStorageDialectUnknown   = errors.New("onboarding config: storage dialect is invalid")
	ErrStorageDSNRequired      = errors.New("onboarding config: storage dsn is required for the bun provider")
	ErrCacheTTLInvalid         = errors.New("onboarding config: cache ttl must be positive when cache is enabled")
	ErrStalledAfterInvalid     = errors.New("onboarding config: stalled-after window must be positive")
	ErrNotificationWorkers     = errors.New("onboarding config: notification workers must be zero or positive")
	ErrNotificationQueueSize   = errors.New("onboarding config: notification queue size must be zero or positive")
	ErrRedisChannelRequired    = errors.New("onboarding config: redis channel is required when a redis address is set")
	ErrLoggingProviderRequired = errors.New("onboarding config: logging provider is required")
	ErrLoggingProviderUnknown  = errors.New("onboarding config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("onboarding config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("onboarding config: logging format is invalid")
	ErrHTTPAddrRequired        = errors.New("onboarding config: http address is required")
)

// Config aggregates storage, catalog and transport bindings for the onboarding module.
type Config struct {
	Storage       StorageConfig
	Cache         CacheConfig
	Catalog       CatalogConfig
	Progress      ProgressConfig
	Notifications NotificationsConfig
	Logging       LoggingConfig
	HTTP          HTTPConfig
}

// StorageConfig selects the repository backend. Provider "memory" keeps everything in process;
// "bun" opens DSN with the given dialect.
type StorageConfig struct {
	Provider string `env:"ONBOARDING_STORAGE_PROVIDER"`
	Dialect  string `env:"ONBOARDING_STORAGE_DIALECT"`
	DSN      string `env:"ONBOARDING_STORAGE_DSN"`
}

// CacheConfig toggles the go-repository-cache decorator around creator lookups.
type CacheConfig struct {
	Enabled bool          `env:"ONBOARDING_CACHE_ENABLED"`
	TTL     time.Duration `env:"ONBOARDING_CACHE_TTL"`
}

// CatalogConfig points at an optional YAML catalog and a directory of markdown instructions.
// Empty values fall back to the embedded default catalog.
type CatalogConfig struct {
	Path            string `env:"ONBOARDING_CATALOG_PATH"`
	InstructionsDir string `env:"ONBOARDING_CATALOG_INSTRUCTIONS_DIR"`
}

// ProgressConfig tunes dashboard classification.
type ProgressConfig struct {
	StalledAfter time.Duration `env:"ONBOARDING_PROGRESS_STALLED_AFTER"`
}

// NotificationsConfig controls the async dispatcher and its optional Redis sink.
type NotificationsConfig struct {
	Enabled      bool   `env:"ONBOARDING_NOTIFICATIONS_ENABLED"`
	Workers      int    `env:"ONBOARDING_NOTIFICATIONS_WORKERS"`
	QueueSize    int    `env:"ONBOARDING_NOTIFICATIONS_QUEUE_SIZE"`
	RedisAddr    string `env:"ONBOARDING_NOTIFICATIONS_REDIS_ADDR"`
	RedisChannel string `env:"ONBOARDING_NOTIFICATIONS_REDIS_CHANNEL"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider string `env:"ONBOARDING_LOG_PROVIDER"`
	Level    string `env:"ONBOARDING_LOG_LEVEL"`
	Format   string `env:"ONBOARDING_LOG_FORMAT"`
}

// HTTPConfig configures the operator API listener.
type HTTPConfig struct {
	Addr     string `env:"ONBOARDING_HTTP_ADDR"`
	BasePath string `env:"ONBOARDING_HTTP_BASE_PATH"`
}

// DefaultConfig returns an in-memory setup with notifications on and console logging.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Provider: "memory",
			Dialect:  "sqlite",
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     time.Minute,
		},
		Progress: ProgressConfig{
			StalledAfter: 14 * 24 * time.Hour,
		},
		Notifications: NotificationsConfig{
			Enabled:      true,
			Workers:      2,
			QueueSize:    128,
			RedisChannel: "onboarding.events",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		HTTP: HTTPConfig{
			Addr:     ":8080",
			BasePath: "/api",
		},
	}
}

// ApplyEnv overlays ONBOARDING_* environment variables onto cfg. Unset variables leave the
// existing values in place.
func ApplyEnv(cfg *Config) error {
	if cfg == nil {
		return errors.New("onboarding config: nil config")
	}
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	switch provider := normalize(cfg.Storage.Provider); provider {
	case "memory":
	case "bun":
		if !isSupportedDialect(normalize(cfg.Storage.Dialect)) {
			return fmt.Errorf("%w: %s", ErrStorageDialectUnknown, cfg.Storage.Dialect)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}
	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Progress.StalledAfter <= 0 {
		return ErrStalledAfterInvalid
	}
	if cfg.Notifications.Workers < 0 {
		return ErrNotificationWorkers
	}
	if cfg.Notifications.QueueSize < 0 {
		return ErrNotificationQueueSize
	}
	if strings.TrimSpace(cfg.Notifications.RedisAddr) != "" && strings.TrimSpace(cfg.Notifications.RedisChannel) == "" {
		return ErrRedisChannelRequired
	}

	provider := normalize(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider != "console" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return ErrHTTPAddrRequired
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedDialect(dialect string) bool {
	switch dialect {
	case "sqlite", "postgres":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger", "zap":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
