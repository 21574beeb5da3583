package onboarding

import "github.com/goliatone/go-onboarding/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown  = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDialectUnknown   = runtimeconfig.ErrStorageDialectUnknown
	ErrStorageDSNRequired      = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid         = runtimeconfig.ErrCacheTTLInvalid
	ErrStalledAfterInvalid     = runtimeconfig.ErrStalledAfterInvalid
	ErrRedisChannelRequired    = runtimeconfig.ErrRedisChannelRequired
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrHTTPAddrRequired        = runtimeconfig.ErrHTTPAddrRequired
)

type (
	Config              = runtimeconfig.Config
	StorageConfig       = runtimeconfig.StorageConfig
	CacheConfig         = runtimeconfig.CacheConfig
	CatalogConfig       = runtimeconfig.CatalogConfig
	ProgressConfig      = runtimeconfig.ProgressConfig
	NotificationsConfig = runtimeconfig.NotificationsConfig
	LoggingConfig       = runtimeconfig.LoggingConfig
	HTTPConfig          = runtimeconfig.HTTPConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// ApplyEnv overlays ONBOARDING_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	return runtimeconfig.ApplyEnv(cfg)
}
