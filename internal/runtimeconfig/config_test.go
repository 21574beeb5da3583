package runtimeconfig_test

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-onboarding/internal/runtimeconfig"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RequiresDSNForBun(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"
	cfg.Storage.DSN = " "

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownDialect(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"
	cfg.Storage.Dialect = "mysql"
	cfg.Storage.DSN = "file::memory:"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDialectUnknown) {
		t.Fatalf("expected ErrStorageDialectUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownStorageProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "dynamo"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageProviderUnknown) {
		t.Fatalf("expected ErrStorageProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_CacheNeedsTTL(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Cache.Enabled = true
	cfg.Cache.TTL = 0

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrCacheTTLInvalid) {
		t.Fatalf("expected ErrCacheTTLInvalid, got %v", err)
	}
}

func TestConfigValidate_StalledAfterPositive(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Progress.StalledAfter = 0

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStalledAfterInvalid) {
		t.Fatalf("expected ErrStalledAfterInvalid, got %v", err)
	}
}

func TestConfigValidate_RedisNeedsChannel(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Notifications.RedisAddr = "localhost:6379"
	cfg.Notifications.RedisChannel = ""

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrRedisChannelRequired) {
		t.Fatalf("expected ErrRedisChannelRequired, got %v", err)
	}
}

func TestConfigValidate_LoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = ""
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderRequired) {
		t.Fatalf("expected ErrLoggingProviderRequired, got %v", err)
	}

	cfg.Logging.Provider = "syslog"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}

	cfg.Logging.Provider = "zap"
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}

	cfg.Logging.Provider = "console"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("console provider ignores format, got %v", err)
	}
}

func TestApplyEnvOverlaysDefaults(t *testing.T) {
	t.Setenv("ONBOARDING_STORAGE_PROVIDER", "bun")
	t.Setenv("ONBOARDING_STORAGE_DSN", "file:onboarding.db")
	t.Setenv("ONBOARDING_PROGRESS_STALLED_AFTER", "72h")
	t.Setenv("ONBOARDING_NOTIFICATIONS_WORKERS", "4")

	cfg := runtimeconfig.DefaultConfig()
	if err := runtimeconfig.ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv returned error: %v", err)
	}
	if cfg.Storage.Provider != "bun" || cfg.Storage.DSN != "file:onboarding.db" {
		t.Fatalf("expected storage overlay, got %+v", cfg.Storage)
	}
	if cfg.Storage.Dialect != "sqlite" {
		t.Fatalf("expected default dialect to survive, got %q", cfg.Storage.Dialect)
	}
	if cfg.Progress.StalledAfter != 72*time.Hour {
		t.Fatalf("expected 72h window, got %s", cfg.Progress.StalledAfter)
	}
	if cfg.Notifications.Workers != 4 || cfg.Notifications.QueueSize != 128 {
		t.Fatalf("unexpected notifications config %+v", cfg.Notifications)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected overlaid config to validate, got %v", err)
	}
}

func TestApplyEnvRejectsMalformedValues(t *testing.T) {
	t.Setenv("ONBOARDING_CACHE_TTL", "soon")

	cfg := runtimeconfig.DefaultConfig()
	if err := runtimeconfig.ApplyEnv(&cfg); err == nil {
		t.Fatalf("expected malformed duration to fail")
	}
}
