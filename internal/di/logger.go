package di

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-onboarding/internal/logging/console"
	"github.com/goliatone/go-onboarding/internal/logging/gologger"
	"github.com/goliatone/go-onboarding/internal/logging/zaplogger"
	"github.com/goliatone/go-onboarding/internal/runtimeconfig"
	"github.com/goliatone/go-onboarding/pkg/interfaces"
)

// NewLoggerProvider builds the provider named by cfg.Provider.
func NewLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		return console.NewProvider(console.Options{MinLevel: console.ParseLevel(cfg.Level)}), nil
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:  cfg.Level,
			Format: cfg.Format,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "zap":
		mode := "production"
		switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
		case "console", "pretty":
			mode = "development"
		}
		provider, err := zaplogger.NewProvider(zaplogger.Config{
			Mode:   mode,
			Level:  cfg.Level,
			Redact: true,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, cfg.Provider)
	}
}
