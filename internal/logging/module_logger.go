package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-onboarding/pkg/interfaces"
)

const (
	rootModule     = "onboarding"
	engineModule   = "onboarding.engine"
	progressModule = "onboarding.progress"
	notifyModule   = "onboarding.notify"
	httpModule     = "onboarding.http"
	catalogModule  = "onboarding.catalog"
	storeModule    = "onboarding.store"
)

const (
	fieldCreatorID   = "creator_id"
	fieldMilestoneID = "milestone_id"
	fieldOperation   = "operation"
	fieldRequestID   = "request_id"
	fieldRoute       = "route"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// EngineLogger returns the logger namespace reserved for the transition engine.
func EngineLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, engineModule)
}

// ProgressLogger returns the logger namespace reserved for dashboard assembly.
func ProgressLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, progressModule)
}

// NotifyLogger returns the logger namespace reserved for notification workers.
func NotifyLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, notifyModule)
}

// HTTPLogger returns the logger namespace reserved for the API adapter.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// CatalogLogger returns the logger namespace reserved for catalog loading.
func CatalogLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, catalogModule)
}

// StoreLogger returns the logger namespace reserved for the progress store.
func StoreLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storeModule)
}

// WithMilestoneContext enriches the provided logger with the creator, milestone, and
// operation being processed. Empty values are ignored.
func WithMilestoneContext(logger interfaces.Logger, creatorID, milestoneID, operation string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(creatorID); trimmed != "" {
		fields[fieldCreatorID] = trimmed
	}
	if trimmed := strings.TrimSpace(milestoneID); trimmed != "" {
		fields[fieldMilestoneID] = trimmed
	}
	if trimmed := strings.TrimSpace(operation); trimmed != "" {
		fields[fieldOperation] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
