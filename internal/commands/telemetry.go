package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-onboarding/internal/logging"
	"github.com/goliatone/go-onboarding/pkg/interfaces"
)

// TelemetryStatus is the outcome category of one command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes a command execution outcome.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
}

// Telemetry is invoked once per execution, after the wrapped function returns.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs outcomes: success at info, failures at warn unless the context ended.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(ctx context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logger.WithContext(ctx), info.Fields)
		args := []any{"status", string(info.Status), "duration_ms", info.Duration.Milliseconds()}
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info("command.execute.completed", args...)
		case TelemetryStatusContextError:
			entry.Error("command.execute.interrupted", append(args, "error", info.Error)...)
		default:
			entry.Warn("command.execute.rejected", append(args, "error", info.Error)...)
		}
	}
}
