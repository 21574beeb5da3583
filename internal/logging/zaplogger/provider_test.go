package zaplogger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-onboarding/internal/logging"
)

func TestProviderWritesNamedStructuredEntries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	provider := NewProviderFromLogger(zap.New(core), false)

	logger := logging.ModuleLogger(provider, "onboarding.engine")
	logger.Info("engine.submit.completed", "milestone_id", "intake_completed")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.LoggerName != "onboarding.engine" {
		t.Fatalf("expected named logger, got %q", entry.LoggerName)
	}
	fields := entry.ContextMap()
	if fields["module"] != "onboarding.engine" || fields["milestone_id"] != "intake_completed" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestProviderRedactsSensitiveKeys(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	provider := NewProviderFromLogger(zap.New(core), true)

	provider.GetLogger("onboarding.http").Warn("http.request.rejected", "admin_email", "ops@example.com", "status", 409)

	fields := logs.All()[0].ContextMap()
	if fields["admin_email"] != "[REDACTED]" {
		t.Fatalf("expected redacted email, got %v", fields["admin_email"])
	}
	if fields["status"] != int64(409) {
		t.Fatalf("expected status untouched, got %v", fields["status"])
	}
}

func TestProviderMergesContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	provider := NewProviderFromLogger(zap.New(core), false)

	ctx := logging.ContextWithFields(context.Background(), map[string]any{"correlation_id": "req-1"})
	provider.GetLogger("onboarding.notify").WithContext(ctx).Debug("notify.event.queued")

	if logs.All()[0].ContextMap()["correlation_id"] != "req-1" {
		t.Fatalf("expected context field, got %v", logs.All()[0].ContextMap())
	}
}

func TestNewProviderRejectsUnknownMode(t *testing.T) {
	if _, err := NewProvider(Config{Mode: "chaos"}); err == nil {
		t.Fatal("expected unsupported mode error")
	}
}
