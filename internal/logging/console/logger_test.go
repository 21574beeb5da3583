package console_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-onboarding/internal/logging"
	"github.com/goliatone/go-onboarding/internal/logging/console"
)

func TestConsoleLoggerWritesModulePrefix(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 535897000, time.UTC)
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		Clock:    func() time.Time { return now },
		MinLevel: console.LevelDebug,
	})

	logger := logging.EngineLogger(provider)
	ctx := logging.ContextWithRequest(context.Background(), "req-1234", "")
	logger = logger.WithContext(ctx)

	creatorID := uuid.MustParse("8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999")
	logger.Info("engine.submit.completed",
		"creator_id", creatorID,
		"completed_at", time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC),
	)

	got := strings.TrimSpace(buf.String())
	want := "2024-03-14T15:09:26.535897Z INFO [onboarding.engine] engine.submit.completed completed_at=2024-03-15T08:00:00Z creator_id=8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999 request_id=req-1234"
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLoggerDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := console.NewProvider(console.Options{Writer: &buf}).GetLogger("onboarding.test")

	logger.Debug("ignored.debug", "foo", "bar")
	logger.Info("included.info", "foo", "bar")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected single log line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[onboarding.test] included.info foo=bar") {
		t.Fatalf("unexpected line %s", lines[0])
	}
}

func TestConsoleLoggerQuotesAndKeysLooseArgs(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{
		Writer: &buf,
		Clock:  func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
	})

	provider.GetLogger("onboarding.notify").Warn("notify.sink.failed", "error", "queue full", 42, "x", "dangling")

	line := buf.String()
	for _, want := range []string{`error="queue full"`, "arg1=x", "dangling=null"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %s in %s", want, line)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"trace":   console.LevelTrace,
		"DEBUG":   console.LevelDebug,
		"warning": console.LevelWarn,
		"error":   console.LevelError,
		"":        console.LevelInfo,
		"verbose": console.LevelInfo,
	}
	for input, want := range cases {
		if got := console.ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", input, got, want)
		}
	}
}
