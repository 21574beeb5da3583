package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	onboarding "github.com/goliatone/go-onboarding"
)

func quietModules(t *testing.T) {
	t.Helper()
	original := moduleBuilder
	t.Cleanup(func() { moduleBuilder = original })
	moduleBuilder = func(cfg onboarding.Config) (*onboarding.Module, error) {
		cfg.Logging.Level = "error"
		cfg.Notifications.Enabled = false
		return onboarding.New(cfg)
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := run(context.Background(), nil, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected usage error without a command")
	}
	if err := run(context.Background(), []string{"teleport"}, &bytes.Buffer{}); err == nil || !strings.Contains(err.Error(), "teleport") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestRunCatalogFiltersByPath(t *testing.T) {
	quietModules(t)

	var out bytes.Buffer
	if err := run(context.Background(), []string{"catalog", "-path", "download"}, &out); err != nil {
		t.Fatalf("catalog returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 22 {
		t.Fatalf("expected 22 download milestones, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "intake_completed") {
		t.Fatalf("expected intake first, got %q", lines[0])
	}

	if err := run(context.Background(), []string{"catalog", "-path", "podcast"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for unknown path")
	}
}

func TestDSNFlagSelectsBunStorage(t *testing.T) {
	original := moduleBuilder
	defer func() { moduleBuilder = original }()

	stop := errors.New("stop")
	var captured onboarding.Config
	moduleBuilder = func(cfg onboarding.Config) (*onboarding.Module, error) {
		captured = cfg
		return nil, stop
	}

	err := run(context.Background(), []string{"catalog", "-dsn", "file:test.db", "-dialect", "sqlite"}, &bytes.Buffer{})
	if !errors.Is(err, stop) {
		t.Fatalf("expected builder error, got %v", err)
	}
	if captured.Storage.Provider != "bun" || captured.Storage.DSN != "file:test.db" {
		t.Fatalf("expected bun storage from flags, got %+v", captured.Storage)
	}
}

func TestMigrateRequiresDSN(t *testing.T) {
	t.Setenv("ONBOARDING_STORAGE_PROVIDER", "memory")
	t.Setenv("ONBOARDING_STORAGE_DSN", "")
	if err := run(context.Background(), []string{"migrate"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected migrate to require a dsn")
	}
}

func TestCommandsRequireCreator(t *testing.T) {
	quietModules(t)

	for _, name := range []string{"dashboard", "submit", "complete", "revise", "path", "restart", "pause", "resume", "relock", "optional"} {
		if err := run(context.Background(), []string{name}, &bytes.Buffer{}); err == nil || !strings.Contains(err.Error(), "-creator") {
			t.Fatalf("%s: expected missing creator error, got %v", name, err)
		}
	}
}

func TestSubmitRejectsMalformedPayload(t *testing.T) {
	quietModules(t)

	err := run(context.Background(), []string{
		"submit",
		"-creator", "5f7b5c1e-2f1a-4c9e-9d53-0e8a4b4f7a10",
		"-milestone", "intake_completed",
		"-payload", "{not json",
	}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "parse payload") {
		t.Fatalf("expected payload parse error, got %v", err)
	}
}

func TestRunLifecycleAgainstSQLite(t *testing.T) {
	quietModules(t)
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "onboarding.db")

	var out bytes.Buffer
	if err := run(ctx, []string{"migrate", "-dsn", dsn, "-dialect", "sqlite"}, &out); err != nil {
		t.Fatalf("migrate returned error: %v", err)
	}

	out.Reset()
	if err := run(ctx, []string{"create", "-dsn", dsn, "-email", "ada@example.com", "-path", "blog"}, &out); err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	var creator struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(out.Bytes(), &creator); err != nil {
		t.Fatalf("decode creator: %v", err)
	}

	out.Reset()
	if err := run(ctx, []string{
		"submit", "-dsn", dsn,
		"-creator", creator.ID,
		"-milestone", "intake_completed",
		"-kind", "confirmation",
	}, &out); err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	if strings.TrimSpace(out.String()) != "ok" {
		t.Fatalf("expected ok, got %q", out.String())
	}

	out.Reset()
	if err := run(ctx, []string{"dashboard", "-dsn", dsn, "-creator", creator.ID}, &out); err != nil {
		t.Fatalf("dashboard returned error: %v", err)
	}
	var dashboard struct {
		Records []struct {
			Record struct {
				MilestoneID string `json:"milestone_id"`
				Status      string `json:"status"`
			} `json:"record"`
		} `json:"records"`
	}
	if err := json.Unmarshal(out.Bytes(), &dashboard); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if len(dashboard.Records) != 17 {
		t.Fatalf("expected 17 blog records, got %d", len(dashboard.Records))
	}
	if first := dashboard.Records[0].Record; first.MilestoneID != "intake_completed" || first.Status != "completed" {
		t.Fatalf("expected intake completed, got %+v", first)
	}

	err := run(ctx, []string{
		"submit", "-dsn", dsn,
		"-creator", creator.ID,
		"-milestone", "intake_completed",
	}, &bytes.Buffer{})
	if err == nil {
		t.Fatalf("expected second submit to fail")
	}

	if err := run(ctx, []string{
		"optional", "-dsn", dsn,
		"-creator", creator.ID,
		"-milestone", "intake_completed",
		"-actor", "admin:ops@example.com",
		"-set", "true",
	}, &bytes.Buffer{}); err != nil {
		t.Fatalf("optional returned error: %v", err)
	}
	out.Reset()
	if err := run(ctx, []string{"dashboard", "-dsn", dsn, "-creator", creator.ID}, &out); err != nil {
		t.Fatalf("dashboard returned error: %v", err)
	}
	var progress struct {
		CorePercent   int `json:"core_percent"`
		CoreCompleted int `json:"core_completed"`
	}
	if err := json.Unmarshal(out.Bytes(), &progress); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if progress.CoreCompleted != 0 || progress.CorePercent != 0 {
		t.Fatalf("expected intake counted as bonus, got %+v", progress)
	}
}

func TestOptionalRejectsUnknownSetting(t *testing.T) {
	quietModules(t)

	err := run(context.Background(), []string{
		"optional",
		"-creator", "5f7b5c1e-2f1a-4c9e-9d53-0e8a4b4f7a10",
		"-milestone", "intake_completed",
		"-set", "maybe",
	}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "-set must be") {
		t.Fatalf("expected -set error, got %v", err)
	}
}
