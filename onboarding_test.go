package onboarding_test

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	onboarding "github.com/goliatone/go-onboarding"
	"github.com/goliatone/go-onboarding/internal/creators"
	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/engine"
)

func TestConfigValidateRequiresDSNForBun(t *testing.T) {
	cfg := onboarding.DefaultConfig()
	cfg.Storage.Provider = "bun"

	if err := cfg.Validate(); !errors.Is(err, onboarding.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}

func TestModuleWiresServices(t *testing.T) {
	ctx := context.Background()
	cfg := onboarding.DefaultConfig()
	cfg.Notifications.Enabled = false

	module, err := onboarding.New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = module.Close(ctx) })

	creator, err := module.Creators().Create(ctx, creators.CreateCreatorInput{Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("create creator: %v", err)
	}
	if _, err := module.Engine().Submit(ctx, engine.SubmitInput{
		CreatorID:   creator.ID,
		MilestoneID: "intake_completed",
		Kind:        domain.SubmissionConfirmation,
	}); !errors.Is(err, engine.ErrNotFound) {
		t.Fatalf("expected missing record before materialization, got %v", err)
	}

	dashboard, err := module.Dashboards().GetDashboard(ctx, creator.ID)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dashboard.AppliedPath != domain.PathUnset || len(dashboard.Records) != 15 {
		t.Fatalf("expected 15 unset-path records, got %s/%d", dashboard.AppliedPath, len(dashboard.Records))
	}
	if module.Catalog().Len() != 31 {
		t.Fatalf("expected default catalog")
	}
	if len(module.Commands().All()) != 10 {
		t.Fatalf("expected ten command handlers")
	}
}

func TestMigrationsEmbedSchema(t *testing.T) {
	files, err := fs.Glob(onboarding.GetMigrationsFS(), "data/sql/migrations/*.up.sql")
	if err != nil || len(files) == 0 {
		t.Fatalf("expected embedded up migrations, got %v (%v)", files, err)
	}
	body, err := fs.ReadFile(onboarding.GetMigrationsFS(), files[0])
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if !strings.Contains(string(body), "milestone_records_project_milestone_idx") {
		t.Fatalf("expected unique record index in schema")
	}
}
