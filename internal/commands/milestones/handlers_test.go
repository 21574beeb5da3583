package milestonescmd_test

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-onboarding/internal/catalog"
	milestonescmd "github.com/goliatone/go-onboarding/internal/commands/milestones"
	"github.com/goliatone/go-onboarding/internal/creators"
	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/engine"
	"github.com/goliatone/go-onboarding/internal/logging"
	"github.com/goliatone/go-onboarding/internal/records"
)

func setup(t *testing.T) (*milestonescmd.Handlers, *records.MemoryRepository, *creators.Creator) {
	t.Helper()
	ctx := context.Background()
	recs := records.NewMemoryRepository()
	people := creators.NewMemoryCreatorRepository()
	projects := creators.NewMemoryProjectRepository()

	creator, err := creators.NewService(people, projects).Create(ctx, creators.CreateCreatorInput{
		Email:       "ada@example.com",
		ContentPath: "course",
	})
	if err != nil {
		t.Fatalf("create creator: %v", err)
	}
	svc, err := engine.NewService(engine.Dependencies{
		Catalog:  catalog.Default(),
		Records:  recs,
		Creators: people,
		Projects: projects,
	})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return milestonescmd.NewHandlers(svc, logging.NoOp()), recs, creator
}

func TestSubmitCommandFlow(t *testing.T) {
	handlers, recs, creator := setup(t)
	ctx := context.Background()

	if err := handlers.Materialize.Execute(ctx, milestonescmd.MaterializeMilestonesCommand{CreatorID: creator.ID}); err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if err := handlers.Submit.Execute(ctx, milestonescmd.SubmitMilestoneCommand{
		CreatorID:   creator.ID,
		MilestoneID: "intake_completed",
		Kind:        "confirmation",
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	rec, err := recs.Get(ctx, creator.CurrentProjectID, "intake_completed")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if rec.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %s", rec.Status)
	}
}

func TestCommandValidationFailures(t *testing.T) {
	handlers, _, creator := setup(t)
	ctx := context.Background()

	cases := map[string]error{
		"submit missing kind": handlers.Submit.Execute(ctx, milestonescmd.SubmitMilestoneCommand{
			CreatorID: creator.ID, MilestoneID: "intake_completed",
		}),
		"complete bad email": handlers.AdminComplete.Execute(ctx, milestonescmd.AdminCompleteMilestoneCommand{
			CreatorID: creator.ID, MilestoneID: "intake_completed", AdminEmail: "not-an-email",
		}),
		"revision missing requester": handlers.Revision.Execute(ctx, milestonescmd.RequestRevisionCommand{
			CreatorID: creator.ID, MilestoneID: "intake_completed",
		}),
		"path unknown": handlers.ChangePath.Execute(ctx, milestonescmd.ChangeContentPathCommand{
			CreatorID: creator.ID, Path: "podcast",
		}),
		"restart missing creator": handlers.Restart.Execute(ctx, milestonescmd.RestartProjectCommand{}),
		"pause missing actor": handlers.Pause.Execute(ctx, milestonescmd.PauseMilestoneCommand{
			CreatorID: creator.ID, MilestoneID: "intake_completed",
		}),
		"optional missing actor": handlers.SetOptional.Execute(ctx, milestonescmd.SetOptionalCommand{
			CreatorID: creator.ID, MilestoneID: "intake_completed",
		}),
	}
	for name, err := range cases {
		if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
			t.Fatalf("%s: expected validation category, got %v", name, err)
		}
	}
}

func TestCommandCategorisesEngineErrors(t *testing.T) {
	handlers, _, creator := setup(t)
	ctx := context.Background()

	if err := handlers.Materialize.Execute(ctx, milestonescmd.MaterializeMilestonesCommand{CreatorID: creator.ID}); err != nil {
		t.Fatalf("materialize: %v", err)
	}
	err := handlers.Submit.Execute(ctx, milestonescmd.SubmitMilestoneCommand{
		CreatorID:   creator.ID,
		MilestoneID: "agreement_signed",
		Kind:        "confirmation",
	})
	if !goerrors.IsCategory(err, goerrors.CategoryConflict) {
		t.Fatalf("expected conflict category, got %v", err)
	}

	err = handlers.Materialize.Execute(ctx, milestonescmd.MaterializeMilestonesCommand{CreatorID: uuid.New()})
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category, got %v", err)
	}
}

func TestAdminCommandsRoundTrip(t *testing.T) {
	handlers, recs, creator := setup(t)
	ctx := context.Background()

	if err := handlers.Materialize.Execute(ctx, milestonescmd.MaterializeMilestonesCommand{CreatorID: creator.ID}); err != nil {
		t.Fatalf("materialize: %v", err)
	}
	steps := []func() error{
		func() error {
			return handlers.AdminComplete.Execute(ctx, milestonescmd.AdminCompleteMilestoneCommand{
				CreatorID: creator.ID, MilestoneID: "intake_completed", AdminEmail: "ops@example.com",
			})
		},
		func() error {
			return handlers.Pause.Execute(ctx, milestonescmd.PauseMilestoneCommand{
				CreatorID: creator.ID, MilestoneID: "welcome_call_scheduled", Actor: "admin:ops@example.com", Reason: "holiday",
			})
		},
		func() error {
			return handlers.Resume.Execute(ctx, milestonescmd.ResumeMilestoneCommand{
				CreatorID: creator.ID, MilestoneID: "welcome_call_scheduled", Actor: "admin:ops@example.com",
			})
		},
		func() error {
			return handlers.Revision.Execute(ctx, milestonescmd.RequestRevisionCommand{
				CreatorID: creator.ID, MilestoneID: "intake_completed", RequestedBy: "admin:ops@example.com",
			})
		},
		func() error {
			return handlers.ChangePath.Execute(ctx, milestonescmd.ChangeContentPathCommand{CreatorID: creator.ID, Path: "blog"})
		},
		func() error {
			return handlers.Relock.Execute(ctx, milestonescmd.RelockMilestoneCommand{
				CreatorID: creator.ID, MilestoneID: "intake_completed", Actor: "admin:ops@example.com",
			})
		},
		func() error {
			optional := true
			return handlers.SetOptional.Execute(ctx, milestonescmd.SetOptionalCommand{
				CreatorID: creator.ID, MilestoneID: "welcome_call_scheduled", Optional: &optional, Actor: "admin:ops@example.com",
			})
		},
		func() error {
			return handlers.Restart.Execute(ctx, milestonescmd.RestartProjectCommand{CreatorID: creator.ID})
		},
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	all, err := recs.ListByCreator(ctx, creator.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 31+17 {
		t.Fatalf("expected records across both projects, got %d", len(all))
	}
	if got := len(handlers.All()); got != 10 {
		t.Fatalf("expected 10 handlers, got %d", got)
	}
}
