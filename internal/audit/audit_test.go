package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-onboarding/internal/audit"
	"github.com/goliatone/go-onboarding/pkg/testsupport"
)

func TestMemoryRecorderFilterAndFail(t *testing.T) {
	ctx := context.Background()
	recorder := audit.NewMemoryRecorder()
	maya, lee := uuid.New(), uuid.New()
	base := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	notes := []audit.Note{
		{CreatorID: maya, Action: audit.ActionSubmitted, MilestoneID: "agreement_signed", OccurredAt: base.Add(time.Hour)},
		{CreatorID: lee, Action: audit.ActionProjectRestarted, OccurredAt: base},
		{CreatorID: maya, Action: audit.ActionRevisionRequested, MilestoneID: "outline_drafted", OccurredAt: base, Metadata: map[string]any{"note": "tighten scope"}},
	}
	for _, note := range notes {
		if err := recorder.Record(ctx, note); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := recorder.ListByCreator(ctx, maya)
	if err != nil {
		t.Fatalf("list by creator: %v", err)
	}
	if len(got) != 2 || got[0].Action != audit.ActionRevisionRequested {
		t.Fatalf("expected maya's notes oldest first, got %+v", got)
	}
	if got[0].ID == uuid.Nil {
		t.Fatal("expected generated note id")
	}

	got[0].Metadata["note"] = "mutated"
	again, _ := recorder.ListByCreator(ctx, maya)
	if again[0].Metadata["note"] != "tighten scope" {
		t.Fatalf("expected stored metadata to be isolated, got %v", again[0].Metadata)
	}

	if err := recorder.Record(ctx, audit.Note{Action: audit.ActionSubmitted}); !errors.Is(err, audit.ErrCreatorRequired) {
		t.Fatalf("expected ErrCreatorRequired, got %v", err)
	}

	boom := errors.New("audit down")
	recorder.Fail(boom)
	if err := recorder.Record(ctx, audit.Note{CreatorID: maya, Action: audit.ActionSubmitted}); !errors.Is(err, boom) {
		t.Fatalf("expected configured failure, got %v", err)
	}
}

func TestBunRecorderRoundTrip(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)

	if _, err := db.NewCreateTable().Model((*audit.Note)(nil)).IfNotExists().Exec(ctx); err != nil {
		t.Fatalf("create table: %v", err)
	}

	recorder := audit.NewBunRecorder(db)
	creatorID := uuid.New()
	occurred := time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC)
	if err := recorder.Record(ctx, audit.Note{
		CreatorID:   creatorID,
		MilestoneID: "content_path_selected",
		Action:      audit.ActionContentPathChanged,
		Actor:       "admin:ops@example.com",
		Metadata:    map[string]any{"from": "unset", "to": "course"},
		OccurredAt:  occurred,
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	notes, err := recorder.ListByCreator(ctx, creatorID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected one note, got %d", len(notes))
	}
	if notes[0].Metadata["to"] != "course" || notes[0].Actor != "admin:ops@example.com" {
		t.Fatalf("unexpected note %+v", notes[0])
	}
}
