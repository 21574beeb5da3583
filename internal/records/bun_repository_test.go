package records_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/records"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open("sqlite3", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqldb.Close()
	})

	db := bun.NewDB(sqldb, sqlitedialect.New())
	ctx := context.Background()
	if _, err := db.NewCreateTable().Model((*records.Record)(nil)).IfNotExists().Exec(ctx); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.NewCreateIndex().
		Model((*records.Record)(nil)).
		Index("milestone_records_project_milestone_idx").
		Unique().
		Column("project_id", "milestone_id").
		Exec(ctx); err != nil {
		t.Fatalf("create index: %v", err)
	}
	return db
}

func TestBunRepositoryInsertIfAbsentSwallowsDuplicates(t *testing.T) {
	repo := records.NewBunRepository(newTestDB(t))
	ctx := context.Background()
	projectID := uuid.New()

	inserted, err := repo.InsertIfAbsent(ctx, newRecord(t, projectID, "intake_completed", domain.StatusAvailable))
	if err != nil || !inserted {
		t.Fatalf("expected insert, got inserted=%v err=%v", inserted, err)
	}

	inserted, err = repo.InsertIfAbsent(ctx, newRecord(t, projectID, "intake_completed", domain.StatusLocked))
	if err != nil {
		t.Fatalf("expected duplicate to be swallowed, got %v", err)
	}
	if inserted {
		t.Fatalf("expected duplicate insert to report false")
	}

	stored, err := repo.Get(ctx, projectID, "intake_completed")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if stored.Status != domain.StatusAvailable {
		t.Fatalf("expected original status, got %s", stored.Status)
	}
}

func TestBunRepositoryRoundTripsFactsAndOrdering(t *testing.T) {
	repo := records.NewBunRepository(newTestDB(t))
	ctx := context.Background()
	projectID := uuid.New()

	optional := true
	late := newRecord(t, projectID, "launch_announced", domain.StatusLocked)
	early := newRecord(t, projectID, "intake_completed", domain.StatusAvailable)
	early.Facts = records.AuditFacts{
		IsOptional: &optional,
		AdminNote:  "seeded",
		PathChange: &records.PathChangeFact{From: domain.PathBlog, To: domain.PathCourse, ChangedBy: "admin:ops@example.com"},
	}
	early.Payload = map[string]any{"answer": "yes"}

	for _, rec := range []*records.Record{late, early} {
		if _, err := repo.InsertIfAbsent(ctx, rec); err != nil {
			t.Fatalf("insert %s: %v", rec.MilestoneID, err)
		}
	}

	list, err := repo.ListByProject(ctx, projectID)
	if err != nil {
		t.Fatalf("ListByProject returned error: %v", err)
	}
	if len(list) != 2 || list[0].MilestoneID != "intake_completed" {
		t.Fatalf("expected sort-key ordering, got %+v", list)
	}
	facts := list[0].Facts
	if facts.IsOptional == nil || !*facts.IsOptional || facts.AdminNote != "seeded" {
		t.Fatalf("expected facts round trip, got %+v", facts)
	}
	if facts.PathChange == nil || facts.PathChange.To != domain.PathCourse {
		t.Fatalf("expected path change fact, got %+v", facts.PathChange)
	}
	if list[0].Payload["answer"] != "yes" {
		t.Fatalf("expected payload round trip, got %v", list[0].Payload)
	}
}

func TestBunRepositoryUpdateBatch(t *testing.T) {
	repo := records.NewBunRepository(newTestDB(t))
	ctx := context.Background()
	projectID := uuid.New()

	first := newRecord(t, projectID, "intake_completed", domain.StatusAvailable)
	second := newRecord(t, projectID, "welcome_call_scheduled", domain.StatusLocked)
	for _, rec := range []*records.Record{first, second} {
		if _, err := repo.InsertIfAbsent(ctx, rec); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	first.Status = domain.StatusCompleted
	second.Status = domain.StatusAvailable
	if err := repo.UpdateBatch(ctx, []*records.Record{first, second}); err != nil {
		t.Fatalf("UpdateBatch returned error: %v", err)
	}

	stored, _ := repo.Get(ctx, projectID, "welcome_call_scheduled")
	if stored.Status != domain.StatusAvailable {
		t.Fatalf("expected batch update, got %s", stored.Status)
	}

	missing := newRecord(t, projectID, "agreement_sent", domain.StatusLocked)
	first.Status = domain.StatusLocked
	if err := repo.UpdateBatch(ctx, []*records.Record{first, missing}); !records.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	stored, _ = repo.Get(ctx, projectID, "intake_completed")
	if stored.Status != domain.StatusCompleted {
		t.Fatalf("expected failed batch to roll back, got %s", stored.Status)
	}
}

func TestBunRepositoryGetMissing(t *testing.T) {
	repo := records.NewBunRepository(newTestDB(t))
	if _, err := repo.Get(context.Background(), uuid.New(), "intake_completed"); !records.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
