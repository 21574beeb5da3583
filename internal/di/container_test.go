package di_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-onboarding/internal/creators"
	"github.com/goliatone/go-onboarding/internal/di"
	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/engine"
	"github.com/goliatone/go-onboarding/internal/notify"
	"github.com/goliatone/go-onboarding/internal/runtimeconfig"
	"github.com/goliatone/go-onboarding/pkg/testsupport"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "dynamo"

	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrStorageProviderUnknown) {
		t.Fatalf("expected ErrStorageProviderUnknown, got %v", err)
	}
}

func TestContainerMemoryFlowRaisesInboxItem(t *testing.T) {
	ctx := context.Background()
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Level = "error"

	container, err := di.NewContainer(cfg, di.WithClock(fixedClock))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	creator, err := container.CreatorService().Create(ctx, creators.CreateCreatorInput{
		Email:       "ada@example.com",
		ContentPath: "download",
	})
	if err != nil {
		t.Fatalf("create creator: %v", err)
	}

	dashboard, err := container.DashboardService().GetDashboard(ctx, creator.ID)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dashboard.Records) != 22 {
		t.Fatalf("expected 22 download records, got %d", len(dashboard.Records))
	}

	result, err := container.EngineService().Submit(ctx, engine.SubmitInput{
		CreatorID:   creator.ID,
		MilestoneID: "intake_completed",
		Kind:        domain.SubmissionReview,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Status != domain.StatusWaitingApproval {
		t.Fatalf("expected waiting approval, got %s", result.Status)
	}

	if err := container.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	items, err := container.Inbox().ListUnread(ctx)
	if err != nil {
		t.Fatalf("list inbox: %v", err)
	}
	if len(items) != 1 || items[0].MilestoneID != "intake_completed" || items[0].Kind != domain.EventWaitingApproval {
		t.Fatalf("expected one waiting approval inbox item, got %+v", items)
	}
}

func TestContainerNotificationsDisabledUsesNop(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Notifications.Enabled = false

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if _, ok := container.Notifier().(*notify.Dispatcher); ok {
		t.Fatalf("expected no dispatcher when notifications are disabled")
	}
	if err := container.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestContainerWithBunStorage(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)

	if err := di.EnsureSchema(ctx, db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := di.EnsureSchema(ctx, db); err != nil {
		t.Fatalf("ensure schema should be idempotent: %v", err)
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.Notifications.Enabled = false
	cfg.Cache.Enabled = true

	container, err := di.NewContainer(cfg, di.WithBunDB(db), di.WithClock(fixedClock))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close(ctx) })

	creator, err := container.CreatorService().Create(ctx, creators.CreateCreatorInput{
		Email:       "grace@example.com",
		ContentPath: "blog",
	})
	if err != nil {
		t.Fatalf("create creator: %v", err)
	}
	materialized, err := container.EngineService().MaterializeMissing(ctx, creator.ID)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if len(materialized.Added) != 17 {
		t.Fatalf("expected 17 records, got %d", len(materialized.Added))
	}

	if _, err := container.EngineService().Submit(ctx, engine.SubmitInput{
		CreatorID:   creator.ID,
		MilestoneID: "intake_completed",
		Kind:        domain.SubmissionConfirmation,
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	notes, err := container.AuditRecorder().ListByCreator(ctx, creator.ID)
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) < 2 {
		t.Fatalf("expected materialize and submit notes, got %d", len(notes))
	}
	if container.BunDB() != db {
		t.Fatalf("expected container to expose the supplied db")
	}
}

func TestContainerServesHTTP(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Notifications.Enabled = false
	cfg.HTTP.BasePath = "/v1"

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	mux := http.NewServeMux()
	if err := container.API().Register(mux); err != nil {
		t.Fatalf("register: %v", err)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/catalog", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "intake_completed") {
		t.Fatalf("expected catalog body, got %s", rec.Body.String())
	}
}

func TestNewLoggerProviderSelectsImplementation(t *testing.T) {
	for _, provider := range []string{"console", "gologger", "zap"} {
		got, err := di.NewLoggerProvider(runtimeconfig.LoggingConfig{Provider: provider, Level: "info", Format: "json"})
		if err != nil {
			t.Fatalf("%s: unexpected error %v", provider, err)
		}
		if got.GetLogger("onboarding.test") == nil {
			t.Fatalf("%s: expected logger", provider)
		}
	}
	if _, err := di.NewLoggerProvider(runtimeconfig.LoggingConfig{Provider: "syslog"}); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestOpenDatabaseRequiresDSN(t *testing.T) {
	if _, err := di.OpenDatabase(runtimeconfig.StorageConfig{Provider: "bun", Dialect: "sqlite"}); !errors.Is(err, di.ErrDSNRequired) {
		t.Fatalf("expected ErrDSNRequired, got %v", err)
	}
}
