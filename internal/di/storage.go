package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-onboarding/internal/audit"
	"github.com/goliatone/go-onboarding/internal/creators"
	"github.com/goliatone/go-onboarding/internal/notify"
	"github.com/goliatone/go-onboarding/internal/records"
	"github.com/goliatone/go-onboarding/internal/runtimeconfig"
)

// ErrDSNRequired indicates OpenDatabase was called without a data source name.
var ErrDSNRequired = errors.New("di: storage dsn required")

// OpenDatabase opens a bun handle for the configured dialect. sqlite uses go-sqlite3 and
// postgres uses lib/pq.
func OpenDatabase(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, ErrDSNRequired
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Dialect)) {
	case "", "sqlite":
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("di: open sqlite: %w", err)
		}
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case "postgres":
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("di: open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrStorageDialectUnknown, cfg.Dialect)
	}
}

type schemaIndex struct {
	model   any
	name    string
	columns []string
	unique  bool
}

// EnsureSchema creates the onboarding tables and indexes when they are missing.
func EnsureSchema(ctx context.Context, db bun.IDB) error {
	if db == nil {
		return errors.New("di: database required")
	}
	models := []any{
		(*creators.Creator)(nil),
		(*creators.Project)(nil),
		(*records.Record)(nil),
		(*audit.Note)(nil),
		(*notify.InboxItem)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("di: create table: %w", err)
		}
	}

	indexes := []schemaIndex{
		{model: (*creators.Creator)(nil), name: "creators_email_idx", columns: []string{"email"}, unique: true},
		{model: (*creators.Project)(nil), name: "projects_creator_sequence_idx", columns: []string{"creator_id", "sequence"}, unique: true},
		{model: (*records.Record)(nil), name: "milestone_records_project_milestone_idx", columns: []string{"project_id", "milestone_id"}, unique: true},
		{model: (*records.Record)(nil), name: "milestone_records_creator_idx", columns: []string{"creator_id"}},
		{model: (*audit.Note)(nil), name: "audit_notes_creator_idx", columns: []string{"creator_id", "occurred_at"}},
	}
	for _, idx := range indexes {
		query := db.NewCreateIndex().Model(idx.model).Index(idx.name).IfNotExists().Column(idx.columns...)
		if idx.unique {
			query = query.Unique()
		}
		if _, err := query.Exec(ctx); err != nil {
			return fmt.Errorf("di: create index %s: %w", idx.name, err)
		}
	}
	return nil
}
