package records

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
)

var errBunDatabaseRequired = errors.New("records: bun repository requires a database")

var updateColumns = []string{
	"status", "completed_at", "completed_by", "paused_at", "paused_reason",
	"facts", "payload", "sort_phase", "sort_order", "updated_at",
}

// BunRepository persists milestone records through Bun. The milestone_records table
// carries a unique index on (project_id, milestone_id).
type BunRepository struct {
	db bun.IDB
}

// NewBunRepository constructs a Bun-backed repository.
func NewBunRepository(db bun.IDB) *BunRepository {
	return &BunRepository{db: db}
}

var _ Repository = (*BunRepository)(nil)

func (r *BunRepository) Get(ctx context.Context, projectID uuid.UUID, milestoneID string) (*Record, error) {
	if r.db == nil {
		return nil, errBunDatabaseRequired
	}
	record := new(Record)
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.project_id = ?", projectID).
		Where("?TableAlias.milestone_id = ?", milestoneID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "milestone_record", Key: recordKey(projectID, milestoneID)}
		}
		return nil, err
	}
	return record, nil
}

func (r *BunRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*Record, error) {
	return r.list(ctx, "?TableAlias.project_id = ?", projectID)
}

func (r *BunRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*Record, error) {
	return r.list(ctx, "?TableAlias.creator_id = ?", creatorID)
}

func (r *BunRepository) list(ctx context.Context, where string, arg uuid.UUID) ([]*Record, error) {
	if r.db == nil {
		return nil, errBunDatabaseRequired
	}
	var out []*Record
	err := r.db.NewSelect().
		Model(&out).
		Where(where, arg).
		OrderExpr("?TableAlias.sort_phase ASC, ?TableAlias.sort_order ASC, ?TableAlias.milestone_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BunRepository) InsertIfAbsent(ctx context.Context, record *Record) (bool, error) {
	if r.db == nil {
		return false, errBunDatabaseRequired
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	res, err := r.db.NewInsert().
		Model(record).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *BunRepository) Update(ctx context.Context, record *Record) (*Record, error) {
	if r.db == nil {
		return nil, errBunDatabaseRequired
	}
	if err := updateRecord(ctx, r.db, record); err != nil {
		return nil, err
	}
	return Clone(record), nil
}

func (r *BunRepository) UpdateBatch(ctx context.Context, batch []*Record) error {
	if r.db == nil {
		return errBunDatabaseRequired
	}
	if len(batch) == 0 {
		return nil
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, record := range batch {
			if err := updateRecord(ctx, tx, record); err != nil {
				return err
			}
		}
		return nil
	})
}

func updateRecord(ctx context.Context, db bun.IDB, record *Record) error {
	res, err := db.NewUpdate().
		Model(record).
		Column(updateColumns...).
		Where("project_id = ?", record.ProjectID).
		Where("milestone_id = ?", record.MilestoneID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &NotFoundError{Resource: "milestone_record", Key: recordKey(record.ProjectID, record.MilestoneID)}
	}
	return nil
}

// isUniqueViolation recognises constraint errors from the supported drivers so a racing
// insert is treated as already materialized.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAlreadyMaterialized) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
