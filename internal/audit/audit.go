package audit

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Actions stamped on audit notes.
const (
	ActionSubmitted          = "milestone.submitted"
	ActionAdminCompleted     = "milestone.admin_completed"
	ActionRevisionRequested  = "milestone.revision_requested"
	ActionPaused             = "milestone.paused"
	ActionResumed            = "milestone.resumed"
	ActionRelocked           = "milestone.relocked"
	ActionOptionalChanged    = "milestone.optional_changed"
	ActionContentPathChanged = "creator.content_path_changed"
	ActionProjectRestarted   = "project.restarted"
	ActionMaterialized       = "milestones.materialized"
)

// ErrCreatorRequired indicates a note without a creator id.
var ErrCreatorRequired = errors.New("audit: creator id required")

// Note is a human-readable trail entry attached to a creator's project.
type Note struct {
	bun.BaseModel `bun:"table:audit_notes,alias:an"`

	ID          uuid.UUID      `bun:",pk,type:uuid"                json:"id"`
	CreatorID   uuid.UUID      `bun:"creator_id,notnull,type:uuid" json:"creator_id"`
	ProjectID   uuid.UUID      `bun:"project_id,type:uuid"         json:"project_id"`
	MilestoneID string         `bun:"milestone_id"                 json:"milestone_id,omitempty"`
	Action      string         `bun:"action,notnull"               json:"action"`
	Actor       string         `bun:"actor"                        json:"actor,omitempty"`
	Message     string         `bun:"message"                      json:"message,omitempty"`
	Metadata    map[string]any `bun:"metadata,type:jsonb"          json:"metadata,omitempty"`
	OccurredAt  time.Time      `bun:"occurred_at,notnull"          json:"occurred_at"`
}

// Recorder persists audit notes.
type Recorder interface {
	Record(ctx context.Context, note Note) error
	List(ctx context.Context) ([]Note, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Note, error)
}

// MemoryRecorder accumulates notes in memory.
type MemoryRecorder struct {
	mu    sync.Mutex
	notes []Note
	err   error
}

// NewMemoryRecorder constructs an empty recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Record stores the supplied note.
func (r *MemoryRecorder) Record(_ context.Context, note Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	prepared, err := prepare(note)
	if err != nil {
		return err
	}
	r.notes = append(r.notes, cloneNote(prepared))
	return nil
}

// Fail configures the recorder to return the supplied error on subsequent Record calls.
func (r *MemoryRecorder) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// List returns the notes recorded so far in insertion order.
func (r *MemoryRecorder) List(context.Context) ([]Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Note, len(r.notes))
	for i, note := range r.notes {
		out[i] = cloneNote(note)
	}
	return out, nil
}

// ListByCreator returns one creator's notes, oldest first.
func (r *MemoryRecorder) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Note, error) {
	all, _ := r.List(ctx)
	var out []Note
	for _, note := range all {
		if note.CreatorID == creatorID {
			out = append(out, note)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

// BunRecorder stores notes in the audit_notes table.
type BunRecorder struct {
	db bun.IDB
}

// NewBunRecorder constructs a recorder backed by bun.
func NewBunRecorder(db bun.IDB) *BunRecorder {
	return &BunRecorder{db: db}
}

func (r *BunRecorder) Record(ctx context.Context, note Note) error {
	prepared, err := prepare(note)
	if err != nil {
		return err
	}
	_, err = r.db.NewInsert().Model(&prepared).Exec(ctx)
	return err
}

func (r *BunRecorder) List(ctx context.Context) ([]Note, error) {
	var notes []Note
	err := r.db.NewSelect().
		Model(&notes).
		OrderExpr("?TableAlias.occurred_at ASC").
		Scan(ctx)
	return notes, err
}

func (r *BunRecorder) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Note, error) {
	var notes []Note
	err := r.db.NewSelect().
		Model(&notes).
		Where("?TableAlias.creator_id = ?", creatorID).
		OrderExpr("?TableAlias.occurred_at ASC").
		Scan(ctx)
	return notes, err
}

func prepare(note Note) (Note, error) {
	if note.CreatorID == uuid.Nil {
		return note, ErrCreatorRequired
	}
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	if note.OccurredAt.IsZero() {
		note.OccurredAt = time.Now().UTC()
	}
	return note, nil
}

func cloneNote(note Note) Note {
	if note.Metadata != nil {
		metadata := make(map[string]any, len(note.Metadata))
		for k, v := range note.Metadata {
			metadata[k] = v
		}
		note.Metadata = metadata
	}
	return note
}
