package records

import (
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-onboarding/internal/catalog"
	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/identity"
)

// PathChangeFact records the content path change that materialized a record.
type PathChangeFact struct {
	From      domain.ContentPath `json:"from"`
	To        domain.ContentPath `json:"to"`
	ChangedBy string             `json:"changed_by,omitempty"`
	ChangedAt time.Time          `json:"changed_at"`
}

// RevisionFact captures the most recent revision request against a record.
type RevisionFact struct {
	Note        string    `json:"note,omitempty"`
	RequestedBy string    `json:"requested_by,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// AuditFacts holds the known metadata variants the engine reasons about. Anything
// action-specific travels in Record.Payload instead.
type AuditFacts struct {
	// IsOptional overrides the catalog bonus classification when set.
	IsOptional *bool           `json:"is_optional,omitempty"`
	OutOfOrder bool            `json:"out_of_order,omitempty"`
	AdminNote  string          `json:"admin_note,omitempty"`
	PathChange *PathChangeFact `json:"path_change,omitempty"`
	Revision   *RevisionFact   `json:"revision,omitempty"`
	SeededBy   string          `json:"seeded_by,omitempty"`
}

// Record is the per-project status of one catalog milestone.
type Record struct {
	bun.BaseModel `bun:"table:milestone_records,alias:mr"`

	ID           uuid.UUID      `bun:",pk,type:uuid"                 json:"id"`
	CreatorID    uuid.UUID      `bun:"creator_id,notnull,type:uuid"  json:"creator_id"`
	ProjectID    uuid.UUID      `bun:"project_id,notnull,type:uuid"  json:"project_id"`
	MilestoneID  string         `bun:"milestone_id,notnull"          json:"milestone_id"`
	SortPhase    int            `bun:"sort_phase,notnull"            json:"sort_phase"`
	SortOrder    int            `bun:"sort_order,notnull"            json:"sort_order"`
	Status       domain.Status  `bun:"status,notnull"                json:"status"`
	CompletedAt  *time.Time     `bun:"completed_at,nullzero"         json:"completed_at,omitempty"`
	CompletedBy  string         `bun:"completed_by"                  json:"completed_by,omitempty"`
	PausedAt     *time.Time     `bun:"paused_at,nullzero"            json:"paused_at,omitempty"`
	PausedReason string         `bun:"paused_reason"                 json:"paused_reason,omitempty"`
	Facts        AuditFacts     `bun:"facts,type:jsonb"              json:"facts"`
	Payload      map[string]any `bun:"payload,type:jsonb"            json:"payload,omitempty"`
	CreatedAt    time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// SortKey returns the record's stored global position. Call Realign first when the order
// must match the live catalog.
func (r *Record) SortKey() catalog.SortKey {
	return catalog.SortKey{PhaseOrder: r.SortPhase, Order: r.SortOrder}
}

// Realign copies the catalog's position for the milestone onto the record and reports whether
// it moved. Records for milestones the catalog no longer knows keep their stored position.
func (r *Record) Realign(cat catalog.Catalog) bool {
	milestone, ok := cat.Milestone(r.MilestoneID)
	if !ok {
		return false
	}
	key := milestone.SortKey()
	if key == r.SortKey() {
		return false
	}
	r.SortPhase = key.PhaseOrder
	r.SortOrder = key.Order
	return true
}

// SortByCatalog realigns every record against cat and orders the list by the result.
func SortByCatalog(list []*Record, cat catalog.Catalog) {
	for _, rec := range list {
		if rec != nil {
			rec.Realign(cat)
		}
	}
	SortByKey(list)
}

// New builds a record for the milestone in the given project context.
func New(creatorID, projectID uuid.UUID, milestone catalog.Milestone, status domain.Status, now time.Time) *Record {
	return &Record{
		ID:          identity.RecordUUID(projectID, milestone.ID),
		CreatorID:   creatorID,
		ProjectID:   projectID,
		MilestoneID: milestone.ID,
		SortPhase:   milestone.PhaseOrder,
		SortOrder:   milestone.Order,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MergePayload copies values into the record's payload, overwriting existing keys.
func (r *Record) MergePayload(values map[string]any) {
	if len(values) == 0 {
		return
	}
	if r.Payload == nil {
		r.Payload = make(map[string]any, len(values))
	}
	maps.Copy(r.Payload, values)
}

// ClearCompletion drops completion stamps, used when a record is rewound.
func (r *Record) ClearCompletion() {
	r.CompletedAt = nil
	r.CompletedBy = ""
}

// ClearPause drops pause stamps.
func (r *Record) ClearPause() {
	r.PausedAt = nil
	r.PausedReason = ""
}

// Clone returns a deep copy of the record.
func Clone(src *Record) *Record {
	if src == nil {
		return nil
	}
	copied := *src
	copied.CompletedAt = cloneTime(src.CompletedAt)
	copied.PausedAt = cloneTime(src.PausedAt)
	copied.Facts = cloneFacts(src.Facts)
	copied.Payload = cloneMap(src.Payload)
	return &copied
}

func cloneFacts(src AuditFacts) AuditFacts {
	out := src
	if src.IsOptional != nil {
		value := *src.IsOptional
		out.IsOptional = &value
	}
	if src.PathChange != nil {
		change := *src.PathChange
		out.PathChange = &change
	}
	if src.Revision != nil {
		revision := *src.Revision
		out.Revision = &revision
	}
	return out
}

func cloneTime(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		if nested, ok := value.(map[string]any); ok {
			out[key] = cloneMap(nested)
			continue
		}
		out[key] = value
	}
	return out
}
