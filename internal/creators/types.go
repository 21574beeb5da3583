package creators

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-onboarding/internal/domain"
)

// Creator is an onboarding participant. CurrentProjectID points at the project context whose
// milestone records drive the dashboard.
type Creator struct {
	bun.BaseModel `bun:"table:creators,alias:cr"`

	ID               uuid.UUID            `bun:",pk,type:uuid"                                 json:"id"`
	Email            string               `bun:"email,notnull"                                 json:"email"`
	Name             string               `bun:"name"                                          json:"name,omitempty"`
	ContentPath      domain.ContentPath   `bun:"content_path,notnull"                          json:"content_path"`
	CurrentPhaseID   string               `bun:"current_phase_id"                              json:"current_phase_id,omitempty"`
	CurrentProjectID uuid.UUID            `bun:"current_project_id,type:uuid"                  json:"current_project_id"`
	Status           domain.CreatorStatus `bun:"status,notnull"                                json:"status"`
	CreatedAt        time.Time            `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time            `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Project is one run through the milestone pipeline for a creator.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:pj"`

	ID          uuid.UUID            `bun:",pk,type:uuid"                json:"id"`
	CreatorID   uuid.UUID            `bun:"creator_id,notnull,type:uuid" json:"creator_id"`
	Sequence    int                  `bun:"sequence,notnull"             json:"sequence"`
	ContentPath domain.ContentPath   `bun:"content_path,notnull"         json:"content_path"`
	Status      domain.ProjectStatus `bun:"status,notnull"               json:"status"`
	StartedAt   time.Time            `bun:"started_at,notnull"           json:"started_at"`
	ArchivedAt  *time.Time           `bun:"archived_at,nullzero"         json:"archived_at,omitempty"`
}

func cloneCreator(src *Creator) *Creator {
	if src == nil {
		return nil
	}
	copied := *src
	return &copied
}

func cloneProject(src *Project) *Project {
	if src == nil {
		return nil
	}
	copied := *src
	if src.ArchivedAt != nil {
		archived := *src.ArchivedAt
		copied.ArchivedAt = &archived
	}
	return &copied
}
