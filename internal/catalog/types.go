package catalog

import (
	"slices"

	"github.com/goliatone/go-onboarding/internal/domain"
)

// Phase groups milestones into a coarse pipeline stage.
type Phase struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Order int    `json:"order" yaml:"order"`
}

// SortKey is the global ordering used for every next/previous decision.
type SortKey struct {
	PhaseOrder int `json:"phase_order"`
	Order      int `json:"order"`
}

// Less reports whether k sorts strictly before other.
func (k SortKey) Less(other SortKey) bool {
	if k.PhaseOrder != other.PhaseOrder {
		return k.PhaseOrder < other.PhaseOrder
	}
	return k.Order < other.Order
}

// Compare returns -1, 0 or 1 following the global order.
func (k SortKey) Compare(other SortKey) int {
	switch {
	case k.Less(other):
		return -1
	case other.Less(k):
		return 1
	default:
		return 0
	}
}

// ActionSpec carries UI/action metadata. The engine only inspects SubmissionSchema.
type ActionSpec struct {
	Type             string         `json:"type,omitempty"`
	Label            string         `json:"label,omitempty"`
	URL              string         `json:"url,omitempty"`
	Instructions     string         `json:"instructions,omitempty"`
	InstructionsHTML string         `json:"instructions_html,omitempty"`
	SubmissionSchema map[string]any `json:"submission_schema,omitempty"`
}

// Milestone is an immutable catalog entry.
type Milestone struct {
	ID                 string               `json:"id"`
	PhaseID            string               `json:"phase_id"`
	PhaseOrder         int                  `json:"phase_order"`
	Order              int                  `json:"order"`
	Title              string               `json:"title"`
	AppliesTo          []domain.ContentPath `json:"applies_to,omitempty"`
	OptionalOn         []domain.ContentPath `json:"optional_on,omitempty"`
	RequiresTeamAction bool                 `json:"requires_team_action"`
	IsOptionalDefault  bool                 `json:"is_optional_default"`
	Intake             bool                 `json:"intake,omitempty"`
	Hook               string               `json:"hook,omitempty"`
	Action             ActionSpec           `json:"action"`
}

// SortKey returns the milestone's position in the global order.
func (m Milestone) SortKey() SortKey {
	return SortKey{PhaseOrder: m.PhaseOrder, Order: m.Order}
}

// Universal reports whether the milestone applies to every path.
func (m Milestone) Universal() bool {
	return len(m.AppliesTo) == 0
}

// AppliesToPath reports whether the milestone belongs to the path's pipeline.
// Universal milestones apply to every valid path, including unset.
func (m Milestone) AppliesToPath(path domain.ContentPath) bool {
	if !path.Valid() {
		return false
	}
	if m.Universal() {
		return true
	}
	return slices.Contains(m.AppliesTo, path)
}

// OptionalFor reports the catalog-level bonus classification for the path.
func (m Milestone) OptionalFor(path domain.ContentPath) bool {
	if slices.Contains(m.OptionalOn, path) {
		return true
	}
	return m.IsOptionalDefault
}

// Catalog is the read-only milestone definition set used by the engine.
type Catalog interface {
	Version() string
	Phases() []Phase
	Phase(id string) (Phase, bool)
	Milestones() []Milestone
	Milestone(id string) (Milestone, bool)
	Next(id string) (Milestone, bool)
	Len() int
}
