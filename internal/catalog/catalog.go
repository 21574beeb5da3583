package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrVersionRequired indicates the catalog document lacks a version tag.
	ErrVersionRequired = errors.New("catalog: version required")
	// ErrPhasesRequired indicates the catalog declares no phases.
	ErrPhasesRequired = errors.New("catalog: at least one phase required")
	// ErrMilestonesRequired indicates the catalog declares no milestones.
	ErrMilestonesRequired = errors.New("catalog: at least one milestone required")
	// ErrDuplicatePhase indicates two phases share an identifier or order.
	ErrDuplicatePhase = errors.New("catalog: duplicate phase")
	// ErrDuplicateMilestone indicates two milestones share an identifier.
	ErrDuplicateMilestone = errors.New("catalog: duplicate milestone")
	// ErrDuplicateSortKey indicates two milestones occupy the same position.
	ErrDuplicateSortKey = errors.New("catalog: duplicate sort key")
	// ErrUnknownPhase indicates a milestone references an undeclared phase.
	ErrUnknownPhase = errors.New("catalog: milestone references unknown phase")
	// ErrInvalidMilestoneID indicates a milestone identifier is empty or not a valid slug.
	ErrInvalidMilestoneID = errors.New("catalog: invalid milestone id")
	// ErrInvalidAppliesTo indicates a milestone lists an unknown content path.
	ErrInvalidAppliesTo = errors.New("catalog: invalid content path in milestone")
)

type staticCatalog struct {
	version    string
	phases     []Phase
	phaseIndex map[string]int
	milestones []Milestone
	index      map[string]int
}

var _ Catalog = (*staticCatalog)(nil)

// Build validates and freezes the supplied definitions. Milestone phase orders are derived
// from their phase so callers only declare the intra-phase order.
func Build(version string, phases []Phase, milestones []Milestone) (Catalog, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		return nil, ErrVersionRequired
	}
	if len(phases) == 0 {
		return nil, ErrPhasesRequired
	}
	if len(milestones) == 0 {
		return nil, ErrMilestonesRequired
	}

	c := &staticCatalog{
		version:    version,
		phaseIndex: make(map[string]int, len(phases)),
		index:      make(map[string]int, len(milestones)),
	}

	orders := make(map[int]string, len(phases))
	c.phases = make([]Phase, 0, len(phases))
	for _, phase := range phases {
		phase.ID = strings.TrimSpace(phase.ID)
		if phase.ID == "" {
			return nil, fmt.Errorf("%w: empty id", ErrDuplicatePhase)
		}
		if _, exists := c.phaseIndex[phase.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePhase, phase.ID)
		}
		if other, exists := orders[phase.Order]; exists {
			return nil, fmt.Errorf("%w: %s and %s share order %d", ErrDuplicatePhase, other, phase.ID, phase.Order)
		}
		orders[phase.Order] = phase.ID
		c.phaseIndex[phase.ID] = len(c.phases)
		c.phases = append(c.phases, phase)
	}
	slices.SortFunc(c.phases, func(a, b Phase) int { return a.Order - b.Order })
	for i, phase := range c.phases {
		c.phaseIndex[phase.ID] = i
	}

	seenKeys := make(map[SortKey]string, len(milestones))
	c.milestones = make([]Milestone, 0, len(milestones))
	for _, milestone := range milestones {
		cloned := cloneMilestone(milestone)
		cloned.ID = strings.TrimSpace(cloned.ID)
		if cloned.ID == "" {
			return nil, ErrInvalidMilestoneID
		}
		if _, exists := c.index[cloned.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMilestone, cloned.ID)
		}
		phaseIdx, ok := c.phaseIndex[strings.TrimSpace(cloned.PhaseID)]
		if !ok {
			return nil, fmt.Errorf("%w: %s -> %s", ErrUnknownPhase, cloned.ID, cloned.PhaseID)
		}
		cloned.PhaseOrder = c.phases[phaseIdx].Order
		for _, path := range append(slices.Clone(cloned.AppliesTo), cloned.OptionalOn...) {
			if !path.Valid() {
				return nil, fmt.Errorf("%w: %s lists %q", ErrInvalidAppliesTo, cloned.ID, path)
			}
		}
		key := cloned.SortKey()
		if other, exists := seenKeys[key]; exists {
			return nil, fmt.Errorf("%w: %s and %s", ErrDuplicateSortKey, other, cloned.ID)
		}
		seenKeys[key] = cloned.ID
		c.index[cloned.ID] = len(c.milestones)
		c.milestones = append(c.milestones, cloned)
	}

	slices.SortFunc(c.milestones, func(a, b Milestone) int {
		return a.SortKey().Compare(b.SortKey())
	})
	for i, milestone := range c.milestones {
		c.index[milestone.ID] = i
	}

	return c, nil
}

func (c *staticCatalog) Version() string { return c.version }

func (c *staticCatalog) Len() int { return len(c.milestones) }

func (c *staticCatalog) Phases() []Phase {
	return slices.Clone(c.phases)
}

func (c *staticCatalog) Phase(id string) (Phase, bool) {
	idx, ok := c.phaseIndex[strings.TrimSpace(id)]
	if !ok {
		return Phase{}, false
	}
	return c.phases[idx], true
}

func (c *staticCatalog) Milestones() []Milestone {
	out := make([]Milestone, len(c.milestones))
	for i, milestone := range c.milestones {
		out[i] = cloneMilestone(milestone)
	}
	return out
}

func (c *staticCatalog) Milestone(id string) (Milestone, bool) {
	idx, ok := c.index[strings.TrimSpace(id)]
	if !ok {
		return Milestone{}, false
	}
	return cloneMilestone(c.milestones[idx]), true
}

func (c *staticCatalog) Next(id string) (Milestone, bool) {
	idx, ok := c.index[strings.TrimSpace(id)]
	if !ok || idx+1 >= len(c.milestones) {
		return Milestone{}, false
	}
	return cloneMilestone(c.milestones[idx+1]), true
}

func cloneMilestone(m Milestone) Milestone {
	cloned := m
	cloned.AppliesTo = slices.Clone(m.AppliesTo)
	cloned.OptionalOn = slices.Clone(m.OptionalOn)
	cloned.Action.SubmissionSchema = cloneMap(m.Action.SubmissionSchema)
	return cloned
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		switch typed := value.(type) {
		case map[string]any:
			out[key] = cloneMap(typed)
		case []any:
			out[key] = slices.Clone(typed)
		default:
			out[key] = value
		}
	}
	return out
}
