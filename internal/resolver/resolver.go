// Package resolver decides which catalog milestones apply to a content path and
// whether each one counts as core or bonus work.
package resolver

import (
	"github.com/goliatone/go-onboarding/internal/catalog"
	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/records"
)

// Entry pairs an applicable milestone with the creator's record, when one exists.
type Entry struct {
	Milestone catalog.Milestone
	Record    *records.Record
	Bonus     bool
}

// Partition splits applicable milestones into core and bonus, both in global order.
type Partition struct {
	Path  domain.ContentPath
	Core  []Entry
	Bonus []Entry
}

// All returns core and bonus entries merged back into global order.
func (p Partition) All() []Entry {
	out := make([]Entry, 0, len(p.Core)+len(p.Bonus))
	i, j := 0, 0
	for i < len(p.Core) || j < len(p.Bonus) {
		switch {
		case j >= len(p.Bonus):
			out = append(out, p.Core[i])
			i++
		case i >= len(p.Core):
			out = append(out, p.Bonus[j])
			j++
		case p.Core[i].Milestone.SortKey().Less(p.Bonus[j].Milestone.SortKey()):
			out = append(out, p.Core[i])
			i++
		default:
			out = append(out, p.Bonus[j])
			j++
		}
	}
	return out
}

// IsApplicable reports whether the milestone belongs to the path's pipeline.
func IsApplicable(m catalog.Milestone, path domain.ContentPath) bool {
	return m.AppliesToPath(path)
}

// IsBonus classifies the milestone for the path. A record-level IsOptional fact wins
// over the catalog.
func IsBonus(m catalog.Milestone, path domain.ContentPath, rec *records.Record) bool {
	if rec != nil && rec.Facts.IsOptional != nil {
		return *rec.Facts.IsOptional
	}
	return m.OptionalFor(path)
}

// Resolve returns the milestones applicable to path in global order. Unknown paths yield
// ErrInvalidPath and no milestones.
func Resolve(cat catalog.Catalog, path domain.ContentPath) ([]catalog.Milestone, error) {
	if !path.Valid() {
		return nil, domain.ErrInvalidPath
	}
	all := cat.Milestones()
	out := make([]catalog.Milestone, 0, len(all))
	for _, milestone := range all {
		if IsApplicable(milestone, path) {
			out = append(out, milestone)
		}
	}
	return out, nil
}

// Split partitions the applicable milestones for path, attaching records by milestone id.
// Records for milestones outside the path are ignored.
func Split(cat catalog.Catalog, path domain.ContentPath, recs []*records.Record) (Partition, error) {
	applicable, err := Resolve(cat, path)
	if err != nil {
		return Partition{Path: path}, err
	}
	byID := Index(recs)
	partition := Partition{Path: path}
	for _, milestone := range applicable {
		rec := byID[milestone.ID]
		entry := Entry{Milestone: milestone, Record: rec, Bonus: IsBonus(milestone, path, rec)}
		if entry.Bonus {
			partition.Bonus = append(partition.Bonus, entry)
			continue
		}
		partition.Core = append(partition.Core, entry)
	}
	return partition, nil
}

// Index maps records by milestone id.
func Index(recs []*records.Record) map[string]*records.Record {
	out := make(map[string]*records.Record, len(recs))
	for _, rec := range recs {
		if rec != nil {
			out[rec.MilestoneID] = rec
		}
	}
	return out
}

// CrowdedPhases lists phases holding more than one available core milestone, in
// global order. The single-available-per-phase rule is a soft expectation, so callers
// report these rather than reject them.
func (p Partition) CrowdedPhases() []string {
	counts := map[string]int{}
	var order []string
	for _, entry := range p.Core {
		if entry.Record == nil || entry.Record.Status != domain.StatusAvailable {
			continue
		}
		phase := entry.Milestone.PhaseID
		if counts[phase] == 0 {
			order = append(order, phase)
		}
		counts[phase]++
	}
	var crowded []string
	for _, phase := range order {
		if counts[phase] > 1 {
			crowded = append(crowded, phase)
		}
	}
	return crowded
}
