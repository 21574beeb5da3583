// Package progress derives completion figures and dashboard views from milestone records.
package progress

import (
	"fmt"
	"math"
	"time"

	"github.com/goliatone/go-onboarding/internal/catalog"
	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/records"
	"github.com/goliatone/go-onboarding/internal/resolver"
)

// DefaultStalledAfter is the inactivity window after which an incomplete pipeline is stalled.
const DefaultStalledAfter = 14 * 24 * time.Hour

// Input is the snapshot the calculator works from.
type Input struct {
	Records          []*records.Record
	Catalog          catalog.Catalog
	Path             domain.ContentPath
	CreatorCreatedAt time.Time
	Now              time.Time
	StalledAfter     time.Duration
}

// BonusStats summarises optional milestones. They never affect CorePercent.
type BonusStats struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// Summary is the derived progress for one creator.
type Summary struct {
	CorePercent    int                `json:"core_percent"`
	CoreCompleted  int                `json:"core_completed"`
	CoreTotal      int                `json:"core_total"`
	Bonus          BonusStats         `json:"bonus"`
	IsComplete     bool               `json:"is_complete"`
	NextAvailable  *catalog.Milestone `json:"next_available,omitempty"`
	WaitingOn      domain.WaitingOn   `json:"waiting_on"`
	LastActivityAt *time.Time         `json:"last_activity_at,omitempty"`
	Warnings       []string           `json:"warnings,omitempty"`
}

// Calculate computes the summary. It has no side effects; an invalid path yields an empty
// partition, which reads as complete with no next milestone.
func Calculate(input Input) Summary {
	var partition resolver.Partition
	if input.Catalog != nil {
		partition, _ = resolver.Split(input.Catalog, input.Path, input.Records)
	}

	summary := Summary{CoreTotal: len(partition.Core)}
	for _, entry := range partition.Core {
		if completed(entry) {
			summary.CoreCompleted++
		}
	}
	summary.CorePercent = Percent(summary.CoreCompleted, summary.CoreTotal)
	summary.IsComplete = summary.CorePercent == 100

	summary.Bonus.Total = len(partition.Bonus)
	for _, entry := range partition.Bonus {
		if completed(entry) {
			summary.Bonus.Completed++
		}
	}
	if summary.Bonus.Total > 0 {
		summary.Bonus.Percent = Percent(summary.Bonus.Completed, summary.Bonus.Total)
	}

	var latest *time.Time
	for _, entry := range partition.All() {
		rec := entry.Record
		if rec == nil {
			continue
		}
		if summary.NextAvailable == nil && rec.Status == domain.StatusAvailable {
			milestone := entry.Milestone
			summary.NextAvailable = &milestone
		}
		if rec.CompletedAt != nil && (latest == nil || rec.CompletedAt.After(*latest)) {
			value := *rec.CompletedAt
			latest = &value
		}
	}
	summary.LastActivityAt = latest

	summary.WaitingOn = classify(summary, input, latest)
	for _, phase := range partition.CrowdedPhases() {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("phase %s has more than one available core milestone", phase))
	}
	return summary
}

// Percent rounds half away from zero. An empty denominator counts as fully complete.
func Percent(done, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

func classify(summary Summary, input Input, latest *time.Time) domain.WaitingOn {
	if summary.CorePercent == 100 {
		return domain.WaitingOnLaunched
	}
	window := input.StalledAfter
	if window <= 0 {
		window = DefaultStalledAfter
	}
	reference := input.CreatorCreatedAt
	if latest != nil {
		reference = *latest
	}
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}
	if !reference.IsZero() && now.Sub(reference) > window {
		return domain.WaitingOnStalled
	}
	if summary.NextAvailable != nil && summary.NextAvailable.RequiresTeamAction {
		return domain.WaitingOnTeam
	}
	return domain.WaitingOnCreator
}

func completed(entry resolver.Entry) bool {
	return entry.Record != nil && entry.Record.Status == domain.StatusCompleted
}
