package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-onboarding/internal/catalog"
	"github.com/goliatone/go-onboarding/internal/creators"
	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/engine"
	"github.com/goliatone/go-onboarding/internal/logging"
	"github.com/goliatone/go-onboarding/internal/records"
	"github.com/goliatone/go-onboarding/internal/resolver"
	"github.com/goliatone/go-onboarding/pkg/interfaces"
)

var (
	ErrCatalogRequired  = errors.New("progress: catalog required")
	ErrRecordsRequired  = errors.New("progress: records repository required")
	ErrCreatorsRequired = errors.New("progress: creator repository required")
)

// Materializer fills in missing records before a dashboard is assembled.
type Materializer interface {
	MaterializeMissing(ctx context.Context, creatorID uuid.UUID) (*engine.MaterializeResult, error)
}

// DashboardRecord pairs a record with its catalog entry and its classification under the
// creator's current path.
type DashboardRecord struct {
	Milestone  catalog.Milestone `json:"milestone"`
	Record     *records.Record   `json:"record"`
	Applicable bool              `json:"applicable"`
	Bonus      bool              `json:"bonus"`
}

// Dashboard is the creator-facing progress view.
type Dashboard struct {
	Creator       *creators.Creator  `json:"creator"`
	AppliedPath   domain.ContentPath `json:"applied_path"`
	Records       []DashboardRecord  `json:"records"`
	CorePercent   int                `json:"core_percent"`
	CoreCompleted int                `json:"core_completed"`
	CoreTotal     int                `json:"core_total"`
	BonusStats    BonusStats         `json:"bonus_stats"`
	NextAvailable *catalog.Milestone `json:"next_available,omitempty"`
	WaitingOn     domain.WaitingOn   `json:"waiting_on"`
	IsComplete    bool               `json:"is_complete"`
	Warnings      []string           `json:"warnings,omitempty"`
}

// DashboardOption configures the dashboard service.
type DashboardOption func(*DashboardService)

// WithStalledAfter overrides the inactivity window.
func WithStalledAfter(window time.Duration) DashboardOption {
	return func(s *DashboardService) {
		if window > 0 {
			s.stalledAfter = window
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) DashboardOption {
	return func(s *DashboardService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the dashboard logger.
func WithLogger(logger interfaces.Logger) DashboardOption {
	return func(s *DashboardService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// DashboardService assembles dashboards, materializing records on first view.
type DashboardService struct {
	catalog      catalog.Catalog
	records      records.Repository
	creators     creators.CreatorRepository
	materializer Materializer
	stalledAfter time.Duration
	now          func() time.Time
	logger       interfaces.Logger
}

// NewDashboardService wires the dashboard. The materializer is optional; without it, creators
// with no records get an empty dashboard.
func NewDashboardService(cat catalog.Catalog, recs records.Repository, people creators.CreatorRepository, materializer Materializer, opts ...DashboardOption) (*DashboardService, error) {
	switch {
	case cat == nil:
		return nil, ErrCatalogRequired
	case recs == nil:
		return nil, ErrRecordsRequired
	case people == nil:
		return nil, ErrCreatorsRequired
	}
	s := &DashboardService{
		catalog:      cat,
		records:      recs,
		creators:     people,
		materializer: materializer,
		stalledAfter: DefaultStalledAfter,
		now:          time.Now,
		logger:       logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetDashboard returns the creator's current-project dashboard.
func (s *DashboardService) GetDashboard(ctx context.Context, creatorID uuid.UUID) (*Dashboard, error) {
	creator, recs, err := s.snapshot(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 && s.materializer != nil {
		result, err := s.materializer.MaterializeMissing(ctx, creatorID)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("progress.dashboard.materialized",
			"creator_id", creatorID.String(),
			"added", len(result.Added),
		)
		if creator, recs, err = s.snapshot(ctx, creatorID); err != nil {
			return nil, err
		}
	}

	summary := Calculate(Input{
		Records:          recs,
		Catalog:          s.catalog,
		Path:             creator.ContentPath,
		CreatorCreatedAt: creator.CreatedAt,
		Now:              s.now(),
		StalledAfter:     s.stalledAfter,
	})
	for _, warning := range summary.Warnings {
		s.logger.Warn("progress.dashboard.warning", "creator_id", creatorID.String(), "warning", warning)
	}

	return &Dashboard{
		Creator:       creator,
		AppliedPath:   creator.ContentPath,
		Records:       s.tag(creator.ContentPath, recs),
		CorePercent:   summary.CorePercent,
		CoreCompleted: summary.CoreCompleted,
		CoreTotal:     summary.CoreTotal,
		BonusStats:    summary.Bonus,
		NextAvailable: summary.NextAvailable,
		WaitingOn:     summary.WaitingOn,
		IsComplete:    summary.IsComplete,
		Warnings:      summary.Warnings,
	}, nil
}

func (s *DashboardService) snapshot(ctx context.Context, creatorID uuid.UUID) (*creators.Creator, []*records.Record, error) {
	creator, err := s.creators.GetByID(ctx, creatorID)
	if err != nil {
		if creators.IsNotFound(err) {
			return nil, nil, &engine.NotFoundError{Resource: "creator", Key: creatorID.String()}
		}
		return nil, nil, fmt.Errorf("progress: load creator: %w", err)
	}
	if creator.CurrentProjectID == uuid.Nil {
		return creator, nil, nil
	}
	recs, err := s.records.ListByProject(ctx, creator.CurrentProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("progress: list records: %w", err)
	}
	records.SortByCatalog(recs, s.catalog)
	return creator, recs, nil
}

func (s *DashboardService) tag(path domain.ContentPath, recs []*records.Record) []DashboardRecord {
	out := make([]DashboardRecord, 0, len(recs))
	for _, rec := range recs {
		milestone, ok := s.catalog.Milestone(rec.MilestoneID)
		if !ok {
			s.logger.Warn("progress.dashboard.unknown_milestone", "milestone_id", rec.MilestoneID)
			continue
		}
		applicable := resolver.IsApplicable(milestone, path)
		out = append(out, DashboardRecord{
			Milestone:  milestone,
			Record:     rec,
			Applicable: applicable,
			Bonus:      applicable && resolver.IsBonus(milestone, path, rec),
		})
	}
	return out
}
