package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-onboarding/internal/catalog"
	"github.com/goliatone/go-onboarding/internal/creators"
	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/identity"
	"github.com/goliatone/go-onboarding/internal/records"
	"github.com/goliatone/go-onboarding/internal/resolver"
)

// creatorState is the locked working copy of one creator's current project.
type creatorState struct {
	catalog catalog.Catalog
	creator *creators.Creator
	project *creators.Project
	records []*records.Record
	index   map[string]*records.Record
}

func (st *creatorState) add(rec *records.Record) {
	st.records = append(st.records, rec)
	records.SortByCatalog(st.records, st.catalog)
	st.index[rec.MilestoneID] = rec
}

// replace swaps in an updated copy of a record already held by the state.
func (st *creatorState) replace(rec *records.Record) {
	for idx, existing := range st.records {
		if existing.MilestoneID == rec.MilestoneID {
			st.records[idx] = rec
			st.index[rec.MilestoneID] = rec
			return
		}
	}
	st.add(rec)
}

func (s *service) load(ctx context.Context, creatorID uuid.UUID) (*creatorState, error) {
	creator, err := s.creators.GetByID(ctx, creatorID)
	if err != nil {
		if isNotFound(err) {
			return nil, &NotFoundError{Resource: "creator", Key: creatorID.String()}
		}
		return nil, fmt.Errorf("engine: load creator: %w", err)
	}
	project, err := s.currentProject(ctx, creator)
	if err != nil {
		return nil, err
	}
	recs, err := s.records.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("engine: list records: %w", err)
	}
	records.SortByCatalog(recs, s.catalog)
	return &creatorState{
		catalog: s.catalog,
		creator: creator,
		project: project,
		records: recs,
		index:   resolver.Index(recs),
	}, nil
}

// currentProject resolves the creator's project, starting the first one when the creator was
// stored without a project context.
func (s *service) currentProject(ctx context.Context, creator *creators.Creator) (*creators.Project, error) {
	if creator.CurrentProjectID != uuid.Nil {
		project, err := s.projects.GetByID(ctx, creator.CurrentProjectID)
		if err == nil {
			return project, nil
		}
		if !isNotFound(err) {
			return nil, fmt.Errorf("engine: load project: %w", err)
		}
	}

	now := s.timestamp()
	project := &creators.Project{
		ID:          identity.ProjectUUID(creator.ID, 1),
		CreatorID:   creator.ID,
		Sequence:    1,
		ContentPath: creator.ContentPath,
		Status:      domain.ProjectStatusActive,
		StartedAt:   now,
	}
	if existing, err := s.projects.GetByID(ctx, project.ID); err == nil {
		project = existing
	} else if _, err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("engine: start project: %w", err)
	}
	creator.CurrentProjectID = project.ID
	creator.UpdatedAt = now
	if _, err := s.creators.Update(ctx, creator); err != nil {
		return nil, fmt.Errorf("engine: attach project: %w", err)
	}
	return project, nil
}

// partition classifies the state's records for the creator's current path.
func (s *service) partition(st *creatorState) resolver.Partition {
	partition, err := resolver.Split(s.catalog, st.creator.ContentPath, st.records)
	if err != nil {
		s.logger.Warn("engine.partition.invalid_path",
			"creator_id", st.creator.ID.String(),
			"content_path", string(st.creator.ContentPath),
		)
	}
	return partition
}

// applicableRecords returns the materialized records that belong to the current path, in global order.
func (s *service) applicableRecords(st *creatorState) []*records.Record {
	var out []*records.Record
	for _, rec := range st.records {
		milestone, ok := s.catalog.Milestone(rec.MilestoneID)
		if !ok || !resolver.IsApplicable(milestone, st.creator.ContentPath) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// cursorPhase is the phase of the lowest incomplete applicable core milestone, or the last
// applicable phase when everything is complete.
func (s *service) cursorPhase(st *creatorState) string {
	partition := s.partition(st)
	var last string
	for _, entry := range partition.All() {
		last = entry.Milestone.PhaseID
	}
	for _, entry := range partition.Core {
		if entry.Record == nil || entry.Record.Status != domain.StatusCompleted {
			return entry.Milestone.PhaseID
		}
	}
	if last == "" {
		if phases := s.catalog.Phases(); len(phases) > 0 {
			return phases[0].ID
		}
	}
	return last
}

// syncCreator persists the phase cursor when it moved. Failures are logged.
func (s *service) syncCreator(ctx context.Context, st *creatorState, phaseID string) {
	if phaseID == "" || st.creator.CurrentPhaseID == phaseID {
		return
	}
	previous := st.creator.CurrentPhaseID
	st.creator.CurrentPhaseID = phaseID
	st.creator.UpdatedAt = s.timestamp()
	if _, err := s.creators.Update(ctx, st.creator); err != nil {
		st.creator.CurrentPhaseID = previous
		s.logger.Error("engine.cursor.update_failed",
			"creator_id", st.creator.ID.String(),
			"phase_id", phaseID,
			"error", err,
		)
	}
}

// settle runs the post-mutation bookkeeping shared by every operation.
func (s *service) settle(ctx context.Context, st *creatorState) {
	s.syncCreator(ctx, st, s.cursorPhase(st))
	s.checkInvariants(st)
}

func (s *service) checkInvariants(st *creatorState) {
	crowded := s.partition(st).CrowdedPhases()
	for _, phase := range crowded {
		s.logger.Warn("engine.invariant.multiple_available",
			"creator_id", st.creator.ID.String(),
			"project_id", st.project.ID.String(),
			"phase_id", phase,
		)
	}
}
