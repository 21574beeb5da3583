package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-onboarding/internal/audit"
	"github.com/goliatone/go-onboarding/internal/catalog"
	"github.com/goliatone/go-onboarding/internal/creators"
	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/identity"
	"github.com/goliatone/go-onboarding/internal/logging"
	"github.com/goliatone/go-onboarding/internal/records"
	"github.com/goliatone/go-onboarding/internal/resolver"
	"github.com/goliatone/go-onboarding/internal/workflow"
)

const (
	systemNewProject = "new_project"
	systemPathChange = "path_change"
)

func (s *service) MaterializeMissing(ctx context.Context, creatorID uuid.UUID) (*MaterializeResult, error) {
	unlock := s.locks.lock(creatorID)
	defer unlock()

	st, err := s.load(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	added, err := s.materialize(ctx, st, nil)
	if err != nil {
		return nil, err
	}
	if len(added) > 0 {
		s.settle(ctx, st)
	}
	return &MaterializeResult{Added: added}, nil
}

// materialize inserts records for applicable milestones lacking one. Only a project with no
// records at all gets its first milestone available; every other insert is locked.
func (s *service) materialize(ctx context.Context, st *creatorState, change *records.PathChangeFact) ([]string, error) {
	applicable, err := resolver.Resolve(s.catalog, st.creator.ContentPath)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	fresh := len(st.records) == 0
	var added []string
	for idx, milestone := range applicable {
		if _, ok := st.index[milestone.ID]; ok {
			continue
		}
		status := domain.StatusLocked
		if fresh && idx == 0 {
			status = domain.StatusAvailable
		}
		rec := records.New(st.creator.ID, st.project.ID, milestone, status, now)
		if change != nil {
			fact := *change
			rec.Facts.PathChange = &fact
		}
		inserted, err := s.records.InsertIfAbsent(ctx, rec)
		if err != nil {
			return added, fmt.Errorf("engine: materialize %s: %w", milestone.ID, err)
		}
		if !inserted {
			existing, err := s.records.Get(ctx, st.project.ID, milestone.ID)
			if err != nil {
				return added, fmt.Errorf("engine: reload %s: %w", milestone.ID, err)
			}
			st.add(existing)
			continue
		}
		st.add(rec)
		added = append(added, milestone.ID)
	}

	if len(added) > 0 {
		s.logger.Info("engine.materialize.completed",
			"creator_id", st.creator.ID.String(),
			"project_id", st.project.ID.String(),
			"content_path", string(st.creator.ContentPath),
			"added", len(added),
		)
		s.recordNote(ctx, st, audit.Note{
			Action:   audit.ActionMaterialized,
			Actor:    domain.SystemActor("materialize"),
			Message:  fmt.Sprintf("materialized %d milestones for %s", len(added), st.creator.ContentPath),
			Metadata: map[string]any{"added": added, "content_path": string(st.creator.ContentPath)},
		})
	}
	return added, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if strings.TrimSpace(input.MilestoneID) == "" {
		return nil, invalidInput("milestone_id")
	}
	kind, err := domain.ParseSubmissionKind(string(input.Kind))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	unlock := s.locks.lock(input.CreatorID)
	defer unlock()

	st, err := s.load(ctx, input.CreatorID)
	if err != nil {
		return nil, err
	}
	rec, milestone, err := s.record(st, input.MilestoneID)
	if err != nil {
		return nil, err
	}

	transition := workflow.TransitionConfirm
	if kind == domain.SubmissionReview {
		transition = workflow.TransitionSubmitReview
	}
	next, err := s.machine.Apply(rec.Status, transition)
	if err != nil {
		return nil, invalidTransition(milestone.ID, err)
	}
	if err := catalog.ValidatePayload(milestone, input.Payload); err != nil {
		return nil, err
	}

	actor := domain.CreatorActor(st.creator.ID.String())
	now := s.timestamp()
	updated := records.Clone(rec)
	updated.Status = next
	updated.MergePayload(input.Payload)
	updated.UpdatedAt = now
	if next == domain.StatusCompleted {
		updated.CompletedAt = &now
		updated.CompletedBy = actor
	}
	if _, err := s.records.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("engine: submit %s: %w", milestone.ID, err)
	}
	st.replace(updated)

	logger := logging.WithMilestoneContext(s.logger.WithContext(ctx), st.creator.ID.String(), milestone.ID, "submit")
	logger.Info("engine.submit.completed", "kind", string(kind), "status", string(next))

	result := &SubmitResult{Status: next}
	s.recordNote(ctx, st, audit.Note{
		MilestoneID: milestone.ID,
		Action:      audit.ActionSubmitted,
		Actor:       actor,
		Metadata:    map[string]any{"kind": string(kind), "status": string(next)},
	})

	if next == domain.StatusCompleted {
		s.runHook(ctx, st, milestone, updated, actor)
		if unlocked, ok := s.unlockNext(ctx, st, milestone); ok {
			result.NextMilestoneID = unlocked.NextMilestoneID
		}
		s.emit(st, milestone.ID, domain.EventCompleted, actor, "")
	} else {
		s.emit(st, milestone.ID, domain.EventWaitingApproval, actor, "")
	}
	s.settle(ctx, st)
	return result, nil
}

func (s *service) UnlockNext(ctx context.Context, creatorID uuid.UUID, milestoneID string) (*UnlockResult, error) {
	milestone, err := s.milestone(milestoneID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(creatorID)
	defer unlock()

	st, err := s.load(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	result, err := s.unlockFollowing(ctx, st, milestone)
	if err != nil {
		return nil, err
	}
	if result.Unlocked {
		s.settle(ctx, st)
	}
	return result, nil
}

// unlockNext is the secondary-effect form of unlockFollowing: failures are logged.
func (s *service) unlockNext(ctx context.Context, st *creatorState, milestone catalog.Milestone) (*UnlockResult, bool) {
	result, err := s.unlockFollowing(ctx, st, milestone)
	if err != nil {
		logging.WithMilestoneContext(s.logger, st.creator.ID.String(), milestone.ID, "unlock_next").
			Error("engine.unlock_next.failed", "error", err)
		return nil, false
	}
	return result, true
}

// unlockFollowing makes the applicable record immediately after milestone available when it
// is locked. Anything else is left untouched.
func (s *service) unlockFollowing(ctx context.Context, st *creatorState, milestone catalog.Milestone) (*UnlockResult, error) {
	key := milestone.SortKey()
	var next *records.Record
	for _, rec := range s.applicableRecords(st) {
		if key.Less(rec.SortKey()) {
			next = rec
			break
		}
	}
	if next == nil {
		return &UnlockResult{}, nil
	}
	result := &UnlockResult{NextMilestoneID: next.MilestoneID}
	if next.Status != domain.StatusLocked {
		return result, nil
	}

	status, err := s.machine.Apply(next.Status, workflow.TransitionUnlock)
	if err != nil {
		return nil, invalidTransition(next.MilestoneID, err)
	}
	updated := records.Clone(next)
	updated.Status = status
	updated.UpdatedAt = s.timestamp()
	if _, err := s.records.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("engine: unlock %s: %w", next.MilestoneID, err)
	}
	st.replace(updated)
	result.Unlocked = true
	s.logger.Debug("engine.unlock_next.unlocked",
		"creator_id", st.creator.ID.String(),
		"after", milestone.ID,
		"milestone_id", next.MilestoneID,
	)
	return result, nil
}

func (s *service) AdminComplete(ctx context.Context, input AdminCompleteInput) (*AdminCompleteResult, error) {
	if strings.TrimSpace(input.MilestoneID) == "" {
		return nil, invalidInput("milestone_id")
	}
	if strings.TrimSpace(input.AdminEmail) == "" {
		return nil, invalidInput("admin_email")
	}

	unlock := s.locks.lock(input.CreatorID)
	defer unlock()

	st, err := s.load(ctx, input.CreatorID)
	if err != nil {
		return nil, err
	}
	rec, milestone, err := s.record(st, input.MilestoneID)
	if err != nil {
		return nil, err
	}

	prior := rec.Status
	if prior != domain.StatusCompleted {
		if _, err := s.machine.Apply(prior, completionTransition(prior)); err != nil {
			return nil, invalidTransition(milestone.ID, err)
		}
	}
	if len(input.Payload) > 0 {
		if err := catalog.ValidatePayload(milestone, input.Payload); err != nil {
			return nil, err
		}
	}

	actor := domain.AdminActor(input.AdminEmail)
	now := s.timestamp()
	outOfOrder := prior == domain.StatusLocked || prior == domain.StatusPaused

	updated := records.Clone(rec)
	updated.Status = domain.StatusCompleted
	updated.CompletedAt = &now
	updated.CompletedBy = actor
	updated.ClearPause()
	updated.MergePayload(input.Payload)
	updated.UpdatedAt = now
	if outOfOrder {
		updated.Facts.OutOfOrder = true
	}
	if note := strings.TrimSpace(input.Note); note != "" {
		updated.Facts.AdminNote = note
	}
	if _, err := s.records.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("engine: admin complete %s: %w", milestone.ID, err)
	}
	st.replace(updated)

	logger := logging.WithMilestoneContext(s.logger.WithContext(ctx), st.creator.ID.String(), milestone.ID, "admin_complete")
	logger.Info("engine.admin_complete.completed",
		"admin", actor,
		"prior_status", string(prior),
		"out_of_order", outOfOrder,
	)

	s.recordNote(ctx, st, audit.Note{
		MilestoneID: milestone.ID,
		Action:      audit.ActionAdminCompleted,
		Actor:       actor,
		Message:     strings.TrimSpace(input.Note),
		Metadata:    map[string]any{"prior_status": string(prior), "out_of_order": outOfOrder},
	})
	s.runHook(ctx, st, milestone, updated, actor)

	result := &AdminCompleteResult{OutOfOrder: outOfOrder}
	if unlocked, ok := s.unlockNext(ctx, st, milestone); ok {
		result.NextMilestoneID = unlocked.NextMilestoneID
		result.Unlocked = unlocked.Unlocked
	}
	s.emit(st, milestone.ID, domain.EventCompleted, actor, strings.TrimSpace(input.Note))
	s.settle(ctx, st)
	return result, nil
}

// completionTransition names the admin move into completed: approve answers a pending team
// review, force_complete covers everything else.
func completionTransition(from domain.Status) string {
	if from == domain.StatusWaitingApproval {
		return workflow.TransitionApprove
	}
	return workflow.TransitionForceComplete
}

func reopenTransition(from domain.Status) string {
	if from == domain.StatusWaitingApproval {
		return workflow.TransitionReject
	}
	return workflow.TransitionReopen
}

func (s *service) RequestRevision(ctx context.Context, input RevisionInput) error {
	if strings.TrimSpace(input.MilestoneID) == "" {
		return invalidInput("milestone_id")
	}
	requestedBy := strings.TrimSpace(input.RequestedBy)
	if requestedBy == "" {
		return invalidInput("requested_by")
	}

	unlock := s.locks.lock(input.CreatorID)
	defer unlock()

	st, err := s.load(ctx, input.CreatorID)
	if err != nil {
		return err
	}
	rec, milestone, err := s.record(st, input.MilestoneID)
	if err != nil {
		return err
	}

	now := s.timestamp()
	target := records.Clone(rec)
	if target.Status != domain.StatusAvailable {
		status, err := s.machine.Apply(target.Status, reopenTransition(target.Status))
		if err != nil {
			return invalidTransition(milestone.ID, err)
		}
		target.Status = status
	}
	target.ClearCompletion()
	target.ClearPause()
	target.Facts.Revision = &records.RevisionFact{
		Note:        strings.TrimSpace(input.Note),
		RequestedBy: requestedBy,
		RequestedAt: now,
	}
	target.UpdatedAt = now

	batch := []*records.Record{target}
	key := milestone.SortKey()
	for _, other := range st.records {
		if !key.Less(other.SortKey()) {
			continue
		}
		rewound := records.Clone(other)
		if rewound.Status != domain.StatusLocked {
			status, err := s.machine.Apply(rewound.Status, workflow.TransitionRelock)
			if err != nil {
				return invalidTransition(other.MilestoneID, err)
			}
			rewound.Status = status
		}
		rewound.ClearCompletion()
		rewound.ClearPause()
		rewound.UpdatedAt = now
		batch = append(batch, rewound)
	}
	if err := s.records.UpdateBatch(ctx, batch); err != nil {
		return fmt.Errorf("engine: revision %s: %w", milestone.ID, err)
	}
	for _, updated := range batch {
		st.replace(updated)
	}

	logging.WithMilestoneContext(s.logger, st.creator.ID.String(), milestone.ID, "request_revision").
		Info("engine.revision.requested", "requested_by", requestedBy, "relocked", len(batch)-1)

	s.syncCreator(ctx, st, milestone.PhaseID)
	s.checkInvariants(st)
	s.recordNote(ctx, st, audit.Note{
		MilestoneID: milestone.ID,
		Action:      audit.ActionRevisionRequested,
		Actor:       requestedBy,
		Message:     strings.TrimSpace(input.Note),
		Metadata:    map[string]any{"relocked": len(batch) - 1},
	})
	s.emit(st, milestone.ID, domain.EventRevisionRequested, requestedBy, strings.TrimSpace(input.Note))
	return nil
}

func (s *service) ChangeContentPath(ctx context.Context, input ChangePathInput) (*ChangePathResult, error) {
	path, err := domain.ParseContentPath(input.Path)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(input.CreatorID)
	defer unlock()

	st, err := s.load(ctx, input.CreatorID)
	if err != nil {
		return nil, err
	}
	result, err := s.changeContentPath(ctx, st, path, input.ChangedBy)
	if err != nil {
		return nil, err
	}
	s.settle(ctx, st)
	return result, nil
}

// changeContentPath runs with the creator lock held. Existing records are never modified.
func (s *service) changeContentPath(ctx context.Context, st *creatorState, path domain.ContentPath, changedBy string) (*ChangePathResult, error) {
	from := st.creator.ContentPath
	now := s.timestamp()
	changedBy = strings.TrimSpace(changedBy)
	if changedBy == "" {
		changedBy = domain.SystemActor(systemPathChange)
	}

	if from != path {
		st.creator.ContentPath = path
		st.creator.UpdatedAt = now
		if _, err := s.creators.Update(ctx, st.creator); err != nil {
			st.creator.ContentPath = from
			return nil, fmt.Errorf("engine: change content path: %w", err)
		}
		st.project.ContentPath = path
		if _, err := s.projects.Update(ctx, st.project); err != nil {
			s.logger.Error("engine.change_path.project_update_failed",
				"creator_id", st.creator.ID.String(),
				"project_id", st.project.ID.String(),
				"error", err,
			)
		}
	}

	var change *records.PathChangeFact
	if from != path {
		change = &records.PathChangeFact{From: from, To: path, ChangedBy: changedBy, ChangedAt: now}
	}
	added, err := s.materialize(ctx, st, change)
	if err != nil {
		return nil, err
	}

	if from != path {
		s.logger.Info("engine.change_path.completed",
			"creator_id", st.creator.ID.String(),
			"from", string(from),
			"to", string(path),
			"added", len(added),
		)
		s.recordNote(ctx, st, audit.Note{
			Action:   audit.ActionContentPathChanged,
			Actor:    changedBy,
			Message:  fmt.Sprintf("content path changed from %s to %s", from, path),
			Metadata: map[string]any{"from": string(from), "to": string(path), "added": len(added)},
		})
	}
	return &ChangePathResult{From: from, To: path, MilestonesAdded: len(added), Added: added}, nil
}

func (s *service) ArchiveAndRestart(ctx context.Context, input RestartInput) (*RestartResult, error) {
	unlock := s.locks.lock(input.CreatorID)
	defer unlock()

	st, err := s.load(ctx, input.CreatorID)
	if err != nil {
		return nil, err
	}
	applicable, err := resolver.Resolve(s.catalog, st.creator.ContentPath)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	previous := st.project
	sequence := previous.Sequence
	if projects, err := s.projects.ListByCreator(ctx, st.creator.ID); err == nil {
		for _, project := range projects {
			sequence = max(sequence, project.Sequence)
		}
	}
	sequence++

	next, err := s.projects.Create(ctx, &creators.Project{
		ID:          identity.ProjectUUID(st.creator.ID, sequence),
		CreatorID:   st.creator.ID,
		Sequence:    sequence,
		ContentPath: st.creator.ContentPath,
		Status:      domain.ProjectStatusActive,
		StartedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: start project: %w", err)
	}

	st.creator.CurrentProjectID = next.ID
	st.creator.UpdatedAt = now
	if _, err := s.creators.Update(ctx, st.creator); err != nil {
		st.creator.CurrentProjectID = previous.ID
		if rollbackErr := s.projects.Delete(ctx, next.ID); rollbackErr != nil {
			s.logger.Error("engine.restart.rollback_failed",
				"creator_id", st.creator.ID.String(),
				"project_id", next.ID.String(),
				"error", rollbackErr,
			)
		}
		return nil, fmt.Errorf("engine: switch project: %w", err)
	}

	// The creator already points at the new project, so a failed archive only leaves the
	// previous project marked active.
	archived := *previous
	archived.Status = domain.ProjectStatusArchived
	archived.ArchivedAt = &now
	if _, err := s.projects.Update(ctx, &archived); err != nil {
		s.logger.Error("engine.restart.archive_failed",
			"creator_id", st.creator.ID.String(),
			"project_id", previous.ID.String(),
			"error", err,
		)
	}
	st.project = next
	st.records = nil
	st.index = map[string]*records.Record{}

	seededBy := domain.SystemActor(systemNewProject)
	result := &RestartResult{ProjectID: next.ID, Sequence: next.Sequence}
	for _, milestone := range applicable {
		status := domain.StatusLocked
		switch {
		case milestone.Intake:
			status = domain.StatusCompleted
		case result.NextMilestoneID == "":
			status = domain.StatusAvailable
			result.NextMilestoneID = milestone.ID
		}
		rec := records.New(st.creator.ID, next.ID, milestone, status, now)
		if status == domain.StatusCompleted {
			rec.CompletedAt = &now
			rec.CompletedBy = seededBy
			rec.Facts.SeededBy = seededBy
		}
		inserted, err := s.records.InsertIfAbsent(ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("engine: seed %s: %w", milestone.ID, err)
		}
		if !inserted {
			if existing, err := s.records.Get(ctx, next.ID, milestone.ID); err == nil {
				rec = existing
			}
		}
		st.add(rec)
		if milestone.Intake {
			result.Seeded = append(result.Seeded, milestone.ID)
		}
	}

	actor := strings.TrimSpace(input.Actor)
	if actor == "" {
		actor = seededBy
	}
	s.logger.Info("engine.restart.completed",
		"creator_id", st.creator.ID.String(),
		"archived_project_id", previous.ID.String(),
		"project_id", next.ID.String(),
		"sequence", next.Sequence,
	)
	s.recordNote(ctx, st, audit.Note{
		Action:   audit.ActionProjectRestarted,
		Actor:    actor,
		Message:  fmt.Sprintf("project %d archived, project %d started", previous.Sequence, next.Sequence),
		Metadata: map[string]any{"archived_project_id": previous.ID.String(), "seeded": result.Seeded},
	})
	s.settle(ctx, st)
	return result, nil
}

func (s *service) Pause(ctx context.Context, input PauseInput) error {
	reason := strings.TrimSpace(input.Reason)
	return s.adminTransition(ctx, adminTransitionInput{
		creatorID:   input.CreatorID,
		milestoneID: input.MilestoneID,
		actor:       input.Actor,
		transition:  workflow.TransitionPause,
		action:      audit.ActionPaused,
		note:        reason,
		mutate: func(rec *records.Record, now time.Time) {
			rec.PausedAt = &now
			rec.PausedReason = reason
		},
	})
}

func (s *service) Resume(ctx context.Context, input AdminMilestoneInput) error {
	return s.adminTransition(ctx, adminTransitionInput{
		creatorID:   input.CreatorID,
		milestoneID: input.MilestoneID,
		actor:       input.Actor,
		transition:  workflow.TransitionResume,
		action:      audit.ActionResumed,
		mutate: func(rec *records.Record, _ time.Time) {
			rec.ClearPause()
		},
	})
}

func (s *service) ReLock(ctx context.Context, input AdminMilestoneInput) error {
	return s.adminTransition(ctx, adminTransitionInput{
		creatorID:   input.CreatorID,
		milestoneID: input.MilestoneID,
		actor:       input.Actor,
		transition:  workflow.TransitionRelock,
		action:      audit.ActionRelocked,
		mutate: func(rec *records.Record, _ time.Time) {
			rec.ClearCompletion()
			rec.ClearPause()
		},
	})
}

// SetOptional writes the per-creator bonus override. The record status is untouched; only the
// core/bonus split and the phase cursor can move.
func (s *service) SetOptional(ctx context.Context, input OptionalInput) error {
	if strings.TrimSpace(input.MilestoneID) == "" {
		return invalidInput("milestone_id")
	}
	actor := strings.TrimSpace(input.Actor)
	if actor == "" {
		return invalidInput("actor")
	}

	unlock := s.locks.lock(input.CreatorID)
	defer unlock()

	st, err := s.load(ctx, input.CreatorID)
	if err != nil {
		return err
	}
	rec, milestone, err := s.record(st, input.MilestoneID)
	if err != nil {
		return err
	}

	updated := records.Clone(rec)
	updated.Facts.IsOptional = nil
	if input.Optional != nil {
		value := *input.Optional
		updated.Facts.IsOptional = &value
	}
	updated.UpdatedAt = s.timestamp()
	if _, err := s.records.Update(ctx, updated); err != nil {
		return fmt.Errorf("engine: set optional %s: %w", milestone.ID, err)
	}
	st.replace(updated)

	override := "cleared"
	metadata := map[string]any{"catalog_optional": milestone.OptionalFor(st.creator.ContentPath)}
	if input.Optional != nil {
		override = fmt.Sprintf("%t", *input.Optional)
		metadata["optional"] = *input.Optional
	}
	logging.WithMilestoneContext(s.logger.WithContext(ctx), st.creator.ID.String(), milestone.ID, "set_optional").
		Info("engine.optional.changed", "actor", actor, "optional", override)
	s.recordNote(ctx, st, audit.Note{
		MilestoneID: milestone.ID,
		Action:      audit.ActionOptionalChanged,
		Actor:       actor,
		Message:     fmt.Sprintf("optional override %s", override),
		Metadata:    metadata,
	})
	s.settle(ctx, st)
	return nil
}

type adminTransitionInput struct {
	creatorID   uuid.UUID
	milestoneID string
	actor       string
	transition  string
	action      string
	note        string
	mutate      func(rec *records.Record, now time.Time)
}

// adminTransition applies a single-record administrative move. No neighbouring record changes.
func (s *service) adminTransition(ctx context.Context, input adminTransitionInput) error {
	if strings.TrimSpace(input.milestoneID) == "" {
		return invalidInput("milestone_id")
	}
	actor := strings.TrimSpace(input.actor)
	if actor == "" {
		return invalidInput("actor")
	}

	unlock := s.locks.lock(input.creatorID)
	defer unlock()

	st, err := s.load(ctx, input.creatorID)
	if err != nil {
		return err
	}
	rec, milestone, err := s.record(st, input.milestoneID)
	if err != nil {
		return err
	}
	status, err := s.machine.Apply(rec.Status, input.transition)
	if err != nil {
		return invalidTransition(milestone.ID, err)
	}

	now := s.timestamp()
	updated := records.Clone(rec)
	updated.Status = status
	if input.mutate != nil {
		input.mutate(updated, now)
	}
	updated.UpdatedAt = now
	if _, err := s.records.Update(ctx, updated); err != nil {
		return fmt.Errorf("engine: %s %s: %w", input.transition, milestone.ID, err)
	}
	st.replace(updated)

	logging.WithMilestoneContext(s.logger, st.creator.ID.String(), milestone.ID, input.transition).
		Info("engine.admin_transition.completed",
			"actor", actor,
			"from", string(rec.Status),
			"to", string(status),
		)
	s.recordNote(ctx, st, audit.Note{
		MilestoneID: milestone.ID,
		Action:      input.action,
		Actor:       actor,
		Message:     input.note,
		Metadata:    map[string]any{"from": string(rec.Status), "to": string(status)},
	})
	s.settle(ctx, st)
	return nil
}
