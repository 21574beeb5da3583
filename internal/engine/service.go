// Package engine applies milestone status transitions for creators. Every operation is
// serialized per creator; primary writes are the operation's contract and secondary effects
// (audit notes, unlock-next, hooks, notifications) are logged on failure.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-onboarding/internal/audit"
	"github.com/goliatone/go-onboarding/internal/catalog"
	"github.com/goliatone/go-onboarding/internal/creators"
	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/logging"
	"github.com/goliatone/go-onboarding/internal/notify"
	"github.com/goliatone/go-onboarding/internal/records"
	"github.com/goliatone/go-onboarding/internal/workflow"
	"github.com/goliatone/go-onboarding/pkg/interfaces"
)

// Service exposes the milestone transition operations.
type Service interface {
	MaterializeMissing(ctx context.Context, creatorID uuid.UUID) (*MaterializeResult, error)
	Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error)
	UnlockNext(ctx context.Context, creatorID uuid.UUID, milestoneID string) (*UnlockResult, error)
	AdminComplete(ctx context.Context, input AdminCompleteInput) (*AdminCompleteResult, error)
	RequestRevision(ctx context.Context, input RevisionInput) error
	ChangeContentPath(ctx context.Context, input ChangePathInput) (*ChangePathResult, error)
	ArchiveAndRestart(ctx context.Context, input RestartInput) (*RestartResult, error)
	Pause(ctx context.Context, input PauseInput) error
	Resume(ctx context.Context, input AdminMilestoneInput) error
	ReLock(ctx context.Context, input AdminMilestoneInput) error
	SetOptional(ctx context.Context, input OptionalInput) error
}

// MaterializeResult lists the milestone ids inserted by a materialization pass.
type MaterializeResult struct {
	Added []string
}

// SubmitInput captures a creator submission.
type SubmitInput struct {
	CreatorID   uuid.UUID
	MilestoneID string
	Kind        domain.SubmissionKind
	Payload     map[string]any
}

// SubmitResult reports the record status after a submission.
type SubmitResult struct {
	Status          domain.Status
	NextMilestoneID string
}

// UnlockResult describes the milestone following the completed one.
type UnlockResult struct {
	NextMilestoneID string
	Unlocked        bool
}

// AdminCompleteInput captures an administrative completion.
type AdminCompleteInput struct {
	CreatorID   uuid.UUID
	MilestoneID string
	AdminEmail  string
	Note        string
	Payload     map[string]any
}

// AdminCompleteResult reports the milestone that follows the completed one, if any.
type AdminCompleteResult struct {
	NextMilestoneID string
	Unlocked        bool
	OutOfOrder      bool
}

// RevisionInput captures a revision request.
type RevisionInput struct {
	CreatorID   uuid.UUID
	MilestoneID string
	Note        string
	RequestedBy string
}

// ChangePathInput captures a content path change. Path is parsed with domain.ParseContentPath.
type ChangePathInput struct {
	CreatorID uuid.UUID
	Path      string
	ChangedBy string
}

// ChangePathResult reports the records added by a path change.
type ChangePathResult struct {
	From            domain.ContentPath
	To              domain.ContentPath
	MilestonesAdded int
	Added           []string
}

// RestartInput captures an archive-and-restart request.
type RestartInput struct {
	CreatorID uuid.UUID
	Actor     string
}

// RestartResult describes the new project context.
type RestartResult struct {
	ProjectID       uuid.UUID
	Sequence        int
	Seeded          []string
	NextMilestoneID string
}

// PauseInput captures an administrative pause.
type PauseInput struct {
	CreatorID   uuid.UUID
	MilestoneID string
	Reason      string
	Actor       string
}

// AdminMilestoneInput identifies a milestone for resume and re-lock operations.
type AdminMilestoneInput struct {
	CreatorID   uuid.UUID
	MilestoneID string
	Actor       string
}

// OptionalInput overrides the catalog core/bonus classification for one creator's record.
// A nil Optional clears the override.
type OptionalInput struct {
	CreatorID   uuid.UUID
	MilestoneID string
	Optional    *bool
	Actor       string
}

// Dependencies groups the collaborators required by the engine.
type Dependencies struct {
	Catalog  catalog.Catalog
	Records  records.Repository
	Creators creators.CreatorRepository
	Projects creators.ProjectRepository
	Audit    audit.Recorder
	Notifier notify.Notifier
}

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMachine replaces the default milestone status machine.
func WithMachine(machine *workflow.Machine) ServiceOption {
	return func(s *service) {
		if machine != nil {
			s.machine = machine
		}
	}
}

// WithHook registers or replaces the hook invoked for milestones declaring name.
func WithHook(name string, hook HookFunc) ServiceOption {
	return func(s *service) {
		if name == "" {
			return
		}
		if hook == nil {
			delete(s.hooks, name)
			return
		}
		s.hooks[name] = hook
	}
}

type service struct {
	catalog  catalog.Catalog
	records  records.Repository
	creators creators.CreatorRepository
	projects creators.ProjectRepository
	audit    audit.Recorder
	notifier notify.Notifier
	machine  *workflow.Machine
	hooks    map[string]HookFunc
	locks    *creatorLocks
	now      func() time.Time
	logger   interfaces.Logger
}

// NewService constructs the transition engine.
func NewService(deps Dependencies, opts ...ServiceOption) (Service, error) {
	switch {
	case deps.Catalog == nil:
		return nil, ErrCatalogRequired
	case deps.Records == nil:
		return nil, ErrRecordsRequired
	case deps.Creators == nil:
		return nil, ErrCreatorsRequired
	case deps.Projects == nil:
		return nil, ErrProjectsRequired
	}

	s := &service{
		catalog:  deps.Catalog,
		records:  deps.Records,
		creators: deps.Creators,
		projects: deps.Projects,
		audit:    deps.Audit,
		notifier: deps.Notifier,
		machine:  workflow.Default(),
		hooks:    defaultHooks(),
		locks:    newCreatorLocks(),
		now:      time.Now,
		logger:   logging.NoOp(),
	}
	if s.notifier == nil {
		s.notifier = notify.Nop()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) timestamp() time.Time {
	return s.now().UTC()
}

func (s *service) milestone(id string) (catalog.Milestone, error) {
	milestone, ok := s.catalog.Milestone(id)
	if !ok {
		return catalog.Milestone{}, &NotFoundError{Resource: "milestone", Key: id}
	}
	return milestone, nil
}

func (s *service) record(st *creatorState, milestoneID string) (*records.Record, catalog.Milestone, error) {
	milestone, err := s.milestone(milestoneID)
	if err != nil {
		return nil, milestone, err
	}
	rec, ok := st.index[milestoneID]
	if !ok {
		return nil, milestone, &NotFoundError{Resource: "milestone_record", Key: milestoneID}
	}
	return rec, milestone, nil
}

func (s *service) recordNote(ctx context.Context, st *creatorState, note audit.Note) {
	if s.audit == nil {
		return
	}
	note.CreatorID = st.creator.ID
	note.ProjectID = st.project.ID
	if note.OccurredAt.IsZero() {
		note.OccurredAt = s.timestamp()
	}
	if err := s.audit.Record(ctx, note); err != nil {
		logging.WithMilestoneContext(s.logger, st.creator.ID.String(), note.MilestoneID, note.Action).
			Error("engine.audit.failed", "error", err)
	}
}

func (s *service) emit(st *creatorState, milestoneID string, kind domain.EventKind, actor, note string) {
	s.notifier.Dispatch(notify.Event{
		CreatorID:   st.creator.ID,
		ProjectID:   st.project.ID,
		MilestoneID: milestoneID,
		Kind:        kind,
		Actor:       actor,
		Note:        note,
		OccurredAt:  s.timestamp(),
	})
}

func isNotFound(err error) bool {
	return records.IsNotFound(err) || creators.IsNotFound(err) || errors.Is(err, ErrNotFound)
}
