package milestonescmd

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-onboarding/internal/domain"
)

const (
	materializeMessageType    = "onboarding.milestones.materialize"
	submitMessageType         = "onboarding.milestones.submit"
	adminCompleteMessageType  = "onboarding.milestones.admin_complete"
	requestRevisionType       = "onboarding.milestones.request_revision"
	changeContentPathType     = "onboarding.creators.change_content_path"
	restartProjectMessageType = "onboarding.creators.restart_project"
	pauseMessageType          = "onboarding.milestones.pause"
	resumeMessageType         = "onboarding.milestones.resume"
	relockMessageType         = "onboarding.milestones.relock"
	setOptionalMessageType    = "onboarding.milestones.set_optional"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// MaterializeMilestonesCommand inserts any missing milestone records for a creator.
type MaterializeMilestonesCommand struct {
	CreatorID uuid.UUID `json:"creator_id"`
}

// Type implements command.Message.
func (MaterializeMilestonesCommand) Type() string { return materializeMessageType }

// Validate implements command.Message.
func (m MaterializeMilestonesCommand) Validate() error {
	errs := validation.Errors{}
	requireCreator(errs, m.CreatorID, materializeMessageType)
	return errs.Filter()
}

// SubmitMilestoneCommand carries a creator submission.
type SubmitMilestoneCommand struct {
	CreatorID   uuid.UUID      `json:"creator_id"`
	MilestoneID string         `json:"milestone_id"`
	Kind        string         `json:"kind"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// Type implements command.Message.
func (SubmitMilestoneCommand) Type() string { return submitMessageType }

// Validate implements command.Message.
func (m SubmitMilestoneCommand) Validate() error {
	errs := validation.Errors{}
	requireCreator(errs, m.CreatorID, submitMessageType)
	requireMilestone(errs, m.MilestoneID, submitMessageType)
	if _, err := domain.ParseSubmissionKind(m.Kind); err != nil {
		errs["kind"] = validation.NewError(submitMessageType+".kind_invalid", "kind must be confirmation or review_submission")
	}
	return errs.Filter()
}

// AdminCompleteMilestoneCommand force-completes a milestone on behalf of an admin.
type AdminCompleteMilestoneCommand struct {
	CreatorID   uuid.UUID      `json:"creator_id"`
	MilestoneID string         `json:"milestone_id"`
	AdminEmail  string         `json:"admin_email"`
	Note        string         `json:"note,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// Type implements command.Message.
func (AdminCompleteMilestoneCommand) Type() string { return adminCompleteMessageType }

// Validate implements command.Message.
func (m AdminCompleteMilestoneCommand) Validate() error {
	errs := validation.Errors{}
	requireCreator(errs, m.CreatorID, adminCompleteMessageType)
	requireMilestone(errs, m.MilestoneID, adminCompleteMessageType)
	if err := validation.Validate(strings.TrimSpace(m.AdminEmail),
		validation.Required.ErrorObject(validation.NewError(adminCompleteMessageType+".admin_email_required", "admin_email is required")),
		validation.Match(emailPattern).ErrorObject(validation.NewError(adminCompleteMessageType+".admin_email_invalid", "admin_email must be an email address")),
	); err != nil {
		errs["admin_email"] = err
	}
	if err := validation.Validate(m.Note, validation.Length(0, 2000)); err != nil {
		errs["note"] = err
	}
	return errs.Filter()
}

// RequestRevisionCommand reopens a milestone and relocks everything after it.
type RequestRevisionCommand struct {
	CreatorID   uuid.UUID `json:"creator_id"`
	MilestoneID string    `json:"milestone_id"`
	Note        string    `json:"note,omitempty"`
	RequestedBy string    `json:"requested_by"`
}

// Type implements command.Message.
func (RequestRevisionCommand) Type() string { return requestRevisionType }

// Validate implements command.Message.
func (m RequestRevisionCommand) Validate() error {
	errs := validation.Errors{}
	requireCreator(errs, m.CreatorID, requestRevisionType)
	requireMilestone(errs, m.MilestoneID, requestRevisionType)
	if strings.TrimSpace(m.RequestedBy) == "" {
		errs["requested_by"] = validation.NewError(requestRevisionType+".requested_by_required", "requested_by is required")
	}
	if err := validation.Validate(m.Note, validation.Length(0, 2000)); err != nil {
		errs["note"] = err
	}
	return errs.Filter()
}

// ChangeContentPathCommand switches a creator to another content path.
type ChangeContentPathCommand struct {
	CreatorID uuid.UUID `json:"creator_id"`
	Path      string    `json:"path"`
	ChangedBy string    `json:"changed_by,omitempty"`
}

// Type implements command.Message.
func (ChangeContentPathCommand) Type() string { return changeContentPathType }

// Validate implements command.Message.
func (m ChangeContentPathCommand) Validate() error {
	errs := validation.Errors{}
	requireCreator(errs, m.CreatorID, changeContentPathType)
	if _, err := domain.ParseContentPath(m.Path); err != nil || strings.TrimSpace(m.Path) == "" {
		errs["path"] = validation.NewError(changeContentPathType+".path_invalid", "path must be one of blog, download, course, unset")
	}
	return errs.Filter()
}

// RestartProjectCommand archives the creator's project and starts a new one.
type RestartProjectCommand struct {
	CreatorID uuid.UUID `json:"creator_id"`
	Actor     string    `json:"actor,omitempty"`
}

// Type implements command.Message.
func (RestartProjectCommand) Type() string { return restartProjectMessageType }

// Validate implements command.Message.
func (m RestartProjectCommand) Validate() error {
	errs := validation.Errors{}
	requireCreator(errs, m.CreatorID, restartProjectMessageType)
	return errs.Filter()
}

// PauseMilestoneCommand puts a milestone on hold.
type PauseMilestoneCommand struct {
	CreatorID   uuid.UUID `json:"creator_id"`
	MilestoneID string    `json:"milestone_id"`
	Reason      string    `json:"reason,omitempty"`
	Actor       string    `json:"actor"`
}

// Type implements command.Message.
func (PauseMilestoneCommand) Type() string { return pauseMessageType }

// Validate implements command.Message.
func (m PauseMilestoneCommand) Validate() error {
	return validateAdminMilestone(pauseMessageType, m.CreatorID, m.MilestoneID, m.Actor)
}

// ResumeMilestoneCommand releases a paused milestone.
type ResumeMilestoneCommand struct {
	CreatorID   uuid.UUID `json:"creator_id"`
	MilestoneID string    `json:"milestone_id"`
	Actor       string    `json:"actor"`
}

// Type implements command.Message.
func (ResumeMilestoneCommand) Type() string { return resumeMessageType }

// Validate implements command.Message.
func (m ResumeMilestoneCommand) Validate() error {
	return validateAdminMilestone(resumeMessageType, m.CreatorID, m.MilestoneID, m.Actor)
}

// RelockMilestoneCommand locks a single milestone again.
type RelockMilestoneCommand struct {
	CreatorID   uuid.UUID `json:"creator_id"`
	MilestoneID string    `json:"milestone_id"`
	Actor       string    `json:"actor"`
}

// Type implements command.Message.
func (RelockMilestoneCommand) Type() string { return relockMessageType }

// Validate implements command.Message.
func (m RelockMilestoneCommand) Validate() error {
	return validateAdminMilestone(relockMessageType, m.CreatorID, m.MilestoneID, m.Actor)
}

// SetOptionalCommand overrides whether a milestone counts as bonus work for one creator.
// A nil Optional restores the catalog classification.
type SetOptionalCommand struct {
	CreatorID   uuid.UUID `json:"creator_id"`
	MilestoneID string    `json:"milestone_id"`
	Optional    *bool     `json:"optional"`
	Actor       string    `json:"actor"`
}

// Type implements command.Message.
func (SetOptionalCommand) Type() string { return setOptionalMessageType }

// Validate implements command.Message.
func (m SetOptionalCommand) Validate() error {
	return validateAdminMilestone(setOptionalMessageType, m.CreatorID, m.MilestoneID, m.Actor)
}

func validateAdminMilestone(messageType string, creatorID uuid.UUID, milestoneID, actor string) error {
	errs := validation.Errors{}
	requireCreator(errs, creatorID, messageType)
	requireMilestone(errs, milestoneID, messageType)
	if strings.TrimSpace(actor) == "" {
		errs["actor"] = validation.NewError(messageType+".actor_required", "actor is required")
	}
	return errs.Filter()
}

func requireCreator(errs validation.Errors, id uuid.UUID, messageType string) {
	if id == uuid.Nil {
		errs["creator_id"] = validation.NewError(messageType+".creator_id_required", "creator_id is required")
	}
}

func requireMilestone(errs validation.Errors, id, messageType string) {
	if strings.TrimSpace(id) == "" {
		errs["milestone_id"] = validation.NewError(messageType+".milestone_id_required", "milestone_id is required")
	}
}

func logFields(creatorID uuid.UUID, milestoneID string) map[string]any {
	fields := map[string]any{"creator_id": creatorID.String()}
	if trimmed := strings.TrimSpace(milestoneID); trimmed != "" {
		fields["milestone_id"] = trimmed
	}
	return fields
}

// LogFields implements commands.FieldsProvider.
func (m MaterializeMilestonesCommand) LogFields() map[string]any { return logFields(m.CreatorID, "") }

// LogFields implements commands.FieldsProvider.
func (m SubmitMilestoneCommand) LogFields() map[string]any {
	return logFields(m.CreatorID, m.MilestoneID)
}

// LogFields implements commands.FieldsProvider.
func (m AdminCompleteMilestoneCommand) LogFields() map[string]any {
	return logFields(m.CreatorID, m.MilestoneID)
}

// LogFields implements commands.FieldsProvider.
func (m RequestRevisionCommand) LogFields() map[string]any {
	return logFields(m.CreatorID, m.MilestoneID)
}

// LogFields implements commands.FieldsProvider.
func (m ChangeContentPathCommand) LogFields() map[string]any {
	fields := logFields(m.CreatorID, "")
	fields["content_path"] = strings.TrimSpace(m.Path)
	return fields
}

// LogFields implements commands.FieldsProvider.
func (m RestartProjectCommand) LogFields() map[string]any { return logFields(m.CreatorID, "") }

// LogFields implements commands.FieldsProvider.
func (m PauseMilestoneCommand) LogFields() map[string]any {
	return logFields(m.CreatorID, m.MilestoneID)
}

// LogFields implements commands.FieldsProvider.
func (m ResumeMilestoneCommand) LogFields() map[string]any {
	return logFields(m.CreatorID, m.MilestoneID)
}

// LogFields implements commands.FieldsProvider.
func (m RelockMilestoneCommand) LogFields() map[string]any {
	return logFields(m.CreatorID, m.MilestoneID)
}

// LogFields implements commands.FieldsProvider.
func (m SetOptionalCommand) LogFields() map[string]any {
	fields := logFields(m.CreatorID, m.MilestoneID)
	if m.Optional != nil {
		fields["optional"] = *m.Optional
	}
	return fields
}
