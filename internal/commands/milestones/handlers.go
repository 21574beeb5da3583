package milestonescmd

import (
	"context"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-onboarding/internal/commands"
	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/engine"
	"github.com/goliatone/go-onboarding/pkg/interfaces"
)

// Handler executes one milestone command through the shared handler foundation.
type Handler[T command.Message] struct {
	inner *commands.Handler[T]
}

// Execute satisfies command.Commander[T].
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	return h.inner.Execute(ctx, msg)
}

func newHandler[T command.Message](operation string, logger interfaces.Logger, exec command.CommandFunc[T], opts []commands.HandlerOption[T]) *Handler[T] {
	handlerOpts := []commands.HandlerOption[T]{
		commands.WithLogger[T](logger),
		commands.WithOperation[T](operation),
		commands.WithTelemetry(commands.DefaultTelemetry[T](logger)),
		commands.WithErrorMapper[T](engine.Categorize),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &Handler[T]{inner: commands.NewHandler(exec, handlerOpts...)}
}

// NewMaterializeHandler wires MaterializeMilestonesCommand to the engine.
func NewMaterializeHandler(service engine.Service, logger interfaces.Logger, opts ...commands.HandlerOption[MaterializeMilestonesCommand]) *Handler[MaterializeMilestonesCommand] {
	return newHandler("milestones.materialize", logger, func(ctx context.Context, msg MaterializeMilestonesCommand) error {
		_, err := service.MaterializeMissing(ctx, msg.CreatorID)
		return err
	}, opts)
}

// NewSubmitHandler wires SubmitMilestoneCommand to the engine.
func NewSubmitHandler(service engine.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SubmitMilestoneCommand]) *Handler[SubmitMilestoneCommand] {
	return newHandler("milestones.submit", logger, func(ctx context.Context, msg SubmitMilestoneCommand) error {
		kind, err := domain.ParseSubmissionKind(msg.Kind)
		if err != nil {
			return err
		}
		_, err = service.Submit(ctx, engine.SubmitInput{
			CreatorID:   msg.CreatorID,
			MilestoneID: msg.MilestoneID,
			Kind:        kind,
			Payload:     msg.Payload,
		})
		return err
	}, opts)
}

// NewAdminCompleteHandler wires AdminCompleteMilestoneCommand to the engine.
func NewAdminCompleteHandler(service engine.Service, logger interfaces.Logger, opts ...commands.HandlerOption[AdminCompleteMilestoneCommand]) *Handler[AdminCompleteMilestoneCommand] {
	return newHandler("milestones.admin_complete", logger, func(ctx context.Context, msg AdminCompleteMilestoneCommand) error {
		_, err := service.AdminComplete(ctx, engine.AdminCompleteInput{
			CreatorID:   msg.CreatorID,
			MilestoneID: msg.MilestoneID,
			AdminEmail:  msg.AdminEmail,
			Note:        msg.Note,
			Payload:     msg.Payload,
		})
		return err
	}, opts)
}

// NewRequestRevisionHandler wires RequestRevisionCommand to the engine.
func NewRequestRevisionHandler(service engine.Service, logger interfaces.Logger, opts ...commands.HandlerOption[RequestRevisionCommand]) *Handler[RequestRevisionCommand] {
	return newHandler("milestones.request_revision", logger, func(ctx context.Context, msg RequestRevisionCommand) error {
		return service.RequestRevision(ctx, engine.RevisionInput{
			CreatorID:   msg.CreatorID,
			MilestoneID: msg.MilestoneID,
			Note:        msg.Note,
			RequestedBy: msg.RequestedBy,
		})
	}, opts)
}

// NewChangeContentPathHandler wires ChangeContentPathCommand to the engine.
func NewChangeContentPathHandler(service engine.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ChangeContentPathCommand]) *Handler[ChangeContentPathCommand] {
	return newHandler("creators.change_content_path", logger, func(ctx context.Context, msg ChangeContentPathCommand) error {
		_, err := service.ChangeContentPath(ctx, engine.ChangePathInput{
			CreatorID: msg.CreatorID,
			Path:      msg.Path,
			ChangedBy: msg.ChangedBy,
		})
		return err
	}, opts)
}

// NewRestartProjectHandler wires RestartProjectCommand to the engine.
func NewRestartProjectHandler(service engine.Service, logger interfaces.Logger, opts ...commands.HandlerOption[RestartProjectCommand]) *Handler[RestartProjectCommand] {
	return newHandler("creators.restart_project", logger, func(ctx context.Context, msg RestartProjectCommand) error {
		_, err := service.ArchiveAndRestart(ctx, engine.RestartInput{CreatorID: msg.CreatorID, Actor: msg.Actor})
		return err
	}, opts)
}

// NewPauseHandler wires PauseMilestoneCommand to the engine.
func NewPauseHandler(service engine.Service, logger interfaces.Logger, opts ...commands.HandlerOption[PauseMilestoneCommand]) *Handler[PauseMilestoneCommand] {
	return newHandler("milestones.pause", logger, func(ctx context.Context, msg PauseMilestoneCommand) error {
		return service.Pause(ctx, engine.PauseInput{
			CreatorID:   msg.CreatorID,
			MilestoneID: msg.MilestoneID,
			Reason:      msg.Reason,
			Actor:       msg.Actor,
		})
	}, opts)
}

// NewResumeHandler wires ResumeMilestoneCommand to the engine.
func NewResumeHandler(service engine.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ResumeMilestoneCommand]) *Handler[ResumeMilestoneCommand] {
	return newHandler("milestones.resume", logger, func(ctx context.Context, msg ResumeMilestoneCommand) error {
		return service.Resume(ctx, engine.AdminMilestoneInput{CreatorID: msg.CreatorID, MilestoneID: msg.MilestoneID, Actor: msg.Actor})
	}, opts)
}

// NewRelockHandler wires RelockMilestoneCommand to the engine.
func NewRelockHandler(service engine.Service, logger interfaces.Logger, opts ...commands.HandlerOption[RelockMilestoneCommand]) *Handler[RelockMilestoneCommand] {
	return newHandler("milestones.relock", logger, func(ctx context.Context, msg RelockMilestoneCommand) error {
		return service.ReLock(ctx, engine.AdminMilestoneInput{CreatorID: msg.CreatorID, MilestoneID: msg.MilestoneID, Actor: msg.Actor})
	}, opts)
}

// NewSetOptionalHandler wires SetOptionalCommand to the engine.
func NewSetOptionalHandler(service engine.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SetOptionalCommand]) *Handler[SetOptionalCommand] {
	return newHandler("milestones.set_optional", logger, func(ctx context.Context, msg SetOptionalCommand) error {
		return service.SetOptional(ctx, engine.OptionalInput{
			CreatorID:   msg.CreatorID,
			MilestoneID: msg.MilestoneID,
			Optional:    msg.Optional,
			Actor:       msg.Actor,
		})
	}, opts)
}
