package milestonescmd

import (
	"github.com/goliatone/go-command/dispatcher"

	"github.com/goliatone/go-onboarding/internal/engine"
	"github.com/goliatone/go-onboarding/pkg/interfaces"
)

// Subscription releases a dispatcher subscription.
type Subscription interface {
	Unsubscribe()
}

// Handlers groups every milestone command handler.
type Handlers struct {
	Materialize   *Handler[MaterializeMilestonesCommand]
	Submit        *Handler[SubmitMilestoneCommand]
	AdminComplete *Handler[AdminCompleteMilestoneCommand]
	Revision      *Handler[RequestRevisionCommand]
	ChangePath    *Handler[ChangeContentPathCommand]
	Restart       *Handler[RestartProjectCommand]
	Pause         *Handler[PauseMilestoneCommand]
	Resume        *Handler[ResumeMilestoneCommand]
	Relock        *Handler[RelockMilestoneCommand]
	SetOptional   *Handler[SetOptionalCommand]
}

// NewHandlers builds the handler set for the engine.
func NewHandlers(service engine.Service, logger interfaces.Logger) *Handlers {
	return &Handlers{
		Materialize:   NewMaterializeHandler(service, logger),
		Submit:        NewSubmitHandler(service, logger),
		AdminComplete: NewAdminCompleteHandler(service, logger),
		Revision:      NewRequestRevisionHandler(service, logger),
		ChangePath:    NewChangeContentPathHandler(service, logger),
		Restart:       NewRestartProjectHandler(service, logger),
		Pause:         NewPauseHandler(service, logger),
		Resume:        NewResumeHandler(service, logger),
		Relock:        NewRelockHandler(service, logger),
		SetOptional:   NewSetOptionalHandler(service, logger),
	}
}

// All lists the handlers for registries that accept untyped handlers.
func (h *Handlers) All() []any {
	return []any{h.Materialize, h.Submit, h.AdminComplete, h.Revision, h.ChangePath, h.Restart, h.Pause, h.Resume, h.Relock, h.SetOptional}
}

// RegisterDispatcher subscribes every handler to the go-command dispatcher. Callers release
// the returned subscriptions on shutdown.
func RegisterDispatcher(service engine.Service, logger interfaces.Logger) (*Handlers, []Subscription) {
	handlers := NewHandlers(service, logger)
	subs := []Subscription{
		dispatcher.SubscribeCommand(handlers.Materialize),
		dispatcher.SubscribeCommand(handlers.Submit),
		dispatcher.SubscribeCommand(handlers.AdminComplete),
		dispatcher.SubscribeCommand(handlers.Revision),
		dispatcher.SubscribeCommand(handlers.ChangePath),
		dispatcher.SubscribeCommand(handlers.Restart),
		dispatcher.SubscribeCommand(handlers.Pause),
		dispatcher.SubscribeCommand(handlers.Resume),
		dispatcher.SubscribeCommand(handlers.Relock),
		dispatcher.SubscribeCommand(handlers.SetOptional),
	}
	return handlers, subs
}
