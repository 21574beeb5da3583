package onboarding

import (
	"context"

	"github.com/goliatone/go-onboarding/internal/audit"
	"github.com/goliatone/go-onboarding/internal/catalog"
	milestonescmd "github.com/goliatone/go-onboarding/internal/commands/milestones"
	"github.com/goliatone/go-onboarding/internal/creators"
	"github.com/goliatone/go-onboarding/internal/di"
	"github.com/goliatone/go-onboarding/internal/engine"
	apihttp "github.com/goliatone/go-onboarding/internal/http"
	"github.com/goliatone/go-onboarding/internal/notify"
	"github.com/goliatone/go-onboarding/internal/progress"
)

// EngineService exports the milestone transition engine contract.
type EngineService = engine.Service

// CreatorService exports the creator registration contract.
type CreatorService = creators.Service

// DashboardService exports the progress dashboard service.
type DashboardService = *progress.DashboardService

// Dashboard exports the creator-facing progress view.
type Dashboard = progress.Dashboard

// Catalog exports the milestone catalog contract.
type Catalog = catalog.Catalog

// AuditRecorder exports the audit note store contract.
type AuditRecorder = audit.Recorder

// Inbox exports the admin inbox store contract.
type Inbox = notify.InboxRepository

// CommandHandlers exports the go-command handler set.
type CommandHandlers = *milestonescmd.Handlers

// HookFunc exports the completion hook signature.
type HookFunc = engine.HookFunc

// Module represents the top level onboarding runtime façade.
type Module struct {
	container *di.Container
}

// New constructs an onboarding module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Engine returns the transition engine.
func (m *Module) Engine() EngineService {
	return m.container.EngineService()
}

// Creators returns the creator registration service.
func (m *Module) Creators() CreatorService {
	return m.container.CreatorService()
}

// Dashboards returns the progress dashboard service.
func (m *Module) Dashboards() DashboardService {
	return m.container.DashboardService()
}

// Catalog returns the loaded milestone catalog.
func (m *Module) Catalog() Catalog {
	return m.container.Catalog()
}

// Audit returns the audit note store.
func (m *Module) Audit() AuditRecorder {
	return m.container.AuditRecorder()
}

// Inbox returns the admin inbox store.
func (m *Module) Inbox() Inbox {
	return m.container.Inbox()
}

// Commands returns the go-command handlers bound to the engine.
func (m *Module) Commands() CommandHandlers {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.CommandHandlers()
}

// API returns the HTTP adapter.
func (m *Module) API() *apihttp.API {
	return m.container.API()
}

// Close drains notifications and releases owned connections.
func (m *Module) Close(ctx context.Context) error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close(ctx)
}
