package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-onboarding/internal/catalog"
	"github.com/goliatone/go-onboarding/internal/creators"
	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/logging"
	"github.com/goliatone/go-onboarding/internal/records"
)

// HookPathSelection is the built-in hook that applies a content path chosen through a milestone.
const HookPathSelection = "path_selection"

// HookFunc runs after a milestone with a matching catalog hook name is completed. Errors are
// logged by the engine and never undo the completion.
type HookFunc func(ctx context.Context, hc HookContext) error

// PathChanger applies content path changes on behalf of a hook while the creator is locked.
type PathChanger interface {
	ChangeContentPath(ctx context.Context, path domain.ContentPath, changedBy string) (int, error)
}

// HookContext is the snapshot handed to hooks.
type HookContext struct {
	Creator   creators.Creator
	Milestone catalog.Milestone
	Record    records.Record
	Actor     string
	Paths     PathChanger
}

// PathSelectionHook reads content_path from the completed record's payload and changes the
// creator's path.
func PathSelectionHook(ctx context.Context, hc HookContext) error {
	raw, ok := hc.Record.Payload["content_path"]
	if !ok {
		return fmt.Errorf("%w: content_path missing from %s payload", ErrInvalidInput, hc.Milestone.ID)
	}
	value, ok := raw.(string)
	if !ok || strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: content_path must be a non-empty string", ErrInvalidInput)
	}
	path, err := domain.ParseContentPath(value)
	if err != nil {
		return err
	}
	if hc.Paths == nil {
		return fmt.Errorf("engine: path changer unavailable")
	}
	_, err = hc.Paths.ChangeContentPath(ctx, path, hc.Actor)
	return err
}

func defaultHooks() map[string]HookFunc {
	return map[string]HookFunc{
		HookPathSelection: PathSelectionHook,
	}
}

// runHook invokes the hook named by the milestone, if any. Failures are logged.
func (s *service) runHook(ctx context.Context, st *creatorState, milestone catalog.Milestone, rec *records.Record, actor string) {
	name := strings.TrimSpace(milestone.Hook)
	if name == "" {
		return
	}
	logger := logging.WithMilestoneContext(s.logger.WithContext(ctx), st.creator.ID.String(), milestone.ID, "hook")
	hook, ok := s.hooks[name]
	if !ok {
		logger.Warn("engine.hook.unregistered", "hook", name)
		return
	}
	hc := HookContext{
		Creator:   *st.creator,
		Milestone: milestone,
		Record:    *records.Clone(rec),
		Actor:     actor,
		Paths:     &lockedPathChanger{service: s, state: st},
	}
	if err := hook(ctx, hc); err != nil {
		logger.Error("engine.hook.failed", "hook", name, "error", err)
		return
	}
	logger.Debug("engine.hook.completed", "hook", name)
}

// lockedPathChanger changes the path of a creator whose lock is already held.
type lockedPathChanger struct {
	service *service
	state   *creatorState
}

func (p *lockedPathChanger) ChangeContentPath(ctx context.Context, path domain.ContentPath, changedBy string) (int, error) {
	result, err := p.service.changeContentPath(ctx, p.state, path, changedBy)
	if err != nil {
		return 0, err
	}
	return result.MilestonesAdded, nil
}
