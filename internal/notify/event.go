package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-onboarding/internal/domain"
)

// Event is the outbound notification emitted after a milestone transition.
type Event struct {
	CreatorID   uuid.UUID        `json:"creator_id"`
	ProjectID   uuid.UUID        `json:"project_id"`
	MilestoneID string           `json:"milestone_id"`
	Kind        domain.EventKind `json:"kind"`
	Actor       string           `json:"actor"`
	Note        string           `json:"note,omitempty"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

// Sink delivers events to one destination. Implementations must be safe for concurrent use.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event Event) error
}

// Notifier accepts events for best-effort delivery. Dispatch never blocks the caller.
type Notifier interface {
	Dispatch(event Event)
}

// Nop drops every event.
func Nop() Notifier { return nopNotifier{} }

type nopNotifier struct{}

func (nopNotifier) Dispatch(Event) {}

// SinkFunc adapts a function into a Sink.
type SinkFunc struct {
	SinkName string
	Fn       func(ctx context.Context, event Event) error
}

func (s SinkFunc) Name() string { return s.SinkName }

func (s SinkFunc) Deliver(ctx context.Context, event Event) error {
	if s.Fn == nil {
		return nil
	}
	return s.Fn(ctx, event)
}
