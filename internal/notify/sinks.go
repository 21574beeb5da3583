package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/logging"
	"github.com/goliatone/go-onboarding/pkg/interfaces"
)

// ErrSinkUnavailable indicates a sink was constructed without its backing client.
var ErrSinkUnavailable = errors.New("notify: sink backend unavailable")

// LogSink writes every event to a logger.
type LogSink struct {
	Logger interfaces.Logger
}

func (s LogSink) Name() string { return "log" }

func (s LogSink) Deliver(ctx context.Context, event Event) error {
	logger := s.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	logger.WithContext(ctx).Info("notify.event",
		"kind", string(event.Kind),
		"creator_id", event.CreatorID.String(),
		"milestone_id", event.MilestoneID,
		"actor", event.Actor,
	)
	return nil
}

// ActivitySink maps events to go-users activity records.
type ActivitySink struct {
	Sink    interfaces.ActivitySink
	Channel string
}

func (s ActivitySink) Name() string { return "activity" }

func (s ActivitySink) Deliver(ctx context.Context, event Event) error {
	if s.Sink == nil {
		return ErrSinkUnavailable
	}
	channel := s.Channel
	if channel == "" {
		channel = interfaces.ActivityChannel
	}
	data := map[string]any{
		"milestone_id": event.MilestoneID,
		"kind":         string(event.Kind),
		"actor":        event.Actor,
	}
	if event.ProjectID != uuid.Nil {
		data["project_id"] = event.ProjectID.String()
	}
	if event.Note != "" {
		data["note"] = event.Note
	}
	record := interfaces.ActivityRecord{
		UserID:     event.CreatorID,
		Verb:       activityVerb(event.Kind),
		ObjectType: interfaces.ActivityObjectMilestone,
		ObjectID:   event.MilestoneID,
		Channel:    channel,
		Data:       data,
		OccurredAt: event.OccurredAt,
	}
	if !domain.IsAdminActor(event.Actor) && !domain.IsSystemActor(event.Actor) {
		record.ActorID = event.CreatorID
	}
	return s.Sink.Log(ctx, record)
}

// MemoryActivityFeed keeps activity records in memory, newest last.
type MemoryActivityFeed struct {
	mu      sync.Mutex
	records []interfaces.ActivityRecord
}

var _ interfaces.ActivitySink = (*MemoryActivityFeed)(nil)

// NewMemoryActivityFeed constructs an empty feed.
func NewMemoryActivityFeed() *MemoryActivityFeed {
	return &MemoryActivityFeed{}
}

func (f *MemoryActivityFeed) Log(_ context.Context, record interfaces.ActivityRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

// List returns a copy of the recorded activity.
func (f *MemoryActivityFeed) List() []interfaces.ActivityRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]interfaces.ActivityRecord, len(f.records))
	copy(out, f.records)
	return out
}

func activityVerb(kind domain.EventKind) string {
	switch kind {
	case domain.EventCompleted:
		return interfaces.ActivityVerbCompleted
	case domain.EventWaitingApproval:
		return interfaces.ActivityVerbSubmitted
	case domain.EventRevisionRequested:
		return interfaces.ActivityVerbRevisionRequested
	default:
		return interfaces.ActivityVerb(string(kind))
	}
}

func formatPanic(value any) string {
	if err, ok := value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(value)
}
