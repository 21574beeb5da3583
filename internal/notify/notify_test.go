package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/notify"
	"github.com/goliatone/go-onboarding/pkg/interfaces"
	"github.com/goliatone/go-onboarding/pkg/testsupport"
)

type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *recordingLogger) Trace(msg string, _ ...any)                   { l.record(msg) }
func (l *recordingLogger) Debug(msg string, _ ...any)                   { l.record(msg) }
func (l *recordingLogger) Info(msg string, _ ...any)                    { l.record(msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)                    { l.record(msg) }
func (l *recordingLogger) Error(msg string, _ ...any)                   { l.record(msg) }
func (l *recordingLogger) Fatal(msg string, _ ...any)                   { l.record(msg) }
func (l *recordingLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l *recordingLogger) count(msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, m := range l.messages {
		if m == msg {
			total++
		}
	}
	return total
}

type collectingSink struct {
	mu     sync.Mutex
	events []notify.Event
}

func (s *collectingSink) Name() string { return "collect" }

func (s *collectingSink) Deliver(_ context.Context, event notify.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *collectingSink) snapshot() []notify.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notify.Event, len(s.events))
	copy(out, s.events)
	return out
}

func sampleEvent(kind domain.EventKind) notify.Event {
	return notify.Event{
		CreatorID:   uuid.New(),
		ProjectID:   uuid.New(),
		MilestoneID: "outline_drafted",
		Kind:        kind,
		Actor:       "creator",
		OccurredAt:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDispatcherDeliversAndDrainsOnClose(t *testing.T) {
	sink := &collectingSink{}
	dispatcher := notify.NewDispatcher([]notify.Sink{sink}, notify.WithWorkers(3), notify.WithQueueSize(32))

	for i := 0; i < 20; i++ {
		dispatcher.Dispatch(sampleEvent(domain.EventCompleted))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dispatcher.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := len(sink.snapshot()); got != 20 {
		t.Fatalf("expected 20 delivered events, got %d", got)
	}

	logger := &recordingLogger{}
	closed := notify.NewDispatcher(nil, notify.WithLogger(logger))
	_ = closed.Close(ctx)
	closed.Dispatch(sampleEvent(domain.EventCompleted))
	if logger.count("notify.dispatch.closed") != 1 {
		t.Fatalf("expected dispatch after close to be logged, got %v", logger.messages)
	}
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	blocking := notify.SinkFunc{SinkName: "blocking", Fn: func(ctx context.Context, _ notify.Event) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil
	}}
	logger := &recordingLogger{}
	dispatcher := notify.NewDispatcher([]notify.Sink{blocking},
		notify.WithWorkers(1),
		notify.WithQueueSize(1),
		notify.WithLogger(logger),
	)

	dispatcher.Dispatch(sampleEvent(domain.EventCompleted))
	<-started
	done := make(chan struct{})
	go func() {
		dispatcher.Dispatch(sampleEvent(domain.EventCompleted))
		dispatcher.Dispatch(sampleEvent(domain.EventCompleted))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch blocked on a full queue")
	}
	if logger.count("notify.queue.full") != 1 {
		t.Fatalf("expected one dropped event, got %v", logger.messages)
	}

	close(release)
	if err := dispatcher.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestDispatcherIsolatesSinkFailures(t *testing.T) {
	logger := &recordingLogger{}
	sink := &collectingSink{}
	failing := notify.SinkFunc{SinkName: "failing", Fn: func(context.Context, notify.Event) error {
		return errors.New("smtp down")
	}}
	panicking := notify.SinkFunc{SinkName: "panicking", Fn: func(context.Context, notify.Event) error {
		panic("boom")
	}}
	dispatcher := notify.NewDispatcher([]notify.Sink{failing, panicking, sink},
		notify.Synchronous(),
		notify.WithLogger(logger),
	)

	dispatcher.Dispatch(sampleEvent(domain.EventWaitingApproval))

	if len(sink.snapshot()) != 1 {
		t.Fatal("expected healthy sink to receive the event")
	}
	if logger.count("notify.sink.failed") != 2 {
		t.Fatalf("expected two sink failures logged, got %v", logger.messages)
	}
}

func TestInboxSinkFiltersKinds(t *testing.T) {
	ctx := context.Background()
	inbox := notify.NewMemoryInbox()
	sink := notify.InboxSink{Repository: inbox}

	if err := sink.Deliver(ctx, sampleEvent(domain.EventCompleted)); err != nil {
		t.Fatalf("deliver completed: %v", err)
	}
	waiting := sampleEvent(domain.EventWaitingApproval)
	if err := sink.Deliver(ctx, waiting); err != nil {
		t.Fatalf("deliver waiting: %v", err)
	}

	items, _ := inbox.ListUnread(ctx)
	if len(items) != 1 || items[0].Kind != domain.EventWaitingApproval || items[0].CreatorID != waiting.CreatorID {
		t.Fatalf("expected one waiting_approval item, got %+v", items)
	}
	if err := inbox.MarkRead(ctx, items[0].ID, time.Now()); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if items, _ := inbox.ListUnread(ctx); len(items) != 0 {
		t.Fatalf("expected empty inbox, got %d", len(items))
	}

	all := notify.InboxSink{Repository: inbox, Kinds: []domain.EventKind{domain.EventRevisionRequested}}
	_ = all.Deliver(ctx, sampleEvent(domain.EventRevisionRequested))
	if items, _ := inbox.ListUnread(ctx); len(items) != 1 {
		t.Fatalf("expected revision item, got %d", len(items))
	}
}

func TestBunInboxRoundTrip(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	if _, err := db.NewCreateTable().Model((*notify.InboxItem)(nil)).IfNotExists().Exec(ctx); err != nil {
		t.Fatalf("create table: %v", err)
	}

	inbox := notify.NewBunInbox(db)
	sink := notify.InboxSink{Repository: inbox}
	if err := sink.Deliver(ctx, sampleEvent(domain.EventWaitingApproval)); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	items, err := inbox.ListUnread(ctx)
	if err != nil || len(items) != 1 {
		t.Fatalf("expected one unread item, got %d err=%v", len(items), err)
	}
	if err := inbox.MarkRead(ctx, items[0].ID, time.Now().UTC()); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	var missing *notify.NotFoundError
	if err := inbox.MarkRead(ctx, uuid.New(), time.Now().UTC()); !errors.As(err, &missing) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestActivitySinkMapsEvent(t *testing.T) {
	feed := notify.NewMemoryActivityFeed()
	sink := notify.ActivitySink{Sink: feed}

	event := sampleEvent(domain.EventRevisionRequested)
	event.Actor = domain.AdminActor("ops@example.com")
	event.Note = "tighten the outline"
	if err := sink.Deliver(context.Background(), event); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	records := feed.List()
	if len(records) != 1 {
		t.Fatalf("expected one activity record, got %d", len(records))
	}
	record := records[0]
	if record.Verb != "milestone.revision_requested" || record.ObjectType != "milestone" || record.ObjectID != "outline_drafted" {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.UserID != event.CreatorID || record.ActorID != uuid.Nil {
		t.Fatalf("expected creator as user and no actor for admin changes, got %+v", record)
	}
	if record.Channel != "onboarding" || record.Data["note"] != "tighten the outline" {
		t.Fatalf("unexpected channel or data %+v", record)
	}

	if err := (notify.ActivitySink{}).Deliver(context.Background(), event); !errors.Is(err, notify.ErrSinkUnavailable) {
		t.Fatalf("expected ErrSinkUnavailable, got %v", err)
	}
}

type fakePublisher struct {
	channel string
	payload []byte
	err     error
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, message any) *goredis.IntCmd {
	p.channel = channel
	p.payload, _ = message.([]byte)
	cmd := goredis.NewIntCmd(ctx)
	if p.err != nil {
		cmd.SetErr(p.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestRedisSinkPublishesJSON(t *testing.T) {
	publisher := &fakePublisher{}
	sink := notify.NewRedisSink(publisher, "")
	event := sampleEvent(domain.EventCompleted)

	if err := sink.Deliver(context.Background(), event); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if publisher.channel != "onboarding.milestones" {
		t.Fatalf("expected default channel, got %q", publisher.channel)
	}
	var decoded map[string]any
	if err := json.Unmarshal(publisher.payload, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded["kind"] != "completed" || decoded["milestone_id"] != "outline_drafted" || decoded["creator_id"] != event.CreatorID.String() {
		t.Fatalf("unexpected payload %v", decoded)
	}

	publisher.err = errors.New("connection refused")
	if err := sink.Deliver(context.Background(), event); err == nil {
		t.Fatal("expected publish error")
	}
}
