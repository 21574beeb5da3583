package notify

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-onboarding/internal/logging"
	"github.com/goliatone/go-onboarding/pkg/interfaces"
)

const (
	defaultWorkers         = 2
	defaultQueueSize       = 128
	defaultDeliveryTimeout = 10 * time.Second
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithWorkers sets the number of delivery goroutines.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithQueueSize bounds the pending event buffer.
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queueSize = n
		}
	}
}

// WithDeliveryTimeout bounds each sink delivery.
func WithDeliveryTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithLogger sets the logger used for delivery failures.
func WithLogger(logger interfaces.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Synchronous delivers events on the caller goroutine. Intended for tests.
func Synchronous() Option {
	return func(d *Dispatcher) {
		d.synchronous = true
	}
}

// Dispatcher fans events out to sinks from a bounded queue. Events are unordered
// across workers and may be dropped when the queue is full.
type Dispatcher struct {
	sinks       []Sink
	workers     int
	queueSize   int
	timeout     time.Duration
	synchronous bool
	logger      interfaces.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan Event
	wg     sync.WaitGroup
}

var _ Notifier = (*Dispatcher)(nil)

// NewDispatcher starts the worker pool for the supplied sinks.
func NewDispatcher(sinks []Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		workers:   defaultWorkers,
		queueSize: defaultQueueSize,
		timeout:   defaultDeliveryTimeout,
		logger:    logging.NoOp(),
	}
	for _, sink := range sinks {
		if sink != nil {
			d.sinks = append(d.sinks, sink)
		}
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.synchronous {
		return d
	}

	d.queue = make(chan Event, d.queueSize)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

// Dispatch enqueues the event without blocking.
func (d *Dispatcher) Dispatch(event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("notify.dispatch.closed", "kind", string(event.Kind), "milestone_id", event.MilestoneID)
		return
	}
	if d.synchronous {
		d.deliver(event)
		return
	}

	select {
	case d.queue <- event:
	default:
		d.logger.Warn("notify.queue.full",
			"kind", string(event.Kind),
			"creator_id", event.CreatorID.String(),
			"milestone_id", event.MilestoneID,
		)
	}
}

// Close stops accepting events and waits for queued events to drain or ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	if d.queue != nil {
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event Event) {
	for _, sink := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := safeDeliver(ctx, sink, event)
		cancel()
		if err != nil {
			d.logger.Error("notify.sink.failed",
				"sink", sink.Name(),
				"kind", string(event.Kind),
				"creator_id", event.CreatorID.String(),
				"milestone_id", event.MilestoneID,
				"error", err,
			)
		}
	}
}

func safeDeliver(ctx context.Context, sink Sink, event Event) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = &panicError{value: recovered}
		}
	}()
	return sink.Deliver(ctx, event)
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return "notify: sink panicked: " + formatPanic(e.value)
}
