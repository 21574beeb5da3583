package commands

import (
	"context"
	"maps"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-onboarding/internal/logging"
	"github.com/goliatone/go-onboarding/pkg/interfaces"
)

// DefaultCommandTimeout bounds every command execution unless a handler overrides it.
const DefaultCommandTimeout = 30 * time.Second

// HandlerOption configures a Handler instance.
type HandlerOption[T command.Message] func(*Handler[T])

// ErrorMapper translates domain errors before the handler applies its own categorisation.
type ErrorMapper func(error) error

// FieldsProvider is implemented by messages that want their identifiers (creator, milestone)
// on every log entry the handler writes.
type FieldsProvider interface {
	LogFields() map[string]any
}

// Handler wraps command execution with validation, a timeout, outcome logging and error tagging.
type Handler[T command.Message] struct {
	exec      command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
	telemetry Telemetry[T]
	mapError  ErrorMapper
}

// NewHandler creates a handler that satisfies go-command's Commander interface.
func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		exec:    fn,
		logger:  logging.NoOp(),
		timeout: DefaultCommandTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute conforms to command.Commander[T].Execute.
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	if err := command.ValidateMessage(msg); err != nil {
		return invalidCommand(err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return interrupted(err)
	}

	messageType := command.GetMessageType(msg)
	fields := map[string]any{"command": messageType}
	if h.operation != "" {
		fields["operation"] = h.operation
	}
	if provider, ok := any(msg).(FieldsProvider); ok {
		maps.Copy(fields, provider.LogFields())
	}
	logging.WithFields(h.logger, fields).Debug("command.execute.start")
	started := time.Now()

	err := h.exec(ctx, msg)
	if ctxErr := ctx.Err(); ctxErr != nil {
		h.report(ctx, msg, messageType, fields, started, ctxErr, TelemetryStatusContextError)
		return interrupted(ctxErr)
	}
	if err != nil {
		h.report(ctx, msg, messageType, fields, started, err, TelemetryStatusFailed)
		if h.mapError != nil {
			err = h.mapError(err)
		}
		return failed(err)
	}
	h.report(ctx, msg, messageType, fields, started, nil, TelemetryStatusSuccess)
	return nil
}

func (h *Handler[T]) report(ctx context.Context, msg T, messageType string, fields map[string]any, started time.Time, err error, status TelemetryStatus) {
	telemetry := h.telemetry
	if telemetry == nil {
		telemetry = DefaultTelemetry[T](h.logger)
	}
	telemetry(ctx, msg, TelemetryInfo{
		Command:   messageType,
		Operation: h.operation,
		Fields:    fields,
		Duration:  time.Since(started),
		Error:     err,
		Status:    status,
	})
}

// WithTimeout overrides the default execution timeout. Zero or negative disables it.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.timeout = max(timeout, 0)
	}
}

// WithLogger injects the logger used during execution.
func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithOperation sets the operation name emitted with every log entry.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

// WithTelemetry replaces outcome logging with the supplied callback.
func WithTelemetry[T command.Message](telemetry Telemetry[T]) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.telemetry = telemetry
	}
}

// WithErrorMapper categorises execution errors before the generic command wrapping.
func WithErrorMapper[T command.Message](mapper ErrorMapper) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.mapError = mapper
	}
}
