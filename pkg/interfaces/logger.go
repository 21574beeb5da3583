package interfaces

import "context"

// Logger is the leveled logging contract used across the onboarding packages. Its method
// set matches go-logger's, so a go-logger instance can be passed in directly.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out loggers by module name (onboarding.engine, onboarding.notify, ...).
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is implemented by loggers that can carry structured fields on every entry.
// Use logging.WithFields rather than asserting this directly.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
