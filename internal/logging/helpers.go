package logging

import (
	"maps"

	"github.com/goliatone/go-onboarding/pkg/interfaces"
)

// WithFields attaches fields when logger implements interfaces.FieldsLogger and returns it
// unchanged otherwise. A nil logger becomes NoOp. The fields map is copied.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil {
		return NoOp()
	}
	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok || len(fields) == 0 {
		return logger
	}
	return fieldsLogger.WithFields(maps.Clone(fields))
}
