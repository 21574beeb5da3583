package logging

import (
	"context"
	"maps"
	"strings"
)

type contextKey struct{}

// ContextWithFields returns ctx annotated with fields that context-aware loggers merge into
// every entry. Fields already on ctx are kept; later values win.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, contextKey{}, merged)
}

// ContextFields returns a copy of the fields attached to ctx.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(contextKey{}).(map[string]any)
	if len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

// ContextWithRequest tags ctx with an API request id and the matched route.
func ContextWithRequest(ctx context.Context, requestID, route string) context.Context {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(requestID); trimmed != "" {
		fields[fieldRequestID] = trimmed
	}
	if trimmed := strings.TrimSpace(route); trimmed != "" {
		fields[fieldRoute] = trimmed
	}
	return ContextWithFields(ctx, fields)
}

// RequestID returns the id stored by ContextWithRequest, or "".
func RequestID(ctx context.Context) string {
	id, _ := ContextFields(ctx)[fieldRequestID].(string)
	return id
}
