package zaplogger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-onboarding/internal/logging"
	"github.com/goliatone/go-onboarding/pkg/interfaces"
)

// Config captures the options exposed by the zap adapter.
type Config struct {
	// Mode selects the zap preset: "production" (JSON) or "development" (console).
	Mode  string
	Level string
	// Redact masks values whose keys look like credentials or email addresses.
	Redact bool
}

// Provider wraps a zap sugared logger so it satisfies the onboarding logging interfaces.
type Provider struct {
	root   *zap.SugaredLogger
	redact bool
}

// NewProvider builds a zap logger from the supplied configuration.
func NewProvider(cfg Config) (*Provider, error) {
	var zcfg zap.Config
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case "", "prod", "production":
		zcfg = zap.NewProductionConfig()
	case "dev", "development":
		zcfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("logging: unsupported zap mode %q", cfg.Mode)
	}
	if level := strings.TrimSpace(cfg.Level); level != "" {
		parsed, err := zapcore.ParseLevel(normalizeLevel(level))
		if err != nil {
			return nil, fmt.Errorf("logging: zap level: %w", err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(parsed)
	}
	built, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return NewProviderFromLogger(built, cfg.Redact), nil
}

// NewProviderFromLogger adapts an existing zap logger.
func NewProviderFromLogger(logger *zap.Logger, redact bool) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{root: logger.Sugar(), redact: redact}
}

// GetLogger returns a named child logger.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	inner := p.root
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		inner = inner.Named(trimmed)
	}
	return &adapter{inner: inner, redact: p.redact}
}

// Sync flushes buffered entries.
func (p *Provider) Sync() error {
	if p == nil || p.root == nil {
		return nil
	}
	return p.root.Sync()
}

type adapter struct {
	inner  *zap.SugaredLogger
	redact bool
	ctx    context.Context
}

var (
	_ interfaces.Logger       = (*adapter)(nil)
	_ interfaces.FieldsLogger = (*adapter)(nil)
)

func (l *adapter) Trace(msg string, args ...any) { l.inner.Debugw(msg, l.kv(args)...) }
func (l *adapter) Debug(msg string, args ...any) { l.inner.Debugw(msg, l.kv(args)...) }
func (l *adapter) Info(msg string, args ...any)  { l.inner.Infow(msg, l.kv(args)...) }
func (l *adapter) Warn(msg string, args ...any)  { l.inner.Warnw(msg, l.kv(args)...) }
func (l *adapter) Error(msg string, args ...any) { l.inner.Errorw(msg, l.kv(args)...) }
func (l *adapter) Fatal(msg string, args ...any) { l.inner.Fatalw(msg, l.kv(args)...) }

func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return &adapter{inner: l.inner.With(l.sanitize(args)...), redact: l.redact, ctx: l.ctx}
}

func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	return &adapter{inner: l.inner, redact: l.redact, ctx: ctx}
}

// kv merges context fields ahead of the call arguments.
func (l *adapter) kv(args []any) []any {
	ctxFields := logging.ContextFields(l.ctx)
	if len(ctxFields) == 0 {
		return l.sanitize(args)
	}
	keys := make([]string, 0, len(ctxFields))
	for key := range ctxFields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	merged := make([]any, 0, len(keys)*2+len(args))
	for _, key := range keys {
		merged = append(merged, key, ctxFields[key])
	}
	return l.sanitize(append(merged, args...))
}

func (l *adapter) sanitize(kv []any) []any {
	if !l.redact || len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := fmt.Sprint(kv[i])
		if isRedactKey(strings.ToLower(key)) {
			out = append(out, key, "[REDACTED]")
			continue
		}
		out = append(out, key, kv[i+1])
	}
	return out
}

func isRedactKey(key string) bool {
	for _, needle := range []string{"token", "password", "secret", "authorization", "email", "dsn"} {
		if strings.Contains(key, needle) {
			return true
		}
	}
	return false
}

func normalizeLevel(level string) string {
	switch strings.ToLower(level) {
	case "trace":
		return "debug"
	case "warning":
		return "warn"
	default:
		return strings.ToLower(level)
	}
}
