package console

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-onboarding/internal/logging"
	"github.com/goliatone/go-onboarding/pkg/interfaces"
)

// Level is the severity attached to a log entry. The zero value means "use the default".
type Level uint8

const (
	LevelTrace Level = iota + 1
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "INFO"
}

// ParseLevel maps a config level name to a Level. Unknown names yield LevelInfo.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Options configures the console provider. Zero values write INFO and above to stdout.
type Options struct {
	Writer   io.Writer
	Clock    func() time.Time
	MinLevel Level
}

// Provider writes one line per entry:
//
//	2024-03-01T09:00:00Z INFO [onboarding.engine] engine.submit.completed creator_id=... status=completed
type Provider struct {
	out      io.Writer
	clock    func() time.Time
	minLevel Level
	mu       sync.Mutex
}

var _ interfaces.LoggerProvider = (*Provider)(nil)

// NewProvider constructs a console provider.
func NewProvider(opts Options) *Provider {
	p := &Provider{out: opts.Writer, clock: opts.Clock, minLevel: opts.MinLevel}
	if p.out == nil {
		p.out = os.Stdout
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	if p.minLevel == 0 {
		p.minLevel = LevelInfo
	}
	return p
}

// GetLogger returns a logger whose entries are tagged with name.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	return &logger{provider: p, name: strings.TrimSpace(name)}
}

type logger struct {
	provider *Provider
	name     string
	fields   map[string]any
	ctx      context.Context
}

var (
	_ interfaces.Logger       = (*logger)(nil)
	_ interfaces.FieldsLogger = (*logger)(nil)
)

func (l *logger) Trace(msg string, args ...any) { l.write(LevelTrace, msg, args) }
func (l *logger) Debug(msg string, args ...any) { l.write(LevelDebug, msg, args) }
func (l *logger) Info(msg string, args ...any)  { l.write(LevelInfo, msg, args) }
func (l *logger) Warn(msg string, args ...any)  { l.write(LevelWarn, msg, args) }
func (l *logger) Error(msg string, args ...any) { l.write(LevelError, msg, args) }
func (l *logger) Fatal(msg string, args ...any) { l.write(LevelFatal, msg, args) }

func (l *logger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	child := *l
	child.fields = make(map[string]any, len(l.fields)+len(fields))
	maps.Copy(child.fields, l.fields)
	maps.Copy(child.fields, fields)
	return &child
}

func (l *logger) WithContext(ctx context.Context) interfaces.Logger {
	child := *l
	child.ctx = ctx
	return &child
}

func (l *logger) write(level Level, msg string, args []any) {
	if l.provider == nil || level < l.provider.minLevel {
		return
	}

	fields := make(map[string]any, len(l.fields)+len(args)/2+2)
	maps.Copy(fields, l.fields)
	maps.Copy(fields, logging.ContextFields(l.ctx))
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || key == "" {
			key = "arg" + strconv.Itoa(i/2)
		}
		if i+1 < len(args) {
			fields[key] = args[i+1]
		} else {
			fields[key] = nil
		}
	}

	module := l.name
	if value, ok := fields["module"].(string); ok && value != "" {
		module = value
	}
	delete(fields, "module")

	var line strings.Builder
	line.WriteString(l.provider.clock().UTC().Format(time.RFC3339Nano))
	line.WriteByte(' ')
	line.WriteString(level.String())
	if module != "" {
		line.WriteString(" [")
		line.WriteString(module)
		line.WriteByte(']')
	}
	line.WriteByte(' ')
	line.WriteString(msg)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		line.WriteByte(' ')
		line.WriteString(key)
		line.WriteByte('=')
		line.WriteString(render(fields[key]))
	}
	line.WriteByte('\n')

	l.provider.mu.Lock()
	defer l.provider.mu.Unlock()
	_, _ = io.WriteString(l.provider.out, line.String())
}

func render(value any) string {
	var text string
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		text = v
	case time.Time:
		text = v.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if v == nil {
			return "null"
		}
		text = v.UTC().Format(time.RFC3339Nano)
	case error:
		text = v.Error()
	case fmt.Stringer:
		text = v.String()
	default:
		text = fmt.Sprint(v)
	}
	if text == "" || strings.ContainsAny(text, " =\"\t\n") {
		return strconv.Quote(text)
	}
	return text
}
