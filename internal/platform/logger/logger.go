// Package logger es el logger estructurado del servidor y de la CLI.
// Campos como map, salida text (logfmt) o json, una línea por entrada.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return FormatJSON
	}
	return FormatText
}

type Logger interface {
	With(fields map[string]any) Logger

	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// sink es lo compartido entre un logger y sus derivados de With.
type sink struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	format Format
	now    func() time.Time
}

// StdLogger escribe a un io.Writer sin deps externas.
type StdLogger struct {
	sink *sink
	base map[string]any
}

type Options struct {
	Level  Level
	Format Format
	App    string
	// Output default: os.Stdout. La CLI usa os.Stderr para no mezclarse con el chat.
	Output io.Writer
	// Now default: time.Now
	Now    func() time.Time
}

func New(opts Options) Logger {
	s := &sink{
		out:    opts.Output,
		level:  opts.Level,
		format: opts.Format,
		now:    opts.Now,
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.format == "" {
		s.format = FormatText
	}
	if s.now == nil {
		s.now = time.Now
	}

	base := map[string]any{}
	if app := strings.TrimSpace(opts.App); app != "" {
		base["app"] = app
	}
	return &StdLogger{sink: s, base: base}
}

// NewFromEnv crea logger desde env:
// - LOG_LEVEL=debug|info|warn|error (default info)
// - LOG_FORMAT=text|json (default text)
// - APP_NAME (default pet-companion-chat)
func NewFromEnv() Logger {
	app := os.Getenv("APP_NAME")
	if strings.TrimSpace(app) == "" {
		app = "pet-companion-chat"
	}
	return New(Options{
		Level:  ParseLevel(os.Getenv("LOG_LEVEL")),
		Format: ParseFormat(os.Getenv("LOG_FORMAT")),
		App:    app,
	})
}

// Nop descarta todo. Útil en tests y como default cuando no se inyecta logger.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (n nopLogger) With(map[string]any) Logger { return n }
func (nopLogger) Debug(string, map[string]any)  {}
func (nopLogger) Info(string, map[string]any)   {}
func (nopLogger) Warn(string, map[string]any)   {}
func (nopLogger) Error(string, map[string]any)  {}

// OrNop devuelve l, o Nop si l es nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}

func (l *StdLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	return &StdLogger{sink: l.sink, base: merge(l.base, fields)}
}

func (l *StdLogger) Debug(msg string, fields map[string]any) { l.log(Debug, msg, fields) }
func (l *StdLogger) Info(msg string, fields map[string]any)  { l.log(Info, msg, fields) }
func (l *StdLogger) Warn(msg string, fields map[string]any)  { l.log(Warn, msg, fields) }
func (l *StdLogger) Error(msg string, fields map[string]any) { l.log(Error, msg, fields) }

func (l *StdLogger) log(lvl Level, msg string, fields map[string]any) {
	s := l.sink
	if lvl < s.level {
		return
	}

	entry := merge(l.base, fields)
	entry["ts"] = s.now().UTC().Format(time.RFC3339Nano)
	entry["level"] = lvl.String()
	entry["msg"] = msg

	var line string
	switch s.format {
	case FormatJSON:
		b, err := json.Marshal(entry)
		if err != nil {
			b, _ = json.Marshal(map[string]any{"level": lvl.String(), "msg": msg, "log_error": err.Error()})
		}
		line = string(b)
	default:
		line = formatText(entry)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.out, line+"\n")
}

// merge copia base y fields; los valores se llevan a formas que serializan bien.
func merge(base, fields map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(fields)+3)
	for k, v := range base {
		out[k] = v
	}
	for k, v := range fields {
		if strings.TrimSpace(k) == "" {
			continue
		}
		out[k] = normalize(v)
	}
	return out
}

func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case error:
		return x.Error()
	case time.Duration:
		return x.String()
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	}
	return v
}

// formatText arma una línea logfmt: ts, level y msg primero, el resto ordenado.
func formatText(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k == "ts" || k == "level" || k == "msg" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	keys = append([]string{"ts", "level", "msg"}, keys...)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+textValue(m[k]))
	}
	return strings.Join(parts, " ")
}

func textValue(v any) string {
	s := fmt.Sprintf("%v", v)
	if v == nil {
		s = "null"
	}
	if s == "" || strings.ContainsAny(s, " =\"\t\n") {
		return strconv.Quote(s)
	}
	return s
}
