package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Level represents the severity level of a log message.
type Level int

// Log levels
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a case-insensitive level name.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, errors.Errorf("unknown log level %q", s)
	}
}

func (l Level) toZerolog() zerolog.Level {
	switch l {
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Context keys
const (
	ComponentKey = "component"
	ErrorKey     = "error"
)

// Field is a single structured key/value pair.
type Field struct {
	Key   string
	Value any
}

// Str creates a string field.
func Str(key, value string) Field { return Field{Key: key, Value: value} }

// Int creates an int field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Any creates a field holding an arbitrary value.
func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// Err creates an error field.
func Err(err error) Field { return Field{Key: ErrorKey, Value: err} }

// Component tags a logger with the emitting component.
func Component(name string) Field { return Field{Key: ComponentKey, Value: name} }

// Logger defines the core logging interface for relay components.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger carrying fields on every entry.
	With(fields ...Field) Logger
	// WithComponent tags logs with a component name.
	WithComponent(component string) Logger
	// WithError attaches err to every entry of the child logger.
	WithError(err error) Logger

	GetLevel() Level
}

// LoggerOption is a function that configures a logger.
type LoggerOption func(*options)

type options struct {
	level  Level
	format Format
	writer io.Writer
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) LoggerOption {
	return func(o *options) { o.level = level }
}

// WithFormat selects text or JSON output.
func WithFormat(format Format) LoggerOption {
	return func(o *options) { o.format = format }
}

// WithWriter sets the destination. Defaults to os.Stderr.
func WithWriter(w io.Writer) LoggerOption {
	return func(o *options) { o.writer = w }
}

// BaseLogger implements Logger on top of zerolog.
type BaseLogger struct {
	zl    zerolog.Logger
	level Level
}

// NewLogger creates a new logger with the given options.
func NewLogger(opts ...LoggerOption) Logger {
	o := options{level: InfoLevel, format: FormatText, writer: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}
	w := o.writer
	if o.format != FormatJSON {
		w = zerolog.ConsoleWriter{Out: o.writer, TimeFormat: time.RFC3339, NoColor: true}
	}
	zl := zerolog.New(w).Level(o.level.toZerolog()).With().Timestamp().Logger()
	return &BaseLogger{zl: zl, level: o.level}
}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return &BaseLogger{zl: zerolog.Nop(), level: ErrorLevel}
}

func (l *BaseLogger) Debug(msg string, fields ...Field) { l.write(l.zl.Debug(), msg, fields) }
func (l *BaseLogger) Info(msg string, fields ...Field)  { l.write(l.zl.Info(), msg, fields) }
func (l *BaseLogger) Warn(msg string, fields ...Field)  { l.write(l.zl.Warn(), msg, fields) }
func (l *BaseLogger) Error(msg string, fields ...Field) { l.write(l.zl.Error(), msg, fields) }

func (l *BaseLogger) write(ev *zerolog.Event, msg string, fields []Field) {
	if ev == nil {
		return
	}
	for _, f := range fields {
		ev = appendField(ev, f)
	}
	ev.Msg(msg)
}

func appendField(ev *zerolog.Event, f Field) *zerolog.Event {
	switch v := f.Value.(type) {
	case string:
		return ev.Str(f.Key, v)
	case int:
		return ev.Int(f.Key, v)
	case error:
		return ev.AnErr(f.Key, v)
	default:
		return ev.Interface(f.Key, v)
	}
}

// With adds fields to a child logger.
func (l *BaseLogger) With(fields ...Field) Logger {
	ctx := l.zl.With()
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			ctx = ctx.Str(f.Key, v)
		case int:
			ctx = ctx.Int(f.Key, v)
		case error:
			ctx = ctx.AnErr(f.Key, v)
		default:
			ctx = ctx.Interface(f.Key, v)
		}
	}
	return &BaseLogger{zl: ctx.Logger(), level: l.level}
}

func (l *BaseLogger) WithComponent(component string) Logger {
	return l.With(Component(component))
}

func (l *BaseLogger) WithError(err error) Logger {
	return l.With(Err(err))
}

func (l *BaseLogger) GetLevel() Level { return l.level }
