package runtime

import (
	"time"

	"github.com/rs/zerolog"
)

// Level mirrors eventloop.LogLevel's ordering so callers can compare
// severities numerically.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is a structured log record. Category names the runtime subsystem
// that produced it: "reactor", "timer", "signal", "job", "gc", "channel".
type Event struct {
	Level     Level
	Category  string
	JobID     uint64
	TimerID   uint64
	Fields    map[string]any
	Message   string
	Err       error
	Timestamp time.Time
}

// Logger is the structured logging interface the Runtime logs through.
// The reactor and vm packages import neither a logging library nor this
// interface; all logging happens in the Runtime.
type Logger interface {
	Log(e Event)
	Enabled(level Level) bool
}

// NoopLogger discards everything. It is the Runtime's default so logging
// calls are safe before a backend is configured.
type NoopLogger struct{}

func (NoopLogger) Log(Event)          {}
func (NoopLogger) Enabled(Level) bool { return false }

// ZerologBackend adapts a zerolog.Logger to the Logger interface.
type ZerologBackend struct {
	log zerolog.Logger
}

// NewZerologBackend wraps an already-configured zerolog.Logger (callers
// control output, sampling, and level filtering through it directly).
func NewZerologBackend(l zerolog.Logger) *ZerologBackend {
	return &ZerologBackend{log: l}
}

func (b *ZerologBackend) Enabled(level Level) bool {
	return b.log.GetLevel() <= zerologLevel(level)
}

func (b *ZerologBackend) Log(e Event) {
	zl := zerologLevel(e.Level)
	if b.log.GetLevel() > zl {
		return
	}
	evt := b.log.WithLevel(zl).Str("category", e.Category)
	if e.JobID != 0 {
		evt = evt.Uint64("job", e.JobID)
	}
	if e.TimerID != 0 {
		evt = evt.Uint64("timer", e.TimerID)
	}
	for k, v := range e.Fields {
		evt = evt.Interface(k, v)
	}
	if e.Err != nil {
		evt = evt.Err(e.Err)
	}
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	evt.Time("ts", ts).Msg(e.Message)
}

func zerologLevel(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// logDebug, logInfo, logWarn, logError are small lazy-evaluation helpers:
// they skip building the Event entirely when the level is disabled, the
// same shortcut eventloop.LogDebug/LogInfo/... take.

func logDebug(l Logger, category, message string, fields map[string]any) {
	if !l.Enabled(LevelDebug) {
		return
	}
	l.Log(Event{Level: LevelDebug, Category: category, Message: message, Fields: fields})
}

func logInfo(l Logger, category, message string, fields map[string]any) {
	if !l.Enabled(LevelInfo) {
		return
	}
	l.Log(Event{Level: LevelInfo, Category: category, Message: message, Fields: fields})
}

func logWarn(l Logger, category, message string, fields map[string]any) {
	if !l.Enabled(LevelWarn) {
		return
	}
	l.Log(Event{Level: LevelWarn, Category: category, Message: message, Fields: fields})
}

func logError(l Logger, category, message string, err error, fields map[string]any) {
	if !l.Enabled(LevelError) {
		return
	}
	l.Log(Event{Level: LevelError, Category: category, Message: message, Err: err, Fields: fields})
}
