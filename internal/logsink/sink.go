// Package logsink provides the leveled log capability injected into every
// pipeline stage, plus the queue-backed console used by the interactive side.
package logsink

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Level is the severity of a log entry.
type Level int

const (
	Info Level = iota
	Warning
	Error
)

// String returns the lower-case level name.
func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// MarshalText lets levels serialize as their names in JSON payloads.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText parses a level name written by MarshalText.
func (l *Level) UnmarshalText(text []byte) error {
	switch string(text) {
	case "info":
		*l = Info
	case "warning":
		*l = Warning
	case "error":
		*l = Error
	default:
		return fmt.Errorf("unknown log level %q", text)
	}
	return nil
}

// Sink receives log entries from pipeline stages.
// Implementations must be safe for concurrent use.
type Sink interface {
	Emit(level Level, msg string)
}

// Infof formats and emits an Info entry.
func Infof(s Sink, format string, args ...any) { s.Emit(Info, fmt.Sprintf(format, args...)) }

// Warnf formats and emits a Warning entry.
func Warnf(s Sink, format string, args ...any) { s.Emit(Warning, fmt.Sprintf(format, args...)) }

// Errorf formats and emits an Error entry.
func Errorf(s Sink, format string, args ...any) { s.Emit(Error, fmt.Sprintf(format, args...)) }

type discard struct{}

func (discard) Emit(Level, string) {}

// Discard drops every entry.
var Discard Sink = discard{}

// Slog forwards entries to a structured logger.
type Slog struct {
	logger *slog.Logger
	attrs  []any
}

// NewSlog returns a sink writing to logger. A nil logger means slog.Default().
func NewSlog(logger *slog.Logger, attrs ...any) *Slog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slog{logger: logger, attrs: attrs}
}

func (s *Slog) Emit(level Level, msg string) {
	lvl := slog.LevelInfo
	switch level {
	case Warning:
		lvl = slog.LevelWarn
	case Error:
		lvl = slog.LevelError
	}
	s.logger.Log(context.Background(), lvl, msg, s.attrs...)
}

type tee []Sink

func (t tee) Emit(level Level, msg string) {
	for _, s := range t {
		s.Emit(level, msg)
	}
}

// Tee fans every entry out to all non-nil sinks.
func Tee(sinks ...Sink) Sink {
	out := make(tee, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Counter wraps a sink and counts entries per level.
type Counter struct {
	next   Sink
	mu     sync.Mutex
	counts [3]int
}

// NewCounter returns a counting sink forwarding to next (may be nil).
func NewCounter(next Sink) *Counter {
	if next == nil {
		next = Discard
	}
	return &Counter{next: next}
}

func (c *Counter) Emit(level Level, msg string) {
	c.mu.Lock()
	if level >= Info && level <= Error {
		c.counts[level]++
	}
	c.mu.Unlock()
	c.next.Emit(level, msg)
}

// Count returns how many entries of the given level were seen.
func (c *Counter) Count(level Level) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if level < Info || level > Error {
		return 0
	}
	return c.counts[level]
}
