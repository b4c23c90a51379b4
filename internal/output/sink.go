// Package output provides the status-line sinks the scan cycle writes to.
// A sink is append-only: producers add lines, only the presentation layer
// reads them, and appends from several goroutines never interleave inside a line.
package output

import (
	"sync"

	"github.com/anstrom/nmapcycle/internal/logging"
)

// Sink accepts a line of text and makes it visible.
type Sink interface {
	AddLine(text string)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(text string)

// AddLine calls f(text).
func (f SinkFunc) AddLine(text string) {
	f(text)
}

// Discard is a Sink that drops every line.
var Discard Sink = SinkFunc(func(string) {})

// Tee returns a Sink that appends every line to each of sinks, in order.
func Tee(sinks ...Sink) Sink {
	return teeSink(sinks)
}

type teeSink []Sink

func (t teeSink) AddLine(text string) {
	for _, s := range t {
		s.AddLine(text)
	}
}

// LogSink mirrors status lines into the structured log.
type LogSink struct {
	logger *logging.Logger
}

// NewLogSink creates a LogSink writing through logger.
func NewLogSink(logger *logging.Logger) *LogSink {
	return &LogSink{logger: logger.WithComponent("sink")}
}

// AddLine logs text at info level.
func (s *LogSink) AddLine(text string) {
	s.logger.Info("status", "line", text)
}

// Lines is a concurrency-safe, ordered record of every line appended.
type Lines struct {
	mu    sync.Mutex
	lines []string
}

// AddLine appends text.
func (l *Lines) AddLine(text string) {
	l.mu.Lock()
	l.lines = append(l.lines, text)
	l.mu.Unlock()
}

// Snapshot returns a copy of the lines appended so far.
func (l *Lines) Snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// Len returns the number of lines appended so far.
func (l *Lines) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}
