// Package common provides timing helpers shared by the engine, the CLI and
// the HTTP service.
package common

import (
	"fmt"
	"log/slog"
	"time"
)

// Timer measures one named stage.
type Timer struct {
	start    time.Time
	name     string
	duration time.Duration
	stopped  bool
}

// NewTimer creates a new unnamed timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// NewNamedTimer creates a new timer with the given name.
func NewNamedTimer(name string) *Timer {
	return &Timer{
		name:  name,
		start: time.Now(),
	}
}

// Stop records the elapsed duration and returns it. Later calls return the
// first recorded value.
func (t *Timer) Stop() time.Duration {
	if !t.stopped {
		t.duration = time.Since(t.start)
		t.stopped = true
	}
	return t.duration
}

// Elapsed returns the time since start, or the recorded duration once stopped.
func (t *Timer) Elapsed() time.Duration {
	if t.stopped {
		return t.duration
	}
	return time.Since(t.start)
}

// Duration returns the recorded duration (only valid after Stop()).
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// Name returns the timer name (empty string if unnamed).
func (t *Timer) Name() string {
	return t.name
}

// LogValue lets a timer be passed directly as a slog attribute.
func (t *Timer) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("stage", t.name),
		slog.Duration("elapsed", t.Elapsed()),
	)
}

func (t *Timer) String() string {
	if t.name != "" {
		return fmt.Sprintf("%s: %v", t.name, t.Elapsed())
	}
	return fmt.Sprintf("%v", t.Elapsed())
}
