package sink

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/dmitrymomot/sentrylog/pkg/ambient"
)

// Record is a log record as seen by sinks.
// It is either plain or context-carrying; see [Record.Snapshot].
// Records are values: sinks must treat them as read-only.
type Record struct {
	Time    time.Time
	Err     error
	Message string
	// Logger is the name of the emitting logger, empty if unnamed.
	Logger string
	// Attrs holds handler and record attributes with group prefixes applied.
	Attrs []slog.Attr
	// Diagnostics is the request-scoped key/value map extracted from the
	// emitting context.
	Diagnostics map[string]string
	snapshot    *ambient.Snapshot
	PC          uintptr
	Level       slog.Level
}

// Snapshot returns the ambient context captured for this record, if any.
func (r Record) Snapshot() (ambient.Snapshot, bool) {
	if r.snapshot == nil {
		return ambient.Snapshot{}, false
	}
	return *r.snapshot, true
}

// WithSnapshot returns a context-carrying copy of r.
func (r Record) WithSnapshot(s ambient.Snapshot) Record {
	r.snapshot = &s
	return r
}

// Source returns the call site, or nil when PC is unset.
func (r Record) Source() *slog.Source {
	if r.PC == 0 {
		return nil
	}
	frames := runtime.CallersFrames([]uintptr{r.PC})
	f, _ := frames.Next()
	return &slog.Source{Function: f.Function, File: f.File, Line: f.Line}
}

// SlogRecord rebuilds a slog.Record carrying the message, level, time, PC
// and flattened attributes.
func (r Record) SlogRecord() slog.Record {
	rec := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	rec.AddAttrs(r.Attrs...)
	return rec
}
