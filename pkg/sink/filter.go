package sink

import (
	"log/slog"
	"strings"
)

// Reply is a filter decision.
type Reply int

const (
	// Deny drops the record without consulting further filters.
	Deny Reply = iota - 1
	// Neutral defers to the next filter in the chain.
	Neutral
	// Accept admits the record without consulting further filters.
	Accept
)

func (r Reply) String() string {
	switch r {
	case Deny:
		return "deny"
	case Accept:
		return "accept"
	default:
		return "neutral"
	}
}

// Filter decides whether a record reaches a sink.
type Filter interface {
	Decide(rec Record) Reply
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(rec Record) Reply

// Decide calls f(rec).
func (f FilterFunc) Decide(rec Record) Reply {
	return f(rec)
}

// LevelFilter denies records below a threshold.
type LevelFilter struct {
	Threshold slog.Leveler
}

// NewLevelFilter creates a threshold filter.
func NewLevelFilter(threshold slog.Leveler) *LevelFilter {
	return &LevelFilter{Threshold: threshold}
}

// Decide denies records below the threshold.
func (f *LevelFilter) Decide(rec Record) Reply {
	if f.Threshold != nil && rec.Level < f.Threshold.Level() {
		return Deny
	}
	return Neutral
}

// DefaultReservedNamespaces are the logger namespaces owned by the Sentry
// client and by this library's own diagnostics.
var DefaultReservedNamespaces = []string{"sentry", "github.com/getsentry/sentry-go"}

// DropFilter denies records emitted by the error-reporting client itself, so
// its diagnostics ("failed to send event") never loop back into reporting.
type DropFilter struct {
	namespaces []string
}

// NewDropFilter creates a drop filter for the given namespaces.
// With no arguments DefaultReservedNamespaces is used.
func NewDropFilter(namespaces ...string) *DropFilter {
	if len(namespaces) == 0 {
		namespaces = DefaultReservedNamespaces
	}
	return &DropFilter{namespaces: append([]string(nil), namespaces...)}
}

// Decide denies records whose logger lies in a reserved namespace.
// Level and content are never consulted.
func (f *DropFilter) Decide(rec Record) Reply {
	for _, ns := range f.namespaces {
		if InNamespace(rec.Logger, ns) {
			return Deny
		}
	}
	return Neutral
}

// InNamespace reports whether logger name equals ns or is nested under it
// with a "." or "/" separator.
func InNamespace(name, ns string) bool {
	if ns == "" || !strings.HasPrefix(name, ns) {
		return false
	}
	if len(name) == len(ns) {
		return true
	}
	sep := name[len(ns)]
	return sep == '.' || sep == '/'
}
