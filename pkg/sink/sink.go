package sink

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Lifecycle starts and stops a sink.
type Lifecycle interface {
	Start() error
	Stop(ctx context.Context) error
	Started() bool
}

// Configurable exposes a sink's name, status logger and filter chain.
type Configurable interface {
	Name() string
	SetName(name string)
	SetStatusLogger(l *slog.Logger)
	StatusLogger() *slog.Logger
	AddFilter(f Filter)
	ClearFilters()
	Filters() []Filter
	Decide(rec Record) Reply
}

// Deliverer accepts records.
type Deliverer interface {
	Deliver(ctx context.Context, rec Record) error
}

// Sink is a destination for log records.
type Sink interface {
	Lifecycle
	Configurable
	Deliverer
}

// Base implements Lifecycle and Configurable.
// Concrete sinks embed it and implement Deliver, calling Admit first.
type Base struct {
	status  *slog.Logger
	name    string
	filters []Filter
	mu      sync.RWMutex
	started atomic.Bool
}

// NewBase creates a Base with the given name and a discarding status logger.
func NewBase(name string) *Base {
	return &Base{
		name:   name,
		status: slog.New(slog.DiscardHandler),
	}
}

func (b *Base) Name() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.name
}

func (b *Base) SetName(name string) {
	b.mu.Lock()
	b.name = name
	b.mu.Unlock()
}

// SetStatusLogger sets the logger for the sink's own diagnostics. Nil is ignored.
func (b *Base) SetStatusLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	b.mu.Lock()
	b.status = l
	b.mu.Unlock()
}

func (b *Base) StatusLogger() *slog.Logger {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

// AddFilter appends f to the chain. Nil is ignored.
func (b *Base) AddFilter(f Filter) {
	if f == nil {
		return
	}
	b.mu.Lock()
	b.filters = append(b.filters, f)
	b.mu.Unlock()
}

func (b *Base) ClearFilters() {
	b.mu.Lock()
	b.filters = nil
	b.mu.Unlock()
}

// Filters returns a copy of the chain.
func (b *Base) Filters() []Filter {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Filter(nil), b.filters...)
}

// Decide runs the chain in order; the first non-neutral reply wins.
func (b *Base) Decide(rec Record) Reply {
	b.mu.RLock()
	filters := b.filters
	b.mu.RUnlock()

	for _, f := range filters {
		if r := f.Decide(rec); r != Neutral {
			return r
		}
	}
	return Neutral
}

func (b *Base) Start() error {
	b.started.Store(true)
	return nil
}

func (b *Base) Stop(context.Context) error {
	b.started.Store(false)
	return nil
}

func (b *Base) Started() bool {
	return b.started.Load()
}

// Admit reports whether rec should be processed: the sink is started and the
// chain does not deny it.
func (b *Base) Admit(rec Record) bool {
	return b.Started() && b.Decide(rec) != Deny
}
