package sentrysink

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"

	"github.com/dmitrymomot/sentrylog/pkg/ambient"
	"github.com/dmitrymomot/sentrylog/pkg/sink"
)

const (
	// DefaultName is the default sink name.
	DefaultName = "sentry"

	// LastEventIDTag is the tag carrying the correlation id restored from the
	// emitting context.
	LastEventIDTag = "last_event_id"

	defaultFlushTimeout  = 2 * time.Second
	defaultMaxErrorDepth = 10
)

// Hook prepares the worker's ambient context before an event is built.
type Hook func(amb *ambient.Context, rec sink.Record)

// Restore clears amb and, when rec carries a snapshot, restores it.
// Without a snapshot amb stays empty, so no state from a previous event
// leaks into this one.
func Restore(amb *ambient.Context, rec sink.Record) {
	amb.Clear()
	if snap, ok := rec.Snapshot(); ok {
		snap.Restore(amb)
	}
}

// Sink reports records to Sentry as events, enriched with the ambient context
// captured when each record was emitted.
type Sink struct {
	*sink.Base
	hub          *sentry.Hub
	ambient      *ambient.Context
	hook         Hook
	converter    sentryslog.Converter
	replaceAttr  func(groups []string, a slog.Attr) slog.Attr
	tags         map[string]string
	extras       map[string]any
	mdcTags      map[string]struct{}
	appPackages  []string
	flushTimeout time.Duration
	maxErrDepth  int
	mu           sync.Mutex
	addSource    bool
}

// Option configures a Sink.
type Option func(*Sink)

// WithName sets the sink name.
func WithName(name string) Option {
	return func(s *Sink) {
		if name != "" {
			s.SetName(name)
		}
	}
}

// WithTags sets tags attached to every event.
func WithTags(tags map[string]string) Option {
	return func(s *Sink) {
		maps.Copy(s.tags, tags)
	}
}

// WithExtras sets extras attached to every event.
func WithExtras(extras map[string]any) Option {
	return func(s *Sink) {
		maps.Copy(s.extras, extras)
	}
}

// WithMDCTags promotes the named diagnostic keys to tags.
// Other diagnostic keys are reported as extras.
func WithMDCTags(keys ...string) Option {
	return func(s *Sink) {
		for _, k := range keys {
			s.mdcTags[k] = struct{}{}
		}
	}
}

// WithAppPackages marks stack frames from these package prefixes as in-app.
func WithAppPackages(prefixes ...string) Option {
	return func(s *Sink) {
		s.appPackages = append(s.appPackages, prefixes...)
	}
}

// WithConverter replaces the slog-to-event conversion.
func WithConverter(c sentryslog.Converter) Option {
	return func(s *Sink) {
		if c != nil {
			s.converter = c
		}
	}
}

// WithReplaceAttr rewrites attributes before conversion.
func WithReplaceAttr(fn func(groups []string, a slog.Attr) slog.Attr) Option {
	return func(s *Sink) {
		s.replaceAttr = fn
	}
}

// WithAddSource includes the call site in events.
func WithAddSource(v bool) Option {
	return func(s *Sink) {
		s.addSource = v
	}
}

// WithHook replaces the restore step run before each event is built.
func WithHook(h Hook) Option {
	return func(s *Sink) {
		if h != nil {
			s.hook = h
		}
	}
}

// WithFlushTimeout bounds how long Stop waits for buffered events.
func WithFlushTimeout(d time.Duration) Option {
	return func(s *Sink) {
		if d > 0 {
			s.flushTimeout = d
		}
	}
}

// WithAmbientOptions configures the worker's ambient context.
func WithAmbientOptions(opts ...ambient.Option) Option {
	return func(s *Sink) {
		s.ambient = ambient.New(opts...)
	}
}

// New creates a sink reporting through client on a dedicated hub.
// The sink is not started.
func New(client *sentry.Client, opts ...Option) (*Sink, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	s := &Sink{
		Base:         sink.NewBase(DefaultName),
		hub:          sentry.NewHub(client, sentry.NewScope()),
		ambient:      ambient.New(),
		hook:         Restore,
		converter:    sentryslog.DefaultConverter,
		tags:         make(map[string]string),
		extras:       make(map[string]any),
		mdcTags:      make(map[string]struct{}),
		flushTimeout: defaultFlushTimeout,
		maxErrDepth:  defaultMaxErrorDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Hub returns the hub events are captured on.
func (s *Sink) Hub() *sentry.Hub {
	return s.hub
}

// Ambient returns the worker-scoped ambient context. It reflects the record
// most recently delivered.
func (s *Sink) Ambient() *ambient.Context {
	return s.ambient
}

// Deliver restores the record's ambient context and reports it.
// Clearing, restoring and building happen under one lock, so concurrent
// deliveries never observe each other's context.
func (s *Sink) Deliver(_ context.Context, rec sink.Record) (err error) {
	if !s.Admit(rec) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrBuildEvent, r)
		}
	}()

	s.hook(s.ambient, rec)

	event := s.buildEvent(rec)
	if event == nil {
		return nil
	}
	if id := s.hub.CaptureEvent(event); id != nil {
		s.ambient.SetLastEventID(*id)
	}
	return nil
}

// Stop stops accepting records and flushes buffered events within the ctx
// deadline or the flush timeout.
func (s *Sink) Stop(ctx context.Context) error {
	_ = s.Base.Stop(ctx)

	timeout := s.flushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 || !s.hub.Flush(timeout) {
		return ErrFlushTimeout
	}
	return nil
}
