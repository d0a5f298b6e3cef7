package logger

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/dmitrymomot/sentrylog/pkg/sink"
)

// LoggerKey is the attribute naming the emitting logger.
// It is consumed by SinkHandler and never reported as a regular attribute.
const LoggerKey = "logger"

// Named returns l with its logger name set.
func Named(l *slog.Logger, name string) *slog.Logger {
	return l.With(slog.String(LoggerKey, name))
}

// SinkHandler turns slog records into sink records and delivers them.
//
// Attributes, LogValuers and the diagnostic map are resolved on the calling
// goroutine, so nothing handed to the sink refers back to caller state.
type SinkHandler struct {
	sink       sink.Deliverer
	level      slog.Leveler
	name       string
	prefix     string
	attrs      []slog.Attr
	extractors []ContextExtractor
}

// SinkHandlerOption configures a SinkHandler.
type SinkHandlerOption func(*SinkHandler)

// WithLevel sets the minimum level the handler accepts. Default is debug,
// leaving thresholds to the sink's filters.
func WithLevel(level slog.Leveler) SinkHandlerOption {
	return func(h *SinkHandler) {
		if level != nil {
			h.level = level
		}
	}
}

// WithDiagnostics sets the extractors building each record's diagnostic map.
func WithDiagnostics(extractors ...ContextExtractor) SinkHandlerOption {
	return func(h *SinkHandler) {
		h.extractors = append(h.extractors, compact(extractors)...)
	}
}

// NewSinkHandler creates a handler delivering to s.
func NewSinkHandler(s sink.Deliverer, opts ...SinkHandlerOption) *SinkHandler {
	h := &SinkHandler{sink: s, level: slog.LevelDebug}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *SinkHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *SinkHandler) Handle(ctx context.Context, r slog.Record) error {
	rec := sink.Record{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Logger:  h.name,
		PC:      r.PC,
		Attrs:   slices.Clip(slices.Clone(h.attrs)),
	}
	for _, a := range h.attrs {
		if rec.Err == nil {
			rec.Err = errorOf(a)
		}
	}
	r.Attrs(func(a slog.Attr) bool {
		if h.prefix == "" && a.Key == LoggerKey {
			rec.Logger = a.Value.Resolve().String()
			return true
		}
		rec.Attrs = flatten(rec.Attrs, h.prefix, a)
		if rec.Err == nil {
			rec.Err = errorOf(a)
		}
		return true
	})
	rec.Diagnostics = h.diagnostics(ctx)

	return h.sink.Deliver(ctx, rec)
}

func (h *SinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := *h
	c.attrs = slices.Clip(slices.Clone(h.attrs))
	for _, a := range attrs {
		if h.prefix == "" && a.Key == LoggerKey {
			c.name = a.Value.Resolve().String()
			continue
		}
		c.attrs = flatten(c.attrs, h.prefix, a)
	}
	return &c
}

func (h *SinkHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

func (h *SinkHandler) diagnostics(ctx context.Context) map[string]string {
	if len(h.extractors) == 0 {
		return nil
	}
	out := make(map[string]string, len(h.extractors))
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok && attr.Key != "" {
			out[attr.Key] = attr.Value.Resolve().String()
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// flatten appends a, resolved, with group prefixes folded into its key.
// Empty attributes and empty groups are skipped, as slog handlers do.
func flatten(dst []slog.Attr, prefix string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	if a.Value.Kind() != slog.KindGroup {
		a.Key = prefix + a.Key
		return append(dst, a)
	}

	group := a.Value.Group()
	if len(group) == 0 {
		return dst
	}
	p := prefix
	if a.Key != "" {
		p = prefix + a.Key + "."
	}
	for _, ga := range group {
		dst = flatten(dst, p, ga)
	}
	return dst
}

// errorOf returns the error carried by a, if any. Besides error-typed
// values, string values under "error" or "err" count.
func errorOf(a slog.Attr) error {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindAny {
		if err, ok := v.Any().(error); ok {
			return err
		}
	}
	key := a.Key
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		key = key[i+1:]
	}
	if (key == "error" || key == "err") && v.Kind() == slog.KindString && v.String() != "" {
		return errors.New(v.String())
	}
	return nil
}

func loggerName(attrs []slog.Attr) (string, bool) {
	name, found := "", false
	for _, a := range attrs {
		if a.Key == LoggerKey {
			name, found = a.Value.Resolve().String(), true
		}
	}
	return name, found
}
