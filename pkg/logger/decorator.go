package logger

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/dmitrymomot/sentrylog/pkg/ambient"
)

// ContextExtractor extracts a slog attribute from context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// ContextHandler wraps a slog.Handler, injecting context-extracted attributes
// on every call. Optionally it also leaves a breadcrumb in the ambient context
// for each handled record, so later error reports show what led up to them.
type ContextHandler struct {
	next        slog.Handler
	breadcrumbs slog.Leveler
	name        string
	extractors  []ContextExtractor
	grouped     bool
}

// NewContextHandler creates a handler delegating to next. Nil extractors are dropped.
func NewContextHandler(next slog.Handler, extractors ...ContextExtractor) *ContextHandler {
	return &ContextHandler{next: next, extractors: compact(extractors)}
}

// WithBreadcrumbs returns a copy that records a breadcrumb for every record at
// or above level. The breadcrumb is added after the record is handled, so a
// report never lists its own record as a breadcrumb.
func (h *ContextHandler) WithBreadcrumbs(level slog.Leveler) *ContextHandler {
	c := *h
	c.breadcrumbs = level
	return &c
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	err := h.next.Handle(ctx, rec)

	if h.breadcrumbs != nil && rec.Level >= h.breadcrumbs.Level() {
		ambient.AddBreadcrumb(ctx, h.breadcrumb(rec))
	}
	return err
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.next = h.next.WithAttrs(attrs)
	if name, ok := loggerName(attrs); ok && !h.grouped {
		c.name = name
	}
	return &c
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.next = h.next.WithGroup(name)
	c.grouped = c.grouped || name != ""
	return &c
}

func (h *ContextHandler) breadcrumb(rec slog.Record) *sentry.Breadcrumb {
	category := h.name
	if category == "" {
		category = "log"
	}
	b := &sentry.Breadcrumb{
		Type:      "default",
		Category:  category,
		Message:   rec.Message,
		Level:     sentryLevel(rec.Level),
		Timestamp: rec.Time,
	}
	if rec.NumAttrs() > 0 {
		b.Data = make(map[string]any, rec.NumAttrs())
		rec.Attrs(func(a slog.Attr) bool {
			b.Data[a.Key] = a.Value.Resolve().Any()
			return true
		})
	}
	return b
}

func sentryLevel(l slog.Level) sentry.Level {
	switch {
	case l >= slog.LevelError:
		return sentry.LevelError
	case l >= slog.LevelWarn:
		return sentry.LevelWarning
	case l >= slog.LevelInfo:
		return sentry.LevelInfo
	default:
		return sentry.LevelDebug
	}
}

func compact(extractors []ContextExtractor) []ContextExtractor {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	return clean
}
