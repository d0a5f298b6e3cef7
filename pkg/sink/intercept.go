package sink

import (
	"context"

	"github.com/dmitrymomot/sentrylog/pkg/ambient"
)

// Interceptor transforms a record before delivery.
type Interceptor func(ctx context.Context, rec Record) Record

// intercepted forwards every operation to the embedded sink and rewrites
// records on the way into Deliver.
type intercepted struct {
	Sink
	intercept Interceptor
}

// Intercept wraps inner so that every record passes through fn before
// delivery. All other operations go straight to inner. The wrapper does not
// buffer, reorder or drop records.
func Intercept(inner Sink, fn Interceptor) Sink {
	return &intercepted{Sink: inner, intercept: fn}
}

func (s *intercepted) Deliver(ctx context.Context, rec Record) error {
	return s.Sink.Deliver(ctx, s.intercept(ctx, rec))
}

// Unwrap returns the wrapped sink.
func (s *intercepted) Unwrap() Sink {
	return s.Sink
}

// CaptureContext wraps inner so that each record carries a snapshot of the
// ambient context found in the delivering ctx. It must sit in front of any
// asynchronous hop: capture happens on the caller's goroutine.
func CaptureContext(inner Sink) Sink {
	return Intercept(inner, captureAmbient)
}

func captureAmbient(ctx context.Context, rec Record) Record {
	if _, ok := rec.Snapshot(); ok {
		return rec
	}
	return rec.WithSnapshot(ambient.Capture(ctx))
}
