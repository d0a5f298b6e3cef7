package logger

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

// RequestIDExtractor reports the request id set by chi's RequestID middleware
// as "request_id".
func RequestIDExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := middleware.GetReqID(ctx); v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}

// TraceExtractor reports the active OpenTelemetry trace id as "trace_id".
func TraceExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		sc := trace.SpanContextFromContext(ctx)
		if !sc.HasTraceID() {
			return slog.Attr{}, false
		}
		return slog.String("trace_id", sc.TraceID().String()), true
	}
}

// SpanExtractor reports the active OpenTelemetry span id as "span_id".
func SpanExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		sc := trace.SpanContextFromContext(ctx)
		if !sc.HasSpanID() {
			return slog.Attr{}, false
		}
		return slog.String("span_id", sc.SpanID().String()), true
	}
}
