package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/sentrylog/pkg/ambient"
)

const (
	// DefaultStackSize is the default maximum stack trace size in bytes.
	DefaultStackSize = 4096

	// PanicTag and RouteTag are the ambient tags set on a recovered panic.
	PanicTag = "panic"
	RouteTag = "route"
)

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	StackSize         int  // Max stack trace size (default: 4096)
	DisablePrintStack bool // Disable stack trace in logs
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the maximum stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		if size > 0 {
			cfg.StackSize = size
		}
	}
}

// WithRecoverDisablePrintStack disables including stack trace in logs.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

// Recover returns middleware that turns handler panics into a 500 response
// and an error record on log. The record is logged with the request context,
// so whatever the handler put in the ambient context before panicking is
// reported along with it. The ambient context is also tagged with
// panic=true and, under chi, the matched route pattern.
//
// http.ErrAbortHandler is re-panicked untouched.
func Recover(log *slog.Logger, opts ...RecoverOption) func(http.Handler) http.Handler {
	cfg := &RecoverConfig{
		StackSize: DefaultStackSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rv := recover()
				if rv == nil {
					return
				}
				if err, ok := rv.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rv)
				}

				ctx := r.Context()
				ambient.SetTag(ctx, PanicTag, "true")
				if rc := chi.RouteContext(ctx); rc != nil {
					if pattern := rc.RoutePattern(); pattern != "" {
						ambient.SetTag(ctx, RouteTag, pattern)
					}
				}

				pe := &PanicError{Value: rv}
				attrs := []any{slog.Any("error", pe), slog.String("method", r.Method), slog.String("path", r.URL.Path)}
				if !cfg.DisablePrintStack {
					stack := make([]byte, cfg.StackSize)
					pe.Stack = stack[:runtime.Stack(stack, false)]
					attrs = append(attrs, slog.String("stack", string(pe.Stack)))
				}
				log.ErrorContext(ctx, "panic recovered", attrs...)

				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
