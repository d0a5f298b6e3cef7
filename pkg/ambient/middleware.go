package ambient

import (
	"net/http"

	"github.com/getsentry/sentry-go"
)

// MiddlewareConfig configures the ambient context middleware.
type MiddlewareConfig struct {
	// Options applied to every per-request Context.
	ContextOptions []Option
	// Breadcrumb records a "http" breadcrumb for the incoming request when true.
	Breadcrumb bool
}

// MiddlewareOption configures MiddlewareConfig.
type MiddlewareOption func(*MiddlewareConfig)

// WithContextOptions sets options for the per-request Context.
func WithContextOptions(opts ...Option) MiddlewareOption {
	return func(cfg *MiddlewareConfig) {
		cfg.ContextOptions = append(cfg.ContextOptions, opts...)
	}
}

// WithRequestBreadcrumb records a breadcrumb for every incoming request.
func WithRequestBreadcrumb() MiddlewareOption {
	return func(cfg *MiddlewareConfig) {
		cfg.Breadcrumb = true
	}
}

// Middleware returns net/http middleware that attaches a fresh Context to
// every request and records the request on it.
// The signature matches chi's Use.
func Middleware(opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &MiddlewareConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// An outer middleware may already own a context for this request
			if FromContext(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}

			c := New(cfg.ContextOptions...)
			c.SetRequest(r)
			if cfg.Breadcrumb {
				c.RecordBreadcrumb(&sentry.Breadcrumb{
					Type:     "http",
					Category: "request",
					Data: map[string]any{
						"method": r.Method,
						"url":    r.URL.Path,
					},
					Level: sentry.LevelInfo,
				})
			}

			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), c)))
		})
	}
}
