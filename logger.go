package sentrylog

import (
	"log/slog"

	"github.com/dmitrymomot/sentrylog/pkg/logger"
)

// NewLogger creates a logger writing JSON to the console and reporting to
// Sentry. Context extractors feed both: console records get the extracted
// attributes, Sentry events get them as diagnostics. Records at or above the
// breadcrumb threshold are also left as breadcrumbs in the request's ambient
// context.
//
// Without a DSN, or if the appender cannot be built, only console logging is
// set up and the returned appender is nil. Stop is safe to call on it either
// way.
func NewLogger(cfg Config, console logger.Output, extractors ...logger.ContextExtractor) (*slog.Logger, *Appender) {
	consoleHandler := logger.NewContextHandler(console.Handler(), extractors...)
	if cfg.DSN == "" {
		return slog.New(consoleHandler), nil
	}

	status := slog.New(consoleHandler)
	app, err := Build(cfg, WithStatusLogger(status), WithDiagnostics(extractors...))
	if err != nil {
		status.Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(consoleHandler), nil
	}

	// Validate has already checked the breadcrumb threshold
	crumbs, _ := cfg.BreadcrumbLevel()
	combined := logger.NewContextHandler(logger.Fanout(consoleHandler, app.Handler())).
		WithBreadcrumbs(crumbs)
	return slog.New(combined), app
}
