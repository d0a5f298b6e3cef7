// Package sentrylog reports log records to Sentry without losing the request
// context they were logged in.
//
// Request handlers keep user, HTTP request, breadcrumbs, tags and extras in
// an [ambient.Context] carried by their context.Context. When a record is
// logged, the pipeline snapshots that context on the logging goroutine,
// queues the record, and a worker restores the snapshot into its own context
// right before the Sentry event is built. Events therefore describe the
// request that logged them, even though they are sent from elsewhere.
//
// # Usage
//
//	cfg, err := sentrylog.LoadConfig("sentry.yaml")
//	if err != nil {
//		return err
//	}
//	log, app := sentrylog.NewLogger(cfg, logger.Output{}, logger.RequestIDExtractor())
//	defer app.Stop(context.Background())
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestID, ambient.Middleware())
//
// Inside a handler:
//
//	ambient.SetUser(r.Context(), sentry.User{ID: userID})
//	log.ErrorContext(r.Context(), "charge failed", "error", err)
//
// For finer control, [Build] returns an [Appender] whose [Appender.Handler]
// can be combined with any other slog handler.
//
// # Configuration
//
// [Config] is read from YAML with environment overrides (SENTRY_DSN,
// SENTRY_THRESHOLD, SENTRY_ASYNC_QUEUE_SIZE and so on). Only records at or
// above the threshold, WARN by default, are reported. Records from the
// "sentry" logger namespace, including the appender's own diagnostics, are
// never reported.
package sentrylog
