// Package logger connects log/slog to the reporting pipeline.
//
// It provides:
//   - [ContextHandler], a decorator injecting context-extracted attributes
//     into every record and optionally leaving breadcrumbs in the request's
//     ambient context;
//   - [SinkHandler], which turns slog records into sink records with their
//     attributes and diagnostic map resolved on the calling goroutine;
//   - [Fanout], a multi handler for console plus reporting output;
//   - [New] and [Output] for JSON console logging to stdout or a rotated file;
//   - extractors for chi request ids and OpenTelemetry trace context.
//
// # Logger names
//
// Records are attributed to a logger through the "logger" attribute:
//
//	log := logger.Named(base, "billing")
//	log.ErrorContext(ctx, "charge failed", "error", err)
//
// SinkHandler reads the name instead of reporting it as an attribute, so
// filters can match it against reserved namespaces.
//
// # Diagnostics
//
// Extractors passed with [WithDiagnostics] build a string map per record, the
// request-scoped key/values reported as tags or extras:
//
//	h := logger.NewSinkHandler(pipeline,
//		logger.WithDiagnostics(logger.RequestIDExtractor(), logger.TraceExtractor()),
//	)
package logger
