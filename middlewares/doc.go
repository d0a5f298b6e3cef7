// Package middlewares provides HTTP middleware that reports through slog.
//
// # Recover
//
// Recover catches handler panics, answers 500 and logs a *PanicError at
// error level with the request context. Wired to a logger backed by the
// Sentry appender, the panic becomes an event carrying the request's user,
// breadcrumbs and tags:
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestID, ambient.Middleware())
//	r.Use(middlewares.Recover(log))
//
// Recover must run inside ambient.Middleware for the context to be there.
package middlewares
