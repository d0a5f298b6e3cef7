// Package ambient holds per-request diagnostic context for error reports.
//
// A [Context] carries the user, HTTP request, breadcrumb trail, last event id,
// tags and extras of one logical operation. It travels explicitly inside a
// context.Context rather than living in goroutine-local state:
//
//	r.Use(ambient.Middleware())
//
//	func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
//		ambient.SetUser(r.Context(), sentry.User{ID: userID})
//		ambient.AddBreadcrumb(r.Context(), &sentry.Breadcrumb{Message: "cart loaded"})
//		log.ErrorContext(r.Context(), "payment failed", "error", err)
//	}
//
// # Snapshots
//
// [Capture] takes an immutable [Snapshot] of the context in ctx. A snapshot can
// cross goroutines freely and later be written into another Context with
// [Snapshot.Restore]; breadcrumbs are replayed in their original order and
// tags and extras are merged key by key.
package ambient
