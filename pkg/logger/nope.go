package logger

import "log/slog"

// NewNope creates a logger that discards everything.
// Build uses it as the status logger until one is configured.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
