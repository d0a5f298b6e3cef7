package sink

import "errors"

// Sentinel errors for the sink package.
var (
	// ErrNilSink is returned when a wrapper is built around a nil sink.
	ErrNilSink = errors.New("sink: inner sink is required")

	// ErrInvalidQueueSize is returned for a negative queue size.
	ErrInvalidQueueSize = errors.New("sink: queue size must not be negative")

	// ErrFlushTimeout is returned by Stop when the queue did not drain in time.
	ErrFlushTimeout = errors.New("sink: flush timeout")
)
