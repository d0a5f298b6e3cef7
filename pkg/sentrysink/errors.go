package sentrysink

import "errors"

// Sentinel errors for the sentrysink package.
var (
	// ErrNilClient is returned when a sink is built without a Sentry client.
	ErrNilClient = errors.New("sentrysink: client is required")

	// ErrInvalidDSN is returned when the DSN cannot be parsed.
	ErrInvalidDSN = errors.New("sentrysink: invalid dsn")

	// ErrUnknownClientFactory is returned for an unregistered client factory name.
	ErrUnknownClientFactory = errors.New("sentrysink: unknown client factory")

	// ErrFlushTimeout is returned by Stop when buffered events were not sent in time.
	ErrFlushTimeout = errors.New("sentrysink: flush timeout")

	// ErrBuildEvent is returned when building an event panicked.
	ErrBuildEvent = errors.New("sentrysink: failed to build event")
)
