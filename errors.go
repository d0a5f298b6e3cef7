package sentrylog

import "errors"

var (
	ErrInvalidConfig = errors.New("sentrylog: invalid configuration")
	ErrLoadConfig    = errors.New("sentrylog: failed to load configuration")
	ErrCreateClient  = errors.New("sentrylog: failed to create sentry client")
	ErrNotStarted    = errors.New("sentrylog: appender is not running")
)
