package sentrylog

import (
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/sentrylog/pkg/logger"
	"github.com/dmitrymomot/sentrylog/pkg/sentrysink"
	"github.com/dmitrymomot/sentrylog/pkg/sink"
)

// Option configures Build.
type Option func(*options)

type options struct {
	status      *slog.Logger
	registerer  prometheus.Registerer
	filters     []sink.Filter
	clientOpts  []func(*sentry.ClientOptions)
	sinkOpts    []sentrysink.Option
	extractors  []logger.ContextExtractor
	bindCurrent bool
}

func defaultOptions() options {
	return options{
		status:      logger.NewNope(),
		bindCurrent: true,
	}
}

// WithStatusLogger sets the logger for the appender's own diagnostics.
// Messages are attributed to the "sentry.sentrylog" logger, which the drop
// filter keeps out of the reporting pipeline.
func WithStatusLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.status = l
		}
	}
}

// WithFilter adds filters evaluated after the level threshold and before the
// drop filter.
func WithFilter(filters ...sink.Filter) Option {
	return func(o *options) {
		for _, f := range filters {
			if f != nil {
				o.filters = append(o.filters, f)
			}
		}
	}
}

// WithClientOptions adjusts the sentry.ClientOptions passed to the client factory.
func WithClientOptions(fn func(*sentry.ClientOptions)) Option {
	return func(o *options) {
		if fn != nil {
			o.clientOpts = append(o.clientOpts, fn)
		}
	}
}

// WithSinkOptions passes options to the Sentry sink after those derived
// from Config.
func WithSinkOptions(opts ...sentrysink.Option) Option {
	return func(o *options) {
		o.sinkOpts = append(o.sinkOpts, opts...)
	}
}

// WithRegisterer registers delivery queue metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithDiagnostics sets the extractors building each record's diagnostic map.
func WithDiagnostics(extractors ...logger.ContextExtractor) Option {
	return func(o *options) {
		o.extractors = append(o.extractors, extractors...)
	}
}

// WithoutCurrentHub keeps the client off sentry.CurrentHub.
// By default Build binds it there, so direct sentry.Capture* calls share it.
func WithoutCurrentHub() Option {
	return func(o *options) {
		o.bindCurrent = false
	}
}
