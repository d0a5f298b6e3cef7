package sentrylog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/dmitrymomot/sentrylog/pkg/health"
	"github.com/dmitrymomot/sentrylog/pkg/logger"
	"github.com/dmitrymomot/sentrylog/pkg/sentrysink"
	"github.com/dmitrymomot/sentrylog/pkg/sink"
)

// StatusLoggerName names the logger used for the appender's own diagnostics.
const StatusLoggerName = "sentry.sentrylog"

// Appender is an assembled reporting pipeline:
//
//	context capture -> delivery queue -> filters -> Sentry sink
//
// Context capture runs on the goroutine emitting the record. Everything after
// the queue runs on its workers.
type Appender struct {
	pipeline   sink.Sink
	async      *sink.Async
	reporter   *sentrysink.Sink
	client     *sentry.Client
	extractors []logger.ContextExtractor
	threshold  slog.Level
}

// Build validates cfg, assembles the pipeline and starts it.
func Build(cfg Config, opts ...Option) (*Appender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	dsn, err := sentrysink.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	factory, err := sentrysink.LookupClientFactory(cfg.ClientFactory)
	if err != nil {
		return nil, err
	}

	clientOpts := sentry.ClientOptions{
		Dsn:         dsn.URL,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		ServerName:  cfg.ServerName,
	}
	for _, fn := range o.clientOpts {
		fn(&clientOpts)
	}
	client, err := factory(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateClient, err)
	}

	appPackages := cfg.AppPackages
	if dsn.HasAppPackages {
		appPackages = dsn.AppPackages
	}

	reporter, err := sentrysink.New(client, append([]sentrysink.Option{
		sentrysink.WithTags(cfg.Tags),
		sentrysink.WithExtras(cfg.extras()),
		sentrysink.WithMDCTags(cfg.MDCTags...),
		sentrysink.WithAppPackages(appPackages...),
	}, o.sinkOpts...)...)
	if err != nil {
		return nil, err
	}

	// Validate has already checked the threshold
	threshold, _ := cfg.Level()
	status := logger.Named(o.status, StatusLoggerName)

	reporter.SetStatusLogger(status)
	reporter.AddFilter(sink.NewLevelFilter(threshold))
	for _, f := range o.filters {
		reporter.AddFilter(f)
	}
	reporter.AddFilter(sink.NewDropFilter())

	async, err := sink.NewAsync(reporter, asyncOptions(cfg.Async, o)...)
	if err != nil {
		return nil, err
	}

	// Records from the reserved namespaces are dropped before they are
	// queued, so a full queue can never block on its own diagnostics.
	pipeline := sink.CaptureContext(async)
	pipeline.SetStatusLogger(status)
	pipeline.AddFilter(sink.NewDropFilter())

	a := &Appender{
		pipeline:   pipeline,
		async:      async,
		reporter:   reporter,
		client:     client,
		extractors: o.extractors,
		threshold:  threshold,
	}
	if err := a.Start(); err != nil {
		return nil, err
	}
	if o.bindCurrent {
		sentry.CurrentHub().BindClient(client)
	}

	status.Debug("sentry appender started",
		slog.String("environment", cfg.Environment),
		slog.String("threshold", threshold.String()),
	)
	return a, nil
}

func asyncOptions(cfg AsyncConfig, o options) []sink.AsyncOption {
	opts := []sink.AsyncOption{
		sink.WithWorkers(cfg.Workers),
		sink.WithFlushTimeout(cfg.FlushTimeout),
		sink.WithNeverBlock(cfg.NeverBlock),
		sink.WithRegisterer(o.registerer),
	}
	if cfg.QueueSize > 0 {
		opts = append(opts, sink.WithQueueSize(cfg.QueueSize))
	}
	if cfg.DiscardingThreshold > 0 {
		opts = append(opts, sink.WithDiscardingThreshold(cfg.DiscardingThreshold))
	}
	return opts
}

// Sink returns the entry point of the pipeline.
func (a *Appender) Sink() sink.Sink {
	return a.pipeline
}

// Reporter returns the Sentry sink at the end of the pipeline.
func (a *Appender) Reporter() *sentrysink.Sink {
	return a.reporter
}

// Client returns the Sentry client events are sent with.
func (a *Appender) Client() *sentry.Client {
	return a.client
}

// Handler returns a slog handler feeding the pipeline. It is enabled from the
// configured threshold up and builds diagnostics with the extractors given
// to Build.
func (a *Appender) Handler(opts ...logger.SinkHandlerOption) *logger.SinkHandler {
	return logger.NewSinkHandler(a.pipeline, append([]logger.SinkHandlerOption{
		logger.WithLevel(a.threshold),
		logger.WithDiagnostics(a.extractors...),
	}, opts...)...)
}

// Start starts the pipeline. Starting a running appender is a no-op.
func (a *Appender) Start() error {
	return a.pipeline.Start()
}

// Stop drains the queue and flushes buffered events within ctx.
// A nil appender stops successfully.
func (a *Appender) Stop(ctx context.Context) error {
	if a == nil {
		return nil
	}
	return a.pipeline.Stop(ctx)
}

// Healthcheck returns a check reporting whether the pipeline accepts records.
func (a *Appender) Healthcheck() health.CheckFunc {
	return func(context.Context) error {
		if a == nil || !a.pipeline.Started() {
			return ErrNotStarted
		}
		return nil
	}
}
