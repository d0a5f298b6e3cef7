// Package sink defines log record destinations and the plumbing between them.
//
// A [Sink] has three capabilities: lifecycle (Start, Stop), configuration
// (name, status logger, filter chain) and delivery. [Base] implements the
// first two; concrete sinks embed it and implement Deliver.
//
// # Wrapping
//
// [Intercept] decorates a sink by rewriting records on their way into Deliver
// while forwarding everything else unchanged. [CaptureContext] is the
// interceptor that attaches an [ambient.Snapshot] taken from the caller's
// context, turning a plain [Record] into a context-carrying one:
//
//	async, _ := sink.NewAsync(sentrySink, sink.WithQueueSize(512))
//	pipeline := sink.CaptureContext(async)
//	pipeline.AddFilter(sink.NewDropFilter())
//
// # Asynchronous delivery
//
// [Async] hands records to worker goroutines through a bounded channel.
// Overflow follows the classic async-appender rules: records under WARN are
// discarded once remaining capacity reaches the discarding threshold, and a
// full queue either blocks the caller or drops the record (NeverBlock).
// Queue activity is exported as Prometheus counters.
//
// # Filters
//
// Filters return [Deny], [Neutral] or [Accept]; the first non-neutral reply
// wins. [LevelFilter] enforces a threshold and [DropFilter] silences the
// error-reporting client's own loggers.
package sink
