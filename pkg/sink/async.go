package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultQueueSize is the default delivery queue capacity.
	DefaultQueueSize = 256
	// DefaultFlushTimeout bounds how long Stop waits for the queue to drain.
	DefaultFlushTimeout = time.Second
)

// AsyncConfig controls the asynchronous sink.
type AsyncConfig struct {
	Registerer prometheus.Registerer
	// QueueSize is the channel capacity. Zero makes hand-off synchronous.
	QueueSize int
	// DiscardingThreshold: when remaining capacity drops to this value or
	// below, records under WARN are discarded. Negative means QueueSize/5,
	// zero disables discarding.
	DiscardingThreshold int
	// Workers is the number of delivery goroutines. One keeps FIFO order.
	Workers      int
	FlushTimeout time.Duration
	// NeverBlock drops records instead of blocking when the queue is full.
	NeverBlock bool
}

// AsyncOption configures AsyncConfig.
type AsyncOption func(*AsyncConfig)

// WithQueueSize sets the queue capacity.
func WithQueueSize(n int) AsyncOption {
	return func(cfg *AsyncConfig) {
		cfg.QueueSize = n
	}
}

// WithDiscardingThreshold sets the remaining-capacity mark below which
// records under WARN are discarded.
func WithDiscardingThreshold(n int) AsyncOption {
	return func(cfg *AsyncConfig) {
		cfg.DiscardingThreshold = n
	}
}

// WithNeverBlock drops records when the queue is full instead of blocking the caller.
func WithNeverBlock(v bool) AsyncOption {
	return func(cfg *AsyncConfig) {
		cfg.NeverBlock = v
	}
}

// WithWorkers sets the number of delivery goroutines. Values below 1 are ignored.
func WithWorkers(n int) AsyncOption {
	return func(cfg *AsyncConfig) {
		if n > 0 {
			cfg.Workers = n
		}
	}
}

// WithFlushTimeout limits how long Stop waits for workers to drain the queue.
func WithFlushTimeout(d time.Duration) AsyncOption {
	return func(cfg *AsyncConfig) {
		if d > 0 {
			cfg.FlushTimeout = d
		}
	}
}

// WithRegisterer registers queue metrics with reg.
func WithRegisterer(reg prometheus.Registerer) AsyncOption {
	return func(cfg *AsyncConfig) {
		cfg.Registerer = reg
	}
}

// Async queues records on a bounded channel and delivers them to an inner
// sink from worker goroutines. Deliver never reports inner sink errors back
// to the caller.
type Async struct {
	*Base
	inner   Sink
	metrics *asyncMetrics
	queue   chan Record
	cfg     AsyncConfig
	wg      sync.WaitGroup
	// queueMu guards queue and closed against concurrent Stop.
	queueMu   sync.RWMutex
	lifecycle sync.Mutex
	closed    bool
}

// NewAsync wraps inner with an asynchronous queue.
// The returned sink is not started.
func NewAsync(inner Sink, opts ...AsyncOption) (*Async, error) {
	if inner == nil {
		return nil, ErrNilSink
	}

	cfg := AsyncConfig{
		QueueSize:           DefaultQueueSize,
		DiscardingThreshold: -1,
		Workers:             1,
		FlushTimeout:        DefaultFlushTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.QueueSize < 0 {
		return nil, ErrInvalidQueueSize
	}
	if cfg.DiscardingThreshold < 0 {
		cfg.DiscardingThreshold = cfg.QueueSize / 5
	}

	a := &Async{
		Base:   NewBase(inner.Name() + ".async"),
		inner:  inner,
		cfg:    cfg,
		closed: true,
	}
	a.metrics = newAsyncMetrics(inner.Name(), a.depth)
	if err := a.metrics.register(cfg.Registerer); err != nil {
		return nil, err
	}
	return a, nil
}

// Inner returns the wrapped sink.
func (a *Async) Inner() Sink {
	return a.inner
}

// Start starts the inner sink if needed and spawns the workers.
func (a *Async) Start() error {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	if a.Started() {
		return nil
	}
	if !a.inner.Started() {
		if err := a.inner.Start(); err != nil {
			return fmt.Errorf("starting %s: %w", a.inner.Name(), err)
		}
	}

	queue := make(chan Record, a.cfg.QueueSize)
	a.queueMu.Lock()
	a.queue = queue
	a.closed = false
	a.queueMu.Unlock()

	// Records are delivered on a context detached from any request.
	ctx := context.Background()
	a.wg.Add(a.cfg.Workers)
	for range a.cfg.Workers {
		go a.work(ctx, queue)
	}

	return a.Base.Start()
}

// Deliver queues rec. It blocks only when the queue is full and NeverBlock
// is off.
func (a *Async) Deliver(_ context.Context, rec Record) error {
	if !a.Started() {
		a.metrics.dropped.WithLabelValues(DropReasonStopped).Inc()
		return nil
	}
	if a.Decide(rec) == Deny {
		a.metrics.dropped.WithLabelValues(DropReasonDenied).Inc()
		return nil
	}

	a.queueMu.RLock()
	defer a.queueMu.RUnlock()

	if a.closed {
		a.metrics.dropped.WithLabelValues(DropReasonStopped).Inc()
		return nil
	}

	if a.discardable(rec) {
		a.metrics.dropped.WithLabelValues(DropReasonDiscarded).Inc()
		return nil
	}

	if a.cfg.NeverBlock {
		select {
		case a.queue <- rec:
			a.metrics.enqueued.Inc()
		default:
			a.metrics.dropped.WithLabelValues(DropReasonFull).Inc()
		}
		return nil
	}

	a.queue <- rec
	a.metrics.enqueued.Inc()
	return nil
}

// Stop closes the queue, waits for the workers to drain it and stops the
// inner sink. It returns ErrFlushTimeout if draining took longer than the
// flush timeout or the ctx deadline.
func (a *Async) Stop(ctx context.Context) error {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	if !a.Started() {
		return nil
	}
	_ = a.Base.Stop(ctx)

	a.queueMu.Lock()
	a.closed = true
	close(a.queue)
	a.queueMu.Unlock()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(a.cfg.FlushTimeout)
	defer timer.Stop()

	var flushErr error
	select {
	case <-done:
	case <-timer.C:
		flushErr = ErrFlushTimeout
	case <-ctx.Done():
		flushErr = fmt.Errorf("%w: %w", ErrFlushTimeout, ctx.Err())
	}
	if flushErr != nil {
		a.StatusLogger().Warn("delivery queue not drained before stop",
			slog.String("sink", a.inner.Name()),
			slog.Int("pending", len(a.queue)),
		)
	}

	return errors.Join(flushErr, a.inner.Stop(ctx))
}

func (a *Async) discardable(rec Record) bool {
	if a.cfg.DiscardingThreshold <= 0 || rec.Level >= slog.LevelWarn {
		return false
	}
	return cap(a.queue)-len(a.queue) <= a.cfg.DiscardingThreshold
}

func (a *Async) depth() float64 {
	a.queueMu.RLock()
	defer a.queueMu.RUnlock()
	return float64(len(a.queue))
}

func (a *Async) work(ctx context.Context, queue <-chan Record) {
	defer a.wg.Done()
	for rec := range queue {
		a.deliver(ctx, rec)
	}
}

func (a *Async) deliver(ctx context.Context, rec Record) {
	defer func() {
		if r := recover(); r != nil {
			a.metrics.failed.Inc()
			a.StatusLogger().Error("recovered panic from sink",
				slog.String("sink", a.inner.Name()),
				slog.Any("panic", r),
			)
		}
	}()

	if err := a.inner.Deliver(ctx, rec); err != nil {
		a.metrics.failed.Inc()
		a.StatusLogger().Error("sink delivery failed",
			slog.String("sink", a.inner.Name()),
			slog.String("error", err.Error()),
		)
		return
	}
	a.metrics.delivered.Inc()
}
