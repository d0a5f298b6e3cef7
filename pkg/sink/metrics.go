package sink

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Drop reasons reported on the dropped counter.
const (
	DropReasonFull      = "full"
	DropReasonDiscarded = "discarded"
	DropReasonStopped   = "stopped"
	DropReasonDenied    = "denied"
)

type asyncMetrics struct {
	enqueued  prometheus.Counter
	delivered prometheus.Counter
	failed    prometheus.Counter
	dropped   *prometheus.CounterVec
	depth     prometheus.GaugeFunc
}

func newAsyncMetrics(name string, depth func() float64) *asyncMetrics {
	labels := prometheus.Labels{"sink": name}
	m := &asyncMetrics{
		enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "sentrylog",
			Subsystem:   "async",
			Name:        "enqueued_total",
			Help:        "Records accepted into the delivery queue.",
			ConstLabels: labels,
		}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "sentrylog",
			Subsystem:   "async",
			Name:        "delivered_total",
			Help:        "Records handed to the inner sink without error.",
			ConstLabels: labels,
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "sentrylog",
			Subsystem:   "async",
			Name:        "failed_total",
			Help:        "Records the inner sink rejected with an error or panic.",
			ConstLabels: labels,
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "sentrylog",
			Subsystem:   "async",
			Name:        "dropped_total",
			Help:        "Records dropped before reaching the queue.",
			ConstLabels: labels,
		}, []string{"reason"}),
		depth: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   "sentrylog",
			Subsystem:   "async",
			Name:        "queue_depth",
			Help:        "Records currently waiting in the delivery queue.",
			ConstLabels: labels,
		}, depth),
	}
	return m
}

func (m *asyncMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.enqueued, m.delivered, m.failed, m.dropped, m.depth}
}

// register adds every collector to reg. Collectors already registered with
// the same descriptor are accepted.
func (m *asyncMetrics) register(reg prometheus.Registerer) error {
	if reg == nil {
		return nil
	}
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return fmt.Errorf("registering async metrics: %w", err)
		}
	}
	return nil
}
