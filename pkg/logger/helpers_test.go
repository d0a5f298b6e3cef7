package logger_test

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/sentrylog/pkg/sink"
)

var testTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// collector records delivered sink records.
type collector struct {
	err     error
	records []sink.Record
	mu      sync.Mutex
}

func (c *collector) Deliver(_ context.Context, rec sink.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
	return c.err
}

func (c *collector) Records() []sink.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sink.Record(nil), c.records...)
}

func attrMap(rec sink.Record) map[string]any {
	m := make(map[string]any, len(rec.Attrs))
	for _, a := range rec.Attrs {
		m[a.Key] = a.Value.Any()
	}
	return m
}
