package sentrylog_test

import (
	"context"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
)

// memTransport keeps events in memory instead of sending them.
type memTransport struct {
	events []*sentry.Event
	mu     sync.Mutex
}

func (t *memTransport) Configure(sentry.ClientOptions)       {}
func (t *memTransport) Flush(time.Duration) bool             { return true }
func (t *memTransport) FlushWithContext(context.Context) bool { return true }
func (t *memTransport) Close()                               {}

func (t *memTransport) SendEvent(event *sentry.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

func (t *memTransport) Events() []*sentry.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*sentry.Event(nil), t.events...)
}

func (t *memTransport) Messages() []string {
	var out []string
	for _, e := range t.Events() {
		out = append(out, e.Message)
	}
	return out
}

const testDSN = "https://public@o1.ingest.sentry.io/42"
