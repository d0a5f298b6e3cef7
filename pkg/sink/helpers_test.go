package sink_test

import (
	"context"
	"sync"

	"github.com/dmitrymomot/sentrylog/pkg/sink"
)

// recordingSink collects admitted records.
type recordingSink struct {
	*sink.Base
	block   chan struct{}
	err     error
	records []sink.Record
	mu      sync.Mutex
}

func newRecordingSink(name string) *recordingSink {
	return &recordingSink{Base: sink.NewBase(name)}
}

func (s *recordingSink) Deliver(_ context.Context, rec sink.Record) error {
	if !s.Admit(rec) {
		return nil
	}
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return s.err
}

func (s *recordingSink) Records() []sink.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sink.Record(nil), s.records...)
}

func (s *recordingSink) Messages() []string {
	var out []string
	for _, r := range s.Records() {
		out = append(out, r.Message)
	}
	return out
}
