package sink_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sentrylog/pkg/ambient"
	"github.com/dmitrymomot/sentrylog/pkg/sink"
)

func TestBase_FilterChain(t *testing.T) {
	t.Parallel()

	t.Run("first non-neutral reply wins", func(t *testing.T) {
		t.Parallel()

		b := sink.NewBase("test")
		var calls []string
		b.AddFilter(sink.FilterFunc(func(sink.Record) sink.Reply {
			calls = append(calls, "neutral")
			return sink.Neutral
		}))
		b.AddFilter(sink.FilterFunc(func(sink.Record) sink.Reply {
			calls = append(calls, "accept")
			return sink.Accept
		}))
		b.AddFilter(sink.FilterFunc(func(sink.Record) sink.Reply {
			calls = append(calls, "deny")
			return sink.Deny
		}))

		assert.Equal(t, sink.Accept, b.Decide(sink.Record{}))
		assert.Equal(t, []string{"neutral", "accept"}, calls)
	})

	t.Run("empty chain is neutral", func(t *testing.T) {
		t.Parallel()

		b := sink.NewBase("test")
		assert.Equal(t, sink.Neutral, b.Decide(sink.Record{}))
	})

	t.Run("nil filter ignored and clear removes all", func(t *testing.T) {
		t.Parallel()

		b := sink.NewBase("test")
		b.AddFilter(nil)
		b.AddFilter(sink.NewDropFilter())
		assert.Len(t, b.Filters(), 1)
		b.ClearFilters()
		assert.Empty(t, b.Filters())
	})
}

func TestBase_Admit(t *testing.T) {
	t.Parallel()

	b := sink.NewBase("test")
	b.AddFilter(sink.NewLevelFilter(slog.LevelWarn))

	assert.False(t, b.Admit(sink.Record{Level: slog.LevelError}), "not started")

	require.NoError(t, b.Start())
	assert.True(t, b.Admit(sink.Record{Level: slog.LevelError}))
	assert.False(t, b.Admit(sink.Record{Level: slog.LevelInfo}))

	require.NoError(t, b.Stop(context.Background()))
	assert.False(t, b.Admit(sink.Record{Level: slog.LevelError}))
}

func TestBase_NameAndStatusLogger(t *testing.T) {
	t.Parallel()

	b := sink.NewBase("first")
	assert.Equal(t, "first", b.Name())
	b.SetName("second")
	assert.Equal(t, "second", b.Name())

	require.NotNil(t, b.StatusLogger())
	l := slog.New(slog.DiscardHandler)
	b.SetStatusLogger(l)
	assert.Same(t, l, b.StatusLogger())
	b.SetStatusLogger(nil)
	assert.Same(t, l, b.StatusLogger())
}

func TestRecord_Snapshot(t *testing.T) {
	t.Parallel()

	plain := sink.Record{Message: "plain"}
	_, ok := plain.Snapshot()
	assert.False(t, ok)

	c := ambient.New()
	c.AddTag("k", "v")
	carrying := plain.WithSnapshot(c.Snapshot())

	snap, ok := carrying.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "v", snap.Tags()["k"])
	assert.Equal(t, "plain", carrying.Message)

	_, ok = plain.Snapshot()
	assert.False(t, ok, "WithSnapshot must not modify the receiver")
}

func TestRecord_SlogRecord(t *testing.T) {
	t.Parallel()

	rec := sink.Record{
		Message: "hello",
		Level:   slog.LevelWarn,
		Attrs:   []slog.Attr{slog.String("a", "1"), slog.Int("b", 2)},
	}

	sr := rec.SlogRecord()
	assert.Equal(t, "hello", sr.Message)
	assert.Equal(t, slog.LevelWarn, sr.Level)
	assert.Equal(t, 2, sr.NumAttrs())
	assert.Nil(t, rec.Source())
}
