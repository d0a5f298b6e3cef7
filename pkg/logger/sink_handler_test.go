package logger_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sentrylog/pkg/logger"
)

type userValue struct{ id string }

func (u userValue) LogValue() slog.Value {
	return slog.GroupValue(slog.String("id", u.id))
}

func TestSinkHandler_BuildsRecord(t *testing.T) {
	t.Parallel()

	c := &collector{}
	log := logger.Named(slog.New(logger.NewSinkHandler(c)), "billing")

	log.With("service", "api").
		WithGroup("req").
		ErrorContext(context.Background(), "charge failed",
			"status", 502,
			slog.Group("peer", "host", "psp.example.com"),
			"user", userValue{id: "u-1"},
		)

	recs := c.Records()
	require.Len(t, recs, 1)
	rec := recs[0]

	assert.Equal(t, "billing", rec.Logger)
	assert.Equal(t, slog.LevelError, rec.Level)
	assert.Equal(t, "charge failed", rec.Message)
	assert.NotZero(t, rec.PC)
	assert.False(t, rec.Time.IsZero())

	attrs := attrMap(rec)
	assert.Equal(t, "api", attrs["service"])
	assert.EqualValues(t, 502, attrs["req.status"])
	assert.Equal(t, "psp.example.com", attrs["req.peer.host"])
	assert.Equal(t, "u-1", attrs["req.user.id"])
	assert.NotContains(t, attrs, "logger")

	_, ok := rec.Snapshot()
	assert.False(t, ok, "the handler never captures ambient context itself")
}

func TestSinkHandler_LoggerNameOnRecord(t *testing.T) {
	t.Parallel()

	c := &collector{}
	log := slog.New(logger.NewSinkHandler(c))
	log.Error("x", "logger", "jobs.mailer")

	assert.Equal(t, "jobs.mailer", c.Records()[0].Logger)
}

func TestSinkHandler_LoggerKeyInsideGroupIsAnAttribute(t *testing.T) {
	t.Parallel()

	c := &collector{}
	log := slog.New(logger.NewSinkHandler(c)).WithGroup("job").With("logger", "nested")
	log.Error("x")

	rec := c.Records()[0]
	assert.Empty(t, rec.Logger)
	assert.Equal(t, "nested", attrMap(rec)["job.logger"])
}

func TestSinkHandler_ExtractsError(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	tests := []struct {
		name string
		args []any
		want string
	}{
		{name: "error value", args: []any{"cause", errBoom}, want: "boom"},
		{name: "error key string", args: []any{"error", "timeout"}, want: "timeout"},
		{name: "err key string", args: []any{"err", "refused"}, want: "refused"},
		{name: "first wins", args: []any{"a", errBoom, "error", "later"}, want: "boom"},
		{name: "none", args: []any{"status", 500}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := &collector{}
			slog.New(logger.NewSinkHandler(c)).Error("x", tt.args...)

			rec := c.Records()[0]
			if tt.want == "" {
				assert.NoError(t, rec.Err)
				return
			}
			require.Error(t, rec.Err)
			assert.Equal(t, tt.want, rec.Err.Error())
		})
	}
}

func TestSinkHandler_ErrorFromHandlerAttrs(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	c := &collector{}
	slog.New(logger.NewSinkHandler(c)).With("error", errBoom).Error("x")

	assert.ErrorIs(t, c.Records()[0].Err, errBoom)
}

func TestSinkHandler_Diagnostics(t *testing.T) {
	t.Parallel()

	type tenantKey struct{}
	tenant := func(ctx context.Context) (slog.Attr, bool) {
		v, ok := ctx.Value(tenantKey{}).(string)
		return slog.String("tenant", v), ok
	}
	attempt := func(context.Context) (slog.Attr, bool) {
		return slog.Int("attempt", 3), true
	}

	c := &collector{}
	log := slog.New(logger.NewSinkHandler(c, logger.WithDiagnostics(tenant, nil, attempt)))

	ctx := context.WithValue(context.Background(), tenantKey{}, "acme")
	log.ErrorContext(ctx, "with tenant")
	log.ErrorContext(context.Background(), "without tenant")

	recs := c.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, map[string]string{"tenant": "acme", "attempt": "3"}, recs[0].Diagnostics)
	assert.Equal(t, map[string]string{"attempt": "3"}, recs[1].Diagnostics)
}

func TestSinkHandler_Level(t *testing.T) {
	t.Parallel()

	c := &collector{}
	log := slog.New(logger.NewSinkHandler(c, logger.WithLevel(slog.LevelWarn)))

	log.Info("dropped")
	log.Warn("kept")

	recs := c.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "kept", recs[0].Message)
}

func TestSinkHandler_ReturnsDeliveryError(t *testing.T) {
	t.Parallel()

	errDeliver := errors.New("deliver")
	h := logger.NewSinkHandler(&collector{err: errDeliver})

	err := h.Handle(context.Background(), slog.NewRecord(testTime, slog.LevelError, "x", 0))
	require.ErrorIs(t, err, errDeliver)
}
