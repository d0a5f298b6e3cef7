package sentrylog_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sentrylog"
)

const sampleYAML = `
dsn: https://public@o1.ingest.sentry.io/42?stacktrace.app.packages=github.com/acme
environment: staging
release: v1.2.3
tags:
  region: eu
extra:
  team: payments
mdc_tags: [request_id]
stacktrace_app_packages: [github.com/acme/shop]
threshold: error
async:
  queue_size: 16
  never_block: true
  flush_timeout: 250ms
`

func TestParseConfig(t *testing.T) {
	t.Parallel()

	cfg, err := sentrylog.ParseConfig([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "v1.2.3", cfg.Release)
	assert.Equal(t, map[string]string{"region": "eu"}, cfg.Tags)
	assert.Equal(t, map[string]string{"team": "payments"}, cfg.Extra)
	assert.Equal(t, []string{"request_id"}, cfg.MDCTags)
	assert.Equal(t, []string{"github.com/acme/shop"}, cfg.AppPackages)
	assert.Equal(t, 16, cfg.Async.QueueSize)
	assert.True(t, cfg.Async.NeverBlock)
	assert.Equal(t, 250*time.Millisecond, cfg.Async.FlushTimeout)

	// Defaults for everything left out
	assert.Equal(t, "default", cfg.ClientFactory)
	assert.Equal(t, "info", cfg.BreadcrumbThreshold)
	assert.Equal(t, 1, cfg.Async.Workers)
	assert.Zero(t, cfg.Async.DiscardingThreshold)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, level)
	require.NoError(t, cfg.Validate())
}

func TestParseConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := sentrylog.ParseConfig([]byte("dsn: " + testDSN))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Threshold)
	assert.Equal(t, 256, cfg.Async.QueueSize)
	assert.Equal(t, time.Second, cfg.Async.FlushTimeout)
	assert.False(t, cfg.Async.NeverBlock)
}

func TestParseConfig_EnvOverlay(t *testing.T) {
	t.Setenv("SENTRY_ENVIRONMENT", "production")
	t.Setenv("SENTRY_THRESHOLD", "info")
	t.Setenv("SENTRY_ASYNC_WORKERS", "4")

	cfg, err := sentrylog.ParseConfig([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "info", cfg.Threshold)
	assert.Equal(t, 4, cfg.Async.Workers)
	assert.Equal(t, 16, cfg.Async.QueueSize)
}

func TestParseConfig_Malformed(t *testing.T) {
	t.Parallel()

	_, err := sentrylog.ParseConfig([]byte("tags: [not, a, map]"))
	require.ErrorIs(t, err, sentrylog.ErrLoadConfig)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sentry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := sentrylog.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 16, cfg.Async.QueueSize)
	assert.Equal(t, "default", cfg.ClientFactory)

	_, err = sentrylog.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, sentrylog.ErrLoadConfig)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := sentrylog.Config{DSN: testDSN}

	tests := []struct {
		name    string
		mutate  func(*sentrylog.Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*sentrylog.Config) {}},
		{name: "missing dsn", mutate: func(c *sentrylog.Config) { c.DSN = "" }, wantErr: true},
		{name: "malformed dsn", mutate: func(c *sentrylog.Config) { c.DSN = "not a dsn" }, wantErr: true},
		{name: "bad threshold", mutate: func(c *sentrylog.Config) { c.Threshold = "loud" }, wantErr: true},
		{name: "bad breadcrumb threshold", mutate: func(c *sentrylog.Config) { c.BreadcrumbThreshold = "chatty" }, wantErr: true},
		{name: "numeric threshold", mutate: func(c *sentrylog.Config) { c.Threshold = "ERROR+4" }},
		{name: "negative queue", mutate: func(c *sentrylog.Config) { c.Async.QueueSize = -1 }, wantErr: true},
		{name: "negative workers", mutate: func(c *sentrylog.Config) { c.Async.Workers = -2 }, wantErr: true},
		{name: "negative flush timeout", mutate: func(c *sentrylog.Config) { c.Async.FlushTimeout = -time.Second }, wantErr: true},
		{name: "negative discarding threshold", mutate: func(c *sentrylog.Config) { c.Async.DiscardingThreshold = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, sentrylog.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConfig_LevelDefaults(t *testing.T) {
	t.Parallel()

	var cfg sentrylog.Config
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	crumbs, err := cfg.BreadcrumbLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, crumbs)
}
