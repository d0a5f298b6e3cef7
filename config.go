package sentrylog

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/sentrylog/pkg/sentrysink"
)

// Config describes a Sentry appender.
type Config struct {
	// DSN is the project connection string. It may carry a
	// stacktrace.app.packages query option.
	DSN         string `yaml:"dsn" env:"SENTRY_DSN"`
	Environment string `yaml:"environment" env:"SENTRY_ENVIRONMENT"`
	Release     string `yaml:"release" env:"SENTRY_RELEASE"`
	ServerName  string `yaml:"server_name" env:"SENTRY_SERVER_NAME"`

	// ClientFactory selects a factory registered with
	// sentrysink.RegisterClientFactory.
	ClientFactory string `yaml:"client_factory" env:"SENTRY_CLIENT_FACTORY" env-default:"default"`

	Tags  map[string]string `yaml:"tags" env:"SENTRY_TAGS"`
	Extra map[string]string `yaml:"extra" env:"SENTRY_EXTRA"`

	// MDCTags lists diagnostic keys reported as tags rather than extras.
	MDCTags []string `yaml:"mdc_tags" env:"SENTRY_MDC_TAGS"`

	// AppPackages is used when the DSN does not carry stacktrace.app.packages.
	AppPackages []string `yaml:"stacktrace_app_packages" env:"SENTRY_STACKTRACE_APP_PACKAGES"`

	// Threshold is the lowest level reported, in slog level syntax.
	Threshold string `yaml:"threshold" env:"SENTRY_THRESHOLD" env-default:"warn"`

	// BreadcrumbThreshold is the lowest level NewLogger records as a breadcrumb.
	BreadcrumbThreshold string `yaml:"breadcrumb_threshold" env:"SENTRY_BREADCRUMB_THRESHOLD" env-default:"info"`

	Async AsyncConfig `yaml:"async" env-prefix:"SENTRY_ASYNC_"`
}

// AsyncConfig sizes the delivery queue. Zero values select the defaults.
type AsyncConfig struct {
	QueueSize int `yaml:"queue_size" env:"QUEUE_SIZE" env-default:"256"`
	// DiscardingThreshold is the remaining capacity at which records below
	// WARN are discarded. Zero or negative selects a fifth of QueueSize.
	DiscardingThreshold int           `yaml:"discarding_threshold" env:"DISCARDING_THRESHOLD"`
	Workers             int           `yaml:"workers" env:"WORKERS" env-default:"1"`
	FlushTimeout        time.Duration `yaml:"flush_timeout" env:"FLUSH_TIMEOUT" env-default:"1s"`
	NeverBlock          bool          `yaml:"never_block" env:"NEVER_BLOCK"`
}

// LoadConfig reads a YAML file and overlays the environment.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML and overlays the environment.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	return cfg, nil
}

// Level parses Threshold. Empty means WARN.
func (c Config) Level() (slog.Level, error) {
	return parseLevel(c.Threshold, slog.LevelWarn)
}

// BreadcrumbLevel parses BreadcrumbThreshold. Empty means INFO.
func (c Config) BreadcrumbLevel() (slog.Level, error) {
	return parseLevel(c.BreadcrumbThreshold, slog.LevelInfo)
}

// Validate reports every problem with c at once.
func (c Config) Validate() error {
	var errs []error
	if c.DSN == "" {
		errs = append(errs, errors.New("dsn is required"))
	} else if _, err := sentrysink.ParseDSN(c.DSN); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, fmt.Errorf("threshold: %w", err))
	}
	if _, err := c.BreadcrumbLevel(); err != nil {
		errs = append(errs, fmt.Errorf("breadcrumb_threshold: %w", err))
	}
	if c.Async.QueueSize < 0 {
		errs = append(errs, fmt.Errorf("async.queue_size must not be negative, got %d", c.Async.QueueSize))
	}
	if c.Async.Workers < 0 {
		errs = append(errs, fmt.Errorf("async.workers must not be negative, got %d", c.Async.Workers))
	}
	if c.Async.FlushTimeout < 0 {
		errs = append(errs, fmt.Errorf("async.flush_timeout must not be negative, got %s", c.Async.FlushTimeout))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (c Config) extras() map[string]any {
	out := make(map[string]any, len(c.Extra))
	for k, v := range c.Extra {
		out[k] = v
	}
	return out
}

func parseLevel(s string, def slog.Level) (slog.Level, error) {
	if s == "" {
		return def, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return def, err
	}
	return l, nil
}
