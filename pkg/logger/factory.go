package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Output configures the console side of logging.
type Output struct {
	// File enables writing to a size-rotated file instead of stdout.
	File       string `yaml:"file" env:"LOG_FILE"`
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS" env-default:"3"`
	MaxAgeDays int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS" env-default:"28"`
	Compress   bool   `yaml:"compress" env:"LOG_COMPRESS"`
}

// Writer returns stdout, or a rotating file writer when File is set.
func (o Output) Writer() io.Writer {
	if o.File == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   o.File,
		MaxSize:    o.MaxSizeMB,
		MaxBackups: o.MaxBackups,
		MaxAge:     o.MaxAgeDays,
		Compress:   o.Compress,
	}
}

// Leveler parses Level, falling back to info.
func (o Output) Leveler() slog.Level {
	var l slog.Level
	if o.Level == "" || l.UnmarshalText([]byte(o.Level)) != nil {
		return slog.LevelInfo
	}
	return l
}

// Handler returns a JSON handler writing to o.
func (o Output) Handler() slog.Handler {
	return slog.NewJSONHandler(o.Writer(), &slog.HandlerOptions{Level: o.Leveler()})
}

// New creates a JSON console logger with optional context extractors.
func New(out Output, extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewContextHandler(out.Handler(), extractors...))
}
