// Package logging builds the zap loggers used by the command line and the
// registration server.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format selects the encoder.
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

type options struct {
	out    io.Writer
	format Format
	fields []zap.Field
}

// Option customises New.
type Option func(*options)

// WithOutput writes log lines to w instead of stderr.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.out = w
		}
	}
}

// WithFormat switches between JSON and console encoding.
func WithFormat(format Format) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithFields attaches fields to every entry.
func WithFields(fields ...zap.Field) Option {
	return func(o *options) {
		o.fields = append(o.fields, fields...)
	}
}

// ParseLevel maps a configured level name to a zap level. An empty name is
// info.
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("logging: unknown level %q", name)
	}
}

// New returns a logger at level writing to stderr unless overridden.
func New(level string, opts ...Option) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := options{out: os.Stderr, format: FormatJSON}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.format {
	case FormatConsole:
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	case FormatJSON, "":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("logging: unknown format %q", cfg.format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(cfg.out), lvl)
	return zap.New(core).With(cfg.fields...), nil
}

// Must is New that panics on error.
func Must(level string, opts ...Option) *zap.Logger {
	logger, err := New(level, opts...)
	if err != nil {
		panic(err)
	}
	return logger
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}
