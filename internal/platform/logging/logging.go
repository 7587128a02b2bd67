// Package logging builds the zap loggers shared by service commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported log encodings.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config selects level and encoding.
type Config struct {
	Level  string `env:"ROOMALERTS_LOG_LEVEL" envDefault:"info"`
	Format string `env:"ROOMALERTS_LOG_FORMAT" envDefault:"json"`
}

// New builds a logger writing to stderr.
func New(cfg Config, service string) (*zap.Logger, error) {
	return NewWithWriter(cfg, service, os.Stderr)
}

// NewWithWriter builds a logger writing to w.
func NewWithWriter(cfg Config, service string, w io.Writer) (*zap.Logger, error) {
	if w == nil {
		return nil, fmt.Errorf("log writer is required")
	}
	level, err := zapcore.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	encoder, err := newEncoder(cfg.Format)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), zap.NewAtomicLevelAt(level))
	logger := zap.New(core, zap.AddCaller())
	if service = strings.TrimSpace(service); service != "" {
		logger = logger.With(zap.String("service", service))
	}
	return logger, nil
}

func newEncoder(format string) (zapcore.Encoder, error) {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		return zapcore.NewJSONEncoder(cfg), nil
	case FormatConsole:
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}
}
