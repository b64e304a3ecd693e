// Package logging builds the zap loggers used by the fedgraph binary and logs
// event bus traffic through them.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	// Level is a zap level name such as "debug" or "warn". Empty means info.
	Level string
	// Format is "json" or "console". Empty means console.
	Format string
	// File, when set, also writes json lines to a size-rotated file.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// Development adds callers and stack traces to warnings.
	Development bool
}

// New builds a logger writing to stderr and, optionally, to cfg.File.
func New(cfg Config) (*zap.Logger, error) {
	return newLogger(cfg, zapcore.Lock(os.Stderr))
}

func newLogger(cfg Config, console zapcore.WriteSyncer) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		l, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = l
	}
	atom := zap.NewAtomicLevelAt(level)

	encCfg := zap.NewProductionEncoderConfig()
	if cfg.Development {
		encCfg = zap.NewDevelopmentEncoderConfig()
	}
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339Nano)

	var enc zapcore.Encoder
	switch cfg.Format {
	case "", "console":
		encCfg.ConsoleSeparator = " "
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("log format %q: want json or console", cfg.Format)
	}

	cores := []zapcore.Core{zapcore.NewCore(enc, console, atom)}
	if cfg.File != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotating(cfg)),
			atom,
		))
	}

	var opts []zap.Option
	if cfg.Development {
		opts = append(opts, zap.AddCaller(), zap.AddStacktrace(zap.WarnLevel))
	}
	return zap.New(zapcore.NewTee(cores...), opts...), nil
}

func rotating(cfg Config) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
}
