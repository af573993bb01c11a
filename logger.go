package ecs

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingConfig selects the level and encoding of loggers built by NewLogger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	Development bool   `yaml:"development"`
}

// NewLogger builds a zap-backed Logger. Level defaults to info, format to json.
func NewLogger(cfg LoggingConfig) (Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("ecs: logging level: %w", err)
		}
		level = parsed
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableCaller = true
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		zc.Encoding = "json"
	case "console":
		zc.Encoding = "console"
	default:
		return nil, fmt.Errorf("ecs: logging format %q", cfg.Format)
	}

	z, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("ecs: build logger: %w", err)
	}
	return NewZapLogger(z), nil
}

// NewZapLogger adapts a zap logger. Arguments are alternating keys and values.
func NewZapLogger(l *zap.Logger) Logger {
	if l == nil {
		return NopLogger()
	}
	return zapLogger{s: l.Sugar()}
}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger {
	return noopLogger{}
}

type zapLogger struct {
	s *zap.SugaredLogger
}

func (l zapLogger) With(key string, value any) Logger {
	return zapLogger{s: l.s.With(key, value)}
}

func (l zapLogger) Debug(msg string, args ...any) { l.s.Debugw(msg, args...) }
func (l zapLogger) Info(msg string, args ...any)  { l.s.Infow(msg, args...) }
func (l zapLogger) Error(msg string, args ...any) { l.s.Errorw(msg, args...) }

type noopLogger struct{}

func (noopLogger) With(string, any) Logger { return noopLogger{} }
func (noopLogger) Debug(string, ...any)    {}
func (noopLogger) Info(string, ...any)     {}
func (noopLogger) Error(string, ...any)    {}
