// Package logging builds the structured logger shared by the scheduler packages.
//
// Code logs through logr; zap is the sink. Verbosity follows logr conventions:
// logger.V(DEBUG) is zap's debug level, logger.V(TRACE) one level below it.
package logging

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels for logger.V().
const (
	DEBUG = 1
	TRACE = 2
)

var (
	mu     sync.RWMutex
	global = logr.Discard()
)

// Log returns the process-wide fallback logger.
func Log() logr.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// SetLogger replaces the process-wide fallback logger.
func SetLogger(l logr.Logger) {
	mu.Lock()
	defer mu.Unlock()
	global = l
}

// FromContext returns the logger stored in ctx, or the fallback logger.
func FromContext(ctx context.Context) logr.Logger {
	if l, err := logr.FromContext(ctx); err == nil {
		return l
	}
	return Log()
}

// IntoContext returns a copy of ctx carrying l.
func IntoContext(ctx context.Context, l logr.Logger) context.Context {
	return logr.NewContext(ctx, l)
}

// NewLogger builds a zap-backed logr.Logger. level is one of trace, debug, info, warn, error;
// format is json or console. The returned zap.Logger should be synced on shutdown.
func NewLogger(level, format string) (logr.Logger, *zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	switch strings.ToLower(format) {
	case "", "json":
		zapCfg.Encoding = "json"
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.Encoding = "console"
	default:
		return logr.Discard(), nil, fmt.Errorf("unsupported log format: %q", format)
	}

	lvl, err := parseLevel(level)
	if err != nil {
		return logr.Discard(), nil, err
	}
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := zapCfg.Build()
	if err != nil {
		return logr.Discard(), nil, fmt.Errorf("building zap logger: %w", err)
	}
	return zapr.NewLogger(z), z, nil
}

// NewTestLogger installs a debug-level console logger as the fallback logger.
func NewTestLogger() logr.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(os.Stderr),
		zapcore.Level(-TRACE),
	)
	z := zap.New(core)
	l := zapr.NewLogger(z)
	SetLogger(l)
	return l
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "":
		return zapcore.InfoLevel, nil
	case "trace":
		return zapcore.Level(-TRACE), nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("unsupported log level %q: %w", level, err)
	}
	return lvl, nil
}
