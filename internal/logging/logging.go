package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lmittmann/tint"

	"github.com/rmitchellscott/halftone/internal/config"
)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(New(os.Stderr, ParseLevel(config.Get("LOG_LEVEL", "info")), colorEnabled()))
}

// New builds a tint-backed structured logger writing to w
func New(w io.Writer, level slog.Level, color bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
		NoColor:    !color,
	}))
}

// SetLogger replaces the package logger
func SetLogger(l *slog.Logger) {
	current.Store(l)
}

// Logger returns the package logger
func Logger() *slog.Logger {
	return current.Load()
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func colorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return config.GetBool("LOG_COLOR", true)
}

func Debug(msg string, args ...any) { Logger().Debug(msg, args...) }
func Info(msg string, args ...any)  { Logger().Info(msg, args...) }
func Warn(msg string, args ...any)  { Logger().Warn(msg, args...) }
func Error(msg string, args ...any) { Logger().Error(msg, args...) }

// DebugWithComponent logs at debug level tagged with a component
func DebugWithComponent(component, msg string, args ...any) {
	logWithComponent(slog.LevelDebug, component, msg, args...)
}

// InfoWithComponent logs at info level tagged with a component
func InfoWithComponent(component, msg string, args ...any) {
	logWithComponent(slog.LevelInfo, component, msg, args...)
}

// WarnWithComponent logs at warn level tagged with a component
func WarnWithComponent(component, msg string, args ...any) {
	logWithComponent(slog.LevelWarn, component, msg, args...)
}

// ErrorWithComponent logs at error level tagged with a component
func ErrorWithComponent(component, msg string, args ...any) {
	logWithComponent(slog.LevelError, component, msg, args...)
}

func logWithComponent(level slog.Level, component, msg string, args ...any) {
	Logger().With("component", component).Log(context.Background(), level, msg, args...)
}
