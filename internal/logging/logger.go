// Package logging provides the process-wide structured logger.
//
// All packages obtain their logger through GetLogger or one of the context
// helpers so that level and destination are controlled from one place:
//
//	log := logging.WithAccount(1)
//	log.Info("ledger replayed", "rows", n)
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	logger   *slog.Logger
	loggerMu sync.RWMutex

	// level is shared by every handler built in this package.
	level = new(slog.LevelVar)
)

// ParseLevel converts debug|info|warn|error (case-insensitive) into a slog level.
// An empty string maps to info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Init replaces the global logger with a text logger writing to w at lvl.
func Init(w io.Writer, lvl slog.Level) {
	level.Set(lvl)
	SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// SetLevel changes the level of the package's loggers without replacing
// their destination. Loggers installed with SetLogger keep their own level.
func SetLevel(lvl slog.Level) {
	level.Set(lvl)
}

// Level returns the current level of the package's loggers.
func Level() slog.Level {
	return level.Level()
}

// SetLogger replaces the global logger.
func SetLogger(l *slog.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

// GetLogger returns the global logger, creating a stderr logger at the
// current level on first use.
func GetLogger() *slog.Logger {
	loggerMu.RLock()
	l := logger
	loggerMu.RUnlock()
	if l != nil {
		return l
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return logger
}

// Discard silences the global logger. Useful in tests and benchmarks.
func Discard() {
	SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// WithComponent creates a logger with component/subsystem context.
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithAccount creates a logger with ledger account context.
func WithAccount(id int) *slog.Logger {
	return GetLogger().With("component", "ledger", "account", id)
}

// WithFile creates a logger with database file context.
func WithFile(path string) *slog.Logger {
	return GetLogger().With("component", "database", "file", path)
}
