package scrawl

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for scrawl and its sub-packages.
// By default, scrawl produces no log output. Pass nil to restore the
// default silent behavior.
//
// Log levels used by scrawl:
//   - [slog.LevelDebug]: per-render diagnostics (glyph counts, cache hits)
//   - [slog.LevelInfo]: lifecycle events (pool maintenance, quality changes)
//   - [slog.LevelWarn]: non-fatal issues (fallback renders, texture retries)
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. The renderer threads it into the
// texture manager and pool it constructs, so sub-packages share the same
// configuration without import cycles.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
