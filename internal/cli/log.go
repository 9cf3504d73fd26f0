package cli

import (
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. Timestamps are formatted as
// "HH:MM:SS.ms".
func newLogger(w io.Writer, level charmlog.Level) *charmlog.Logger {
	return charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// slogBridge adapts the CLI logger for the library, which logs through
// log/slog. charmbracelet/log implements slog.Handler directly.
func slogBridge(l *charmlog.Logger) *slog.Logger {
	return slog.New(l)
}
