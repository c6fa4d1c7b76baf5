package lsysviz

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record, Enabled returning false lets callers skip
// formatting altogether.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger used by lsysviz and its sub-packages.
// Nothing is logged by default, pass nil to go back to that.
//
// Levels used:
//   - [slog.LevelDebug]: per-generation timings, per-frame details
//   - [slog.LevelInfo]: lifecycle events (worker started, snapshot written)
//   - [slog.LevelWarn]: dropped commands, non-fatal render failures
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
