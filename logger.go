package rgraph

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/wgpu/hal"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for rgraph and all its sub-packages.
// By default, rgraph produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior. The logger is also forwarded to the wgpu HAL so that
// backend diagnostics share the same sink.
//
// Log levels used by rgraph:
//   - [slog.LevelDebug]: per-frame diagnostics (compiled order, cache creates and updates)
//   - [slog.LevelInfo]: lifecycle events (device opened, pipeline disposed)
//   - [slog.LevelWarn]: non-fatal issues (release of an unknown resource, skipped mip generation)
//
// Example:
//
//	rgraph.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	hal.SetLogger(l)
}

// Logger returns the current logger used by rgraph.
// Sub-packages call this to share one logger configuration.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
