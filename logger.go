package deferred

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that discards all records. Enabled returns
// false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger used by the renderer and the config
// loader. By default nothing is logged. Pass nil to restore silence.
//
// Log levels:
//   - [slog.LevelDebug]: per-pass timings, tile counts, buffer sizes
//   - [slog.LevelInfo]: a frame was rendered
//   - [slog.LevelWarn]: non-fatal oddities such as a light that cannot
//     contribute
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. The config package and the CLI log
// through it as well.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
