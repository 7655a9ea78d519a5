package geodraw

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler drops every record. Enabled reports false, so attribute
// values such as solver scripts are never formatted.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr holds the logger shared by every render. The HTTP service
// renders concurrently, so it is swapped atomically.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger routes geodraw's diagnostics to l. Until it is called
// nothing is logged. Pass nil to silence logging again.
//
// Messages are prefixed with the emitting package ("solver:",
// "placement:", "diagram:", "server:", "config:"). Levels:
//   - [slog.LevelDebug]: system size and verdict of each solver check,
//     the SMT command run, placement searches that ran out of rings,
//     render summaries and cache hits
//   - [slog.LevelInfo]: service start, one line per HTTP request, each
//     re-render in watch mode
//   - [slog.LevelWarn]: a label drawn at its clamped position over
//     other marks, filesystem watcher errors
//   - [slog.LevelError]: renders that failed for a reason other than the
//     input (solver crashes, internal errors)
//
// Example:
//
//	geodraw.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the logger installed by SetLogger. The solver,
// placement and diagram packages log through it.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
