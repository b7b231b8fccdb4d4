// Package rlog holds the process-wide logger shared by ttyrender's root
// package and its atlas/glyph/stage/gpu sub-packages. Factoring it into its
// own leaf package lets every package call Get() without introducing an
// import cycle back into the root package, the same way integration/ggcanvas
// avoided importing gg directly in the teacher repo.
package rlog

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var ptr atomic.Pointer[slog.Logger]

func init() {
	ptr.Store(newNopLogger())
}

// Set installs the logger used by every ttyrender package. Pass nil to
// restore the silent default.
func Set(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	ptr.Store(l)
}

// Get returns the current shared logger. Safe for concurrent use.
func Get() *slog.Logger {
	return ptr.Load()
}
