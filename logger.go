package ttyrender

import (
	"log/slog"

	"github.com/gogpu/ttyrender/internal/rlog"
)

// SetLogger configures the logger for ttyrender and all its sub-packages.
// By default, ttyrender produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by ttyrender:
//   - [slog.LevelDebug]: device limits
//   - [slog.LevelInfo]: adapter selection, periodic atlas occupancy reports
//   - [slog.LevelWarn]: per-frame transient failures, glyph upload failures,
//     atlas eviction telemetry
//
// Example:
//
//	// Enable info-level logging to stderr:
//	ttyrender.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	ttyrender.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	rlog.Set(l)
}

// Logger returns the current logger used by ttyrender.
// Sub-packages (atlas, glyph, stage, gpu) read the same logger through
// internal/rlog, so they share this configuration without importing the
// root package.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return rlog.Get()
}
