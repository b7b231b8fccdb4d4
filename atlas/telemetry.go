package atlas

import (
	"log/slog"

	"github.com/gogpu/ttyrender/internal/rlog"
)

// EvictionRecord describes one eviction event. It carries the same fields
// the original renderer's debug log recorded for evict_one_page, so a log
// consumer sees the same eviction story regardless of which implementation
// produced it.
type EvictionRecord struct {
	Layer      int
	UsedArea   int
	Capacity   int
	Occupancy  float64 // UsedArea/Capacity, in [0, 1]
	Policy     EvictionPolicy
	Inserts    uint64
	Misses     uint64
	Evictions  uint64
	FrameCount uint64
}

// logEviction emits a structured warn-level record for one eviction.
func logEviction(r EvictionRecord) {
	rlog.Get().Warn("atlas: page evicted",
		slog.Int("layer", r.Layer),
		slog.Int("used_area", r.UsedArea),
		slog.Int("capacity", r.Capacity),
		slog.Float64("occupancy", r.Occupancy),
		slog.String("policy", r.Policy.String()),
		slog.Uint64("inserts", r.Inserts),
		slog.Uint64("misses", r.Misses),
		slog.Uint64("evictions", r.Evictions),
		slog.Uint64("frame", r.FrameCount),
	)
}

// ReportStats is the periodic occupancy summary logged every
// atlas_report_interval_frames when that config value is non-zero (see
// Array.Tick).
type ReportStats struct {
	Pages     []PageStats
	Policy    EvictionPolicy
	Inserts   uint64
	Misses    uint64
	Evictions uint64
}

// PageStats summarizes a single page's occupancy for reporting.
type PageStats struct {
	Layer     int
	UsedArea  int
	Capacity  int
	Occupancy float64
	LastUse   uint64
}

func logReport(s ReportStats, frame uint64) {
	l := rlog.Get()
	for _, p := range s.Pages {
		l.Info("atlas: periodic report",
			slog.Uint64("frame", frame),
			slog.Int("layer", p.Layer),
			slog.Int("used_area", p.UsedArea),
			slog.Int("capacity", p.Capacity),
			slog.Float64("occupancy", p.Occupancy),
			slog.Uint64("last_use", p.LastUse),
			slog.String("policy", s.Policy.String()),
			slog.Uint64("inserts", s.Inserts),
			slog.Uint64("misses", s.Misses),
			slog.Uint64("evictions", s.Evictions),
		)
	}
}
