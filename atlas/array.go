package atlas

// EvictionPolicy selects which page is sacrificed when every page in an
// Array rejects an insert. The zero value is RoundRobin; Array callers
// should use LruMinOccupancy explicitly if that is what they want, since
// DefaultConfig resolves the default (mirroring config/debug.rs, whose
// Rust default is LruMinOccupancy, not the zero value of the enum).
type EvictionPolicy int

const (
	// RoundRobin evicts (current+1) mod N regardless of usage.
	RoundRobin EvictionPolicy = iota
	// LruMinOccupancy evicts the least-recently-used page, breaking ties
	// by smallest occupancy.
	LruMinOccupancy
)

func (p EvictionPolicy) String() string {
	switch p {
	case RoundRobin:
		return "round-robin"
	case LruMinOccupancy:
		return "lru-min-occupancy"
	default:
		return "unknown"
	}
}

// Array is a fixed-count sequence of Pages sharing one size, with LRU
// bookkeeping, an eviction policy, and a deferred-by-one-frame eviction
// protocol.
//
// Array is not safe for concurrent use; it is designed to be mutated only
// from the thread that owns the render loop, matching the single-threaded
// cooperative scheduling model of the Compositor that owns it.
type Array struct {
	pages   []*Page
	lastUse []uint64

	currentPage int
	useClock    uint64

	policy           EvictionPolicy
	pendingEviction  *int
	atlasEvicted     bool
	zeroEvictedLayer bool

	inserts      uint64
	insertMisses uint64
	evictions    uint64

	reportInterval uint64
	frameCount     uint64

	zeroer LayerZeroer

	lastEvicted      int
	lastEvictedValid bool
}

// LayerZeroer cosmetically zero-fills an evicted GPU texture layer. It is
// invoked by EvictOnePage only when zeroEvictedLayer is true; a nil Array
// field (the default) skips the zero-fill entirely, matching
// zero_evicted_layer's default of false.
type LayerZeroer interface {
	ZeroLayer(layer int) error
}

// NewArray creates an Array of n pages, each pageSize x pageSize, using the
// given eviction policy. n must be at least 1.
func NewArray(n, pageSize int, policy EvictionPolicy) *Array {
	pages := make([]*Page, n)
	for i := range pages {
		pages[i] = NewPage(pageSize, pageSize)
	}
	return &Array{
		pages:   pages,
		lastUse: make([]uint64, n),
		policy:  policy,
	}
}

// SetZeroEvictedLayer enables or disables the cosmetic zero-fill of an
// evicted page's GPU texture layer on eviction.
func (a *Array) SetZeroEvictedLayer(zero bool, zeroer LayerZeroer) {
	a.zeroEvictedLayer = zero
	a.zeroer = zeroer
}

// SetReportInterval configures the periodic stats report cadence, in
// frames; 0 disables reporting. See Tick.
func (a *Array) SetReportInterval(frames uint64) {
	a.reportInterval = frames
}

// N returns the number of pages in the array.
func (a *Array) N() int { return len(a.pages) }

// Page returns the page at the given layer index.
func (a *Array) Page(layer int) *Page { return a.pages[layer] }

// Policy returns the configured eviction policy.
func (a *Array) Policy() EvictionPolicy { return a.policy }

// TryInsert probes pages starting at the current page, modulo N, and
// inserts into the first one that accepts a w x h rectangle.
//
// On success it returns the chosen layer and position, advances the use
// clock, records it as the page's last use, and sets the current page to
// the one that accepted the insert.
//
// On failure (no page accepts the insert) it schedules an eviction — see
// markEvictionPending — increments insertMisses, and returns miss=true.
// The caller is expected to treat this as a placeholder glyph.
func (a *Array) TryInsert(w, h int) (layer, x, y int, miss bool) {
	n := len(a.pages)
	for i := range n {
		idx := (a.currentPage + i) % n
		if px, py, ok := a.pages[idx].Insert(w, h); ok {
			a.useClock++
			a.lastUse[idx] = a.useClock
			a.currentPage = idx
			a.inserts++
			return idx, px, py, false
		}
	}

	a.insertMisses++
	a.markEvictionPending(w, h)
	return 0, 0, 0, true
}

// markEvictionPending schedules a page for eviction on a miss, unless the
// requested size could never fit on any page regardless of eviction (w or
// h larger than a page's dimensions) — in that case no eviction is
// scheduled, since clearing a page would not make the glyph placeable.
//
// If an eviction is already pending, the new candidate is discarded: the
// original source's evict_one_page only computes and stores a victim when
// none is already pending for the current frame, never overwriting one
// pending candidate with a later one computed in the same frame.
func (a *Array) markEvictionPending(w, h int) {
	if a.pendingEviction != nil {
		return
	}
	if w > a.pageSize() || h > a.pageSize() {
		// Genuinely unplaceable: no eviction would ever make room.
		return
	}
	victim := a.selectVictim()
	a.pendingEviction = &victim
	a.atlasEvicted = true
}

func (a *Array) pageSize() int {
	if len(a.pages) == 0 {
		return 0
	}
	return a.pages[0].Width()
}

// selectVictim picks the page to evict under the configured policy.
func (a *Array) selectVictim() int {
	switch a.policy {
	case RoundRobin:
		return (a.currentPage + 1) % len(a.pages)
	default: // LruMinOccupancy
		victim := 0
		for i := 1; i < len(a.pages); i++ {
			if a.lastUse[i] < a.lastUse[victim] {
				victim = i
			} else if a.lastUse[i] == a.lastUse[victim] && a.pages[i].UsedArea() < a.pages[victim].UsedArea() {
				victim = i
			}
		}
		return victim
	}
}

// TakeAtlasEvicted consumes and clears the one-shot "a page needs
// eviction" flag. The host should poll this once per frame and, if true,
// call EvictOnePage.
func (a *Array) TakeAtlasEvicted() bool {
	v := a.atlasEvicted
	a.atlasEvicted = false
	return v
}

// EvictOnePage consumes at most one pending eviction: it logs a debug
// telemetry record, clears the victim page's allocator state, resets its
// last use to 0, optionally zero-fills its GPU texture layer, and makes it
// the current page. Returns true iff a page was evicted.
func (a *Array) EvictOnePage() bool {
	if a.pendingEviction == nil {
		return false
	}
	victim := *a.pendingEviction
	a.pendingEviction = nil

	page := a.pages[victim]
	logEviction(EvictionRecord{
		Layer:      victim,
		UsedArea:   page.UsedArea(),
		Capacity:   page.Capacity(),
		Occupancy:  page.Occupancy(),
		Policy:     a.policy,
		Inserts:    a.inserts,
		Misses:     a.insertMisses,
		Evictions:  a.evictions + 1,
		FrameCount: a.frameCount,
	})

	page.Clear()
	a.lastUse[victim] = 0

	if a.zeroEvictedLayer && a.zeroer != nil {
		_ = a.zeroer.ZeroLayer(victim)
	}

	a.currentPage = victim
	a.evictions++
	a.lastEvicted = victim
	a.lastEvictedValid = true
	return true
}

// LastEvictedLayer returns the layer index EvictOnePage most recently
// cleared, and whether any eviction has happened yet. Callers use this to
// invalidate only the glyph cache entries that referred to that layer.
func (a *Array) LastEvictedLayer() (layer int, ok bool) {
	return a.lastEvicted, a.lastEvictedValid
}

// Tick advances the frame counter and, when atlas_report_interval_frames
// is non-zero and the interval has elapsed, logs a ReportStats summary of
// every page's occupancy.
func (a *Array) Tick() {
	a.frameCount++
	if a.reportInterval == 0 || a.frameCount%a.reportInterval != 0 {
		return
	}
	stats := ReportStats{
		Pages:     make([]PageStats, len(a.pages)),
		Policy:    a.policy,
		Inserts:   a.inserts,
		Misses:    a.insertMisses,
		Evictions: a.evictions,
	}
	for i, p := range a.pages {
		stats.Pages[i] = PageStats{
			Layer:     i,
			UsedArea:  p.UsedArea(),
			Capacity:  p.Capacity(),
			Occupancy: p.Occupancy(),
			LastUse:   a.lastUse[i],
		}
	}
	logReport(stats, a.frameCount)
}

// Counters returns the cumulative insert/miss/eviction counters.
func (a *Array) Counters() (inserts, misses, evictions uint64) {
	return a.inserts, a.insertMisses, a.evictions
}

// Clear resets every page's allocator state and the current page cursor.
// It does not zero any GPU memory and does not touch the pending
// eviction or counters.
func (a *Array) Clear() {
	for _, p := range a.pages {
		p.Clear()
	}
	for i := range a.lastUse {
		a.lastUse[i] = 0
	}
	a.currentPage = 0
}
