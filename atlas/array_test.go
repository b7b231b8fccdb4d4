package atlas

import "testing"

func TestArrayTryInsertAdvancesCurrentPage(t *testing.T) {
	a := NewArray(2, 16, RoundRobin)
	layer, _, _, miss := a.TryInsert(8, 8)
	if miss {
		t.Fatal("first insert should not miss on an empty array")
	}
	if layer != 0 {
		t.Fatalf("first insert landed on layer %d, want 0", layer)
	}

	// A second 8x8 fits beside the first on page 0. A third needs a new
	// shelf at y=8, where the strict fit check (8 < 16-8) fails, so it
	// lands on page 1, which becomes the current page.
	if layer, _, _, miss := a.TryInsert(8, 8); miss || layer != 0 {
		t.Fatalf("second insert = (layer %d, miss %v), want (0, false)", layer, miss)
	}
	if layer, _, _, miss := a.TryInsert(8, 8); miss || layer != 1 {
		t.Fatalf("third insert = (layer %d, miss %v), want (1, false)", layer, miss)
	}
	if a.currentPage != 1 {
		t.Fatalf("currentPage = %d after insert on layer 1, want 1", a.currentPage)
	}
}

func TestArrayOnePendingEviction(t *testing.T) {
	// P2: pending_eviction is unset or holds exactly one layer index in [0, N).
	a := NewArray(2, 8, RoundRobin)
	fillPage := func() {
		for {
			if _, _, _, miss := a.TryInsert(8, 8); miss {
				break
			}
		}
	}
	fillPage()
	if a.pendingEviction == nil {
		t.Fatal("expected a pending eviction once both pages reject inserts")
	}
	if *a.pendingEviction < 0 || *a.pendingEviction >= a.N() {
		t.Fatalf("pending eviction layer %d out of range [0,%d)", *a.pendingEviction, a.N())
	}

	// A second miss before EvictOnePage runs must not replace the pending
	// candidate (get-or-insert semantics, not overwrite).
	pending := *a.pendingEviction
	a.TryInsert(8, 8)
	if *a.pendingEviction != pending {
		t.Fatalf("pending eviction changed from %d to %d without a consuming EvictOnePage", pending, *a.pendingEviction)
	}
}

func TestArrayEvictionBounded(t *testing.T) {
	// P3: between two successive EvictOnePage calls, at most one page's
	// allocator state transitions from non-empty to empty, and no other
	// page's last use changes.
	a := NewArray(2, 8, RoundRobin)
	for {
		if _, _, _, miss := a.TryInsert(8, 8); miss {
			break
		}
	}
	otherLastUse := a.lastUse[(*a.pendingEviction+1)%2]

	if !a.EvictOnePage() {
		t.Fatal("EvictOnePage() should consume the pending eviction")
	}
	if a.lastUse[(a.currentPage+1)%2] != otherLastUse {
		t.Error("EvictOnePage must not touch the non-victim page's last use")
	}
	if a.EvictOnePage() {
		t.Fatal("a second EvictOnePage() with nothing pending should return false")
	}
}

func TestArrayLRUTieBreak(t *testing.T) {
	// P4: with LruMinOccupancy, if two pages share the minimum last_use,
	// the one with smaller used_area is selected.
	a := NewArray(2, 100, LruMinOccupancy)
	a.lastUse = []uint64{5, 5}
	a.pages[0].usedArea = 40
	a.pages[1].usedArea = 10
	if v := a.selectVictim(); v != 1 {
		t.Fatalf("selectVictim() = %d, want 1 (smaller used_area on tie)", v)
	}
}

func TestArrayRoundRobinVictim(t *testing.T) {
	a := NewArray(3, 100, RoundRobin)
	a.currentPage = 1
	if v := a.selectVictim(); v != 2 {
		t.Fatalf("selectVictim() = %d, want (current+1)%%N = 2", v)
	}
}

func TestArrayOversizeNeverSchedulesEviction(t *testing.T) {
	// P7: a glyph whose w or h exceed page dimensions always yields a
	// placeholder (miss) and never schedules an eviction.
	a := NewArray(2, 16, LruMinOccupancy)
	_, _, _, miss := a.TryInsert(17, 4)
	if !miss {
		t.Fatal("oversize insert should miss")
	}
	if a.TakeAtlasEvicted() {
		t.Fatal("oversize insert must not schedule an eviction")
	}
	if a.pendingEviction != nil {
		t.Fatal("oversize insert must leave pendingEviction unset")
	}
}

func TestArrayPlaceholderAfterGenuineMiss(t *testing.T) {
	a := NewArray(1, 8, LruMinOccupancy)
	for {
		if _, _, _, miss := a.TryInsert(8, 8); miss {
			break
		}
	}
	if !a.TakeAtlasEvicted() {
		t.Fatal("expected atlas_evicted to be raised after a genuine miss")
	}
	if a.TakeAtlasEvicted() {
		t.Fatal("atlas_evicted must be one-shot: a second poll should return false")
	}
}

func TestArrayClearResetsPagesNotCounters(t *testing.T) {
	a := NewArray(2, 16, RoundRobin)
	a.TryInsert(8, 8)
	inserts, _, _ := a.Counters()
	a.Clear()
	if a.pages[0].UsedArea() != 0 {
		t.Error("Clear() should empty every page")
	}
	if after, _, _ := a.Counters(); after != inserts {
		t.Error("Clear() should not reset cumulative counters")
	}
}
