// Package atlas implements the shelf-packing glyph atlas: a single-layer
// allocator (Page) and a fixed-count array of layers with an eviction
// policy and telemetry (Array).
package atlas

// DefaultPageSize is the conventional page dimension, 2048x2048 pixels,
// that the root package's DefaultConfig uses. NewArray always takes an
// explicit size.
const DefaultPageSize = 2048

// Page is a shelf-packing allocator for one 2D texture layer.
//
// Unlike a general bin packer, Page keeps only the current shelf in memory:
// once a shelf is too short for the next insert it advances to a new row
// and never revisits the old one. This is O(1) per insert and never
// defragments — it trades wasted space at the top of a filled shelf for
// predictable latency. Eviction reclaims the waste by clearing the whole
// page and starting over.
type Page struct {
	width, height int

	rowBaseline int // y of the current row's top
	rowExtent   int // x cursor within the current row
	rowTallest  int // tallest glyph inserted into the current row so far

	usedArea int // monotonic, clamped at width*height
}

// NewPage creates an empty page of the given dimensions.
func NewPage(width, height int) *Page {
	return &Page{width: width, height: height}
}

// Width returns the page width in pixels.
func (p *Page) Width() int { return p.width }

// Height returns the page height in pixels.
func (p *Page) Height() int { return p.height }

// UsedArea returns the monotonic sum of inserted glyph areas, clamped at
// Width()*Height().
func (p *Page) UsedArea() int { return p.usedArea }

// Capacity returns Width()*Height().
func (p *Page) Capacity() int { return p.width * p.height }

// Occupancy returns UsedArea()/Capacity() as a fraction in [0, 1]. Returns
// 0 for a zero-capacity page.
func (p *Page) Occupancy() float64 {
	cap := p.Capacity()
	if cap == 0 {
		return 0
	}
	return float64(p.usedArea) / float64(cap)
}

// Insert attempts to place a w x h rectangle on this page using shelf
// packing. It implements the five steps of the packing contract exactly:
//
//  1. Reject outright if the rectangle cannot fit the page at all.
//  2. Check whether it fits in the current row.
//  3. If not, advance to a new row (fail if the page is out of rows).
//  4. Re-check fit after advancing.
//  5. Emit the position and advance the row cursor.
func (p *Page) Insert(w, h int) (x, y int, ok bool) {
	if w > p.width || h > p.height {
		return 0, 0, false
	}

	if !p.fitsCurrentRow(w, h) {
		if !p.advanceRow() {
			return 0, 0, false
		}
		if !p.fitsCurrentRow(w, h) {
			return 0, 0, false
		}
	}

	x, y = p.rowExtent, p.rowBaseline
	p.rowExtent += w
	if h > p.rowTallest {
		p.rowTallest = h
	}

	area := w * h
	cap := p.Capacity()
	if p.usedArea+area > cap {
		p.usedArea = cap
	} else {
		p.usedArea += area
	}

	return x, y, true
}

// fitsCurrentRow reports whether a w x h rectangle fits in the current row
// without advancing.
func (p *Page) fitsCurrentRow(w, h int) bool {
	return p.rowExtent+w <= p.width && h < p.height-p.rowBaseline
}

// advanceRow moves to a new shelf below the current one. Returns false if
// the page has no room left for another row.
func (p *Page) advanceRow() bool {
	p.rowBaseline += p.rowTallest
	if p.rowBaseline >= p.height {
		return false
	}
	p.rowExtent = 0
	p.rowTallest = 0
	return true
}

// Clear zeros the row state and used area, logically emptying the page
// without releasing any GPU memory.
func (p *Page) Clear() {
	p.rowBaseline = 0
	p.rowExtent = 0
	p.rowTallest = 0
	p.usedArea = 0
}
