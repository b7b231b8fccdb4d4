// Package glyph converts rasterized glyph bitmaps into atlas-resident
// Glyph records, uploading pixels to the GPU texture array and handling the
// atlas miss/eviction protocol.
package glyph

// RasterizedGlyph is the font rasterizer collaborator's output: a bitmap
// plus the bearings needed to position it relative to a cell's baseline.
// Buffer holds either an RGBA32 color bitmap or a single-channel (R-only,
// stored per-pixel in a 3-byte RGB stride) subpixel coverage bitmap,
// distinguished by Color.
type RasterizedGlyph struct {
	Width, Height int
	Top, Left     int16
	// Buffer holds Width*Height*4 bytes (RGBA) if Color is true, or
	// Width*Height*3 bytes (RGB coverage) otherwise.
	Buffer []byte
	Color  bool
}

// Glyph is an immutable atlas cache entry: which page it lives on, its
// bearings and pixel size, its UV rectangle within that page, and whether
// it is a color or coverage bitmap.
//
// TexID is 1-based; 0 is reserved for the miss placeholder so a
// zero-valued Glyph is always a valid, harmless placeholder.
type Glyph struct {
	TexID      int // page index + 1; 0 = placeholder
	Multicolor bool
	Top, Left  int16
	Width      int16
	Height     int16

	U0, V0 float32 // uv_left, uv_bot
	UW, VH float32 // uv_width, uv_height
}

// Placeholder is the zero-sized, zero-UV glyph returned on an atlas miss.
// It contributes no vertices but lets layout continue.
var Placeholder = Glyph{}

// IsPlaceholder reports whether g is the miss placeholder (TexID == 0).
func (g Glyph) IsPlaceholder() bool { return g.TexID == 0 }

// Layer returns the atlas page index this glyph lives on. Only meaningful
// when !IsPlaceholder().
func (g Glyph) Layer() int { return g.TexID - 1 }
