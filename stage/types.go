// Package stage accepts the per-frame cell stream from the terminal grid,
// resolves glyphs through an external glyph cache, and appends vertex data
// for the Compositor's two render passes to FrameScratch buffers.
package stage

import "github.com/gogpu/ttyrender/glyph"

// CellFlags is a bitmask of per-cell style attributes.
type CellFlags uint8

const (
	Bold CellFlags = 1 << iota
	Italic
	Hidden
)

// FontKey selects which of the four font faces a cell should render with.
type FontKey uint8

const (
	FontRegular FontKey = iota
	FontBold
	FontItalic
	FontBoldItalic
)

// FontKeyFor resolves a FontKey from a cell's BOLD/ITALIC flag pair.
func FontKeyFor(flags CellFlags) FontKey {
	switch {
	case flags&Bold != 0 && flags&Italic != 0:
		return FontBoldItalic
	case flags&Bold != 0:
		return FontBold
	case flags&Italic != 0:
		return FontItalic
	default:
		return FontRegular
	}
}

// Point is a grid position: line (row) and column.
type Point struct {
	Line, Column int
}

// Cell is one renderable grid cell: character, style flags, colors, and any
// zero-width combining characters attached to it.
type Cell struct {
	Point     Point
	Char      rune
	ZeroWidth []rune
	Flags     CellFlags
	FG        [3]float64 // RGB in [0,1]
	BG        [3]float64
	BGAlpha   float64
	Underline [3]float64
}

// GridMetrics describes cell geometry and font selection, supplied by the
// grid model collaborator.
type GridMetrics struct {
	CellWidth, CellHeight float64
	PaddingX, PaddingY    float64
	FontSize              float64
	Fonts                 [4]uint64 // indexed by FontKey; opaque font ids
}

// GlyphResolver is the external glyph cache keyed by (font_id, size,
// character), which may call back into glyph.Loader.LoadGlyph on miss.
type GlyphResolver interface {
	Resolve(fontID uint64, fontSize float64, ch rune) glyph.Glyph
}

const (
	tabRune = '\t'
)
