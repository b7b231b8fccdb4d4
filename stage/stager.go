package stage

import "github.com/gogpu/ttyrender/glyph"

// Stager accepts the per-frame cell stream and appends background
// rectangles and textured glyph quads to a FrameScratch buffer, resolving
// glyphs through an external GlyphResolver.
type Stager struct {
	scratch  *FrameScratch
	metrics  GridMetrics
	resolver GlyphResolver

	// subpixelEnabled is resolved once at init from
	// subpixel_preference and the surface format, then carried per-vertex
	// for shader branching.
	subpixelEnabled bool
}

// NewStager creates a Stager writing into scratch, using metrics for cell
// geometry and font selection and resolver to resolve glyphs.
func NewStager(scratch *FrameScratch, metrics GridMetrics, resolver GlyphResolver, subpixelEnabled bool) *Stager {
	return &Stager{scratch: scratch, metrics: metrics, resolver: resolver, subpixelEnabled: subpixelEnabled}
}

// DrawCells stages background rectangles and text quads for every cell in
// cells.
func (s *Stager) DrawCells(cells []Cell) {
	for _, c := range cells {
		s.drawCell(c)
	}
}

func (s *Stager) drawCell(c Cell) {
	cellX := float64(c.Point.Column)*s.metrics.CellWidth + s.metrics.PaddingX
	cellY := float64(c.Point.Line)*s.metrics.CellHeight + s.metrics.PaddingY
	baseline := cellY + s.metrics.CellHeight

	if c.BGAlpha > 0 {
		s.scratch.AppendRect(Rect{
			X: cellX, Y: cellY,
			W: s.metrics.CellWidth, H: s.metrics.CellHeight,
			R: c.BG[0], G: c.BG[1], B: c.BG[2],
			Alpha: c.BGAlpha,
		})
	}

	ch := c.Char
	zeroWidth := c.ZeroWidth
	hidden := c.Flags&Hidden != 0
	if ch == tabRune || hidden {
		ch = ' '
		zeroWidth = nil
	}

	fontKey := FontKeyFor(c.Flags)
	fontID := s.metrics.Fonts[fontKey]
	color := packColor(c.FG, 1)

	g := s.resolver.Resolve(fontID, s.metrics.FontSize, ch)
	s.emitGlyphQuad(g, cellX, baseline, color)

	if hidden {
		return
	}
	for _, zw := range zeroWidth {
		zg := s.resolver.Resolve(fontID, s.metrics.FontSize, zw)
		s.emitGlyphQuad(zg, cellX, baseline, color)
	}
}

// DrawString stages one row of cells advancing the column, specialized for
// simple overlay text: forced opaque background, no combinators, regular
// font.
func (s *Stager) DrawString(start Point, fg, bg [3]float64, chars []rune) {
	fontID := s.metrics.Fonts[FontRegular]
	color := packColor(fg, 1)

	for i, ch := range chars {
		col := start.Column + i
		cellX := float64(col)*s.metrics.CellWidth + s.metrics.PaddingX
		cellY := float64(start.Line)*s.metrics.CellHeight + s.metrics.PaddingY
		baseline := cellY + s.metrics.CellHeight

		s.scratch.AppendRect(Rect{
			X: cellX, Y: cellY,
			W: s.metrics.CellWidth, H: s.metrics.CellHeight,
			R: bg[0], G: bg[1], B: bg[2],
			Alpha: 1,
		})

		g := s.resolver.Resolve(fontID, s.metrics.FontSize, ch)
		s.emitGlyphQuad(g, cellX, baseline, color)
	}
}

// emitGlyphQuad emits one quad at (cellX+glyph.Left, baseline-glyph.Top)
// sized to the glyph's pixel dimensions, using its UVs, atlas layer, and
// the cell's packed foreground color. Placeholders contribute nothing.
func (s *Stager) emitGlyphQuad(g glyph.Glyph, cellX, baseline float64, color [4]uint8) {
	if g.IsPlaceholder() {
		return
	}

	x0 := cellX + float64(g.Left)
	y0 := baseline - float64(g.Top)
	x1 := x0 + float64(g.Width)
	y1 := y0 + float64(g.Height)

	flags := uint32(0)
	if g.Multicolor {
		flags |= FlagMulticolor
	}
	if s.subpixelEnabled {
		flags |= FlagSubpixel
	}

	s.scratch.AppendQuad(x0, y0, x1, y1, g.U0, g.V0, g.U0+g.UW, g.V0+g.VH, color, flags, g.Layer())
}

// packColor packs an [R,G,B] triple plus separate alpha into unsigned
// 8-bit RGBA, rounding and clamping each channel.
func packColor(rgb [3]float64, alpha float64) [4]uint8 {
	return [4]uint8{
		clamp255(rgb[0]*255 + 0.5),
		clamp255(rgb[1]*255 + 0.5),
		clamp255(rgb[2]*255 + 0.5),
		clamp255(alpha*255 + 0.5),
	}
}

func clamp255(x float64) uint8 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint8(x)
}
