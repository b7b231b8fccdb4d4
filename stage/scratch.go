package stage

// Rect is one staged background rectangle: a cell-sized quad at a pixel
// position with a premultiplied-at-draw-time RGB color and alpha.
type Rect struct {
	X, Y, W, H float64
	R, G, B    float64
	Alpha      float64
}

// TextVertex is one vertex of a textured glyph quad.
type TextVertex struct {
	X, Y  float64 // position, in pixels
	U, V  float32
	Color [4]uint8 // packed RGBA
	Flags uint32   // bit0 = multicolor, bit1 = subpixel_enabled
	Layer uint32
}

// Vertex flag bits.
const (
	FlagMulticolor uint32 = 1 << 0
	FlagSubpixel   uint32 = 1 << 1
)

// FrameScratch holds the two append-only per-frame vertex buffers: staged
// background rectangles and staged textured glyph quads. Both are cleared
// at the start of every frame's staging pass.
type FrameScratch struct {
	PendingBG   []Rect
	PendingText []TextVertex
}

// Reset clears both buffers without releasing their backing arrays, so
// repeated frames reuse the same capacity.
func (s *FrameScratch) Reset() {
	s.PendingBG = s.PendingBG[:0]
	s.PendingText = s.PendingText[:0]
}

// AppendRect stages one background rectangle.
func (s *FrameScratch) AppendRect(r Rect) {
	s.PendingBG = append(s.PendingBG, r)
}

// AppendQuad stages six vertices (two triangles) for one textured glyph
// quad spanning [x0,x1) x [y0,y1) in pixels and [u0,u1) x [v0,v1) in UV
// space, with the given packed color, flag bits, and atlas layer.
func (s *FrameScratch) AppendQuad(x0, y0, x1, y1 float64, u0, v0, u1, v1 float32, color [4]uint8, flags uint32, layer int) {
	l := uint32(layer)
	tl := TextVertex{X: x0, Y: y0, U: u0, V: v0, Color: color, Flags: flags, Layer: l}
	tr := TextVertex{X: x1, Y: y0, U: u1, V: v0, Color: color, Flags: flags, Layer: l}
	bl := TextVertex{X: x0, Y: y1, U: u0, V: v1, Color: color, Flags: flags, Layer: l}
	br := TextVertex{X: x1, Y: y1, U: u1, V: v1, Color: color, Flags: flags, Layer: l}

	s.PendingText = append(s.PendingText, tl, tr, bl, tr, br, bl)
}
