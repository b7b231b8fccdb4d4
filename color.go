package ttyrender

// RGBA represents a color with red, green, blue, and alpha components.
// Each component is in the range [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1.0}
}

// RGBA2 creates a color from RGBA components.
func RGBA2(r, g, b, a float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: a}
}

// Premultiply returns a premultiplied color, the form the clear color and
// rectangle pass expect.
func (c RGBA) Premultiply() RGBA {
	return RGBA{
		R: c.R * c.A,
		G: c.G * c.A,
		B: c.B * c.A,
		A: c.A,
	}
}

// Pack8 quantizes the color to unsigned 8-bit RGBA, rounding each channel
// and clamping it to [0, 255]. alpha is packed as round(A*255), the same
// packing the staged text vertex color (stage.TextVertex.Color) uses.
// Rectangle vertices do not use this packing: they carry float32 color.
func (c RGBA) Pack8() [4]uint8 {
	return [4]uint8{
		clamp255(c.R*255 + 0.5),
		clamp255(c.G*255 + 0.5),
		clamp255(c.B*255 + 0.5),
		clamp255(c.A*255 + 0.5),
	}
}

// clamp255 rounds x down to a byte, clamping to [0, 255].
func clamp255(x float64) uint8 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint8(x)
}

// Common colors used by tests and callers wiring up a default palette.
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Red         = RGB(1, 0, 0)
	Green       = RGB(0, 1, 0)
	Blue        = RGB(0, 0, 1)
	Transparent = RGBA2(0, 0, 0, 0)
)
