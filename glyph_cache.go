package ttyrender

import (
	"github.com/gogpu/ttyrender/glyph"
)

// GlyphRasterizer is the font shaping/rasterization collaborator: given a
// font, size, and character, it produces a bitmap ready for atlas upload.
// ok is false when the character has no renderable glyph in that font (e.g.
// an unmapped codepoint), which the cache treats the same as an atlas miss.
type GlyphRasterizer interface {
	Rasterize(fontID uint64, fontSize float64, ch rune) (bitmap glyph.RasterizedGlyph, ok bool)
}

type glyphKey struct {
	fontID   uint64
	fontSize float64
	ch       rune
}

// glyphCache is the external glyph cache the atlas/glyph package design
// assumes exists: it owns glyph.Glyph records keyed by (font_id, size,
// codepoint), filling misses through a glyph.Loader and invalidating its
// entries when the atlas signals an eviction.
//
// glyphCache is not safe for concurrent use, matching Stager and Loader.
type glyphCache struct {
	entries    map[glyphKey]glyph.Glyph
	loader     *glyph.Loader
	rasterizer GlyphRasterizer
}

func newGlyphCache(loader *glyph.Loader, rasterizer GlyphRasterizer) *glyphCache {
	return &glyphCache{
		entries:    make(map[glyphKey]glyph.Glyph),
		loader:     loader,
		rasterizer: rasterizer,
	}
}

// Resolve implements stage.GlyphResolver. A cache hit returns immediately.
// On a miss it rasterizes and loads the glyph into the atlas; an atlas miss
// (placeholder) is never cached, so the same codepoint is retried on a
// later frame once eviction has freed room.
func (c *glyphCache) Resolve(fontID uint64, fontSize float64, ch rune) glyph.Glyph {
	key := glyphKey{fontID, fontSize, ch}
	if g, ok := c.entries[key]; ok {
		return g
	}

	bitmap, ok := c.rasterizer.Rasterize(fontID, fontSize, ch)
	if !ok {
		return glyph.Placeholder
	}

	g := c.loader.LoadGlyph(bitmap)
	if g.IsPlaceholder() {
		return g
	}
	c.entries[key] = g
	return g
}

// InvalidateLayer drops every cached entry that refers to the given atlas
// layer, called after EvictOnePage clears that page. Cache entries for
// other layers remain valid: they still refer to pixels that were never
// touched by this eviction.
func (c *glyphCache) InvalidateLayer(layer int) {
	for k, g := range c.entries {
		if g.Layer() == layer {
			delete(c.entries, k)
		}
	}
}

// Clear drops every cached entry.
func (c *glyphCache) Clear() {
	c.entries = make(map[glyphKey]glyph.Glyph)
}
