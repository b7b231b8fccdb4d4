package glyph

import (
	"log/slog"

	"github.com/gogpu/ttyrender/atlas"
	"github.com/gogpu/ttyrender/internal/rlog"
)

// TextureUploader uploads a row-major RGBA8 buffer to one rectangle of one
// layer of the atlas's GPU texture array. rgba has stride 4*w bytes; the
// destination origin is (x, y, layer) and the extent is (w, h, 1).
type TextureUploader interface {
	Upload(layer, x, y, w, h int, rgba []byte) error
}

// Loader inserts rasterized glyphs into an atlas.Array, uploads their
// pixels through a TextureUploader, and produces the Glyph cache record the
// caller stores.
//
// Loader is not safe for concurrent use, matching the single-threaded
// cooperative model of the renderer that owns it.
type Loader struct {
	pages    *atlas.Array
	uploader TextureUploader
}

// NewLoader creates a Loader backed by the given atlas and uploader.
func NewLoader(pages *atlas.Array, uploader TextureUploader) *Loader {
	return &Loader{pages: pages, uploader: uploader}
}

// LoadGlyph inserts one rasterized glyph into the atlas and returns its
// Glyph record.
//
//  1. Try to insert (w, h) into the atlas. On miss, return the placeholder;
//     the same codepoint is expected to be re-requested by the caller's
//     glyph cache after the next eviction completes.
//  2. Convert the bitmap to RGBA8: color bitmaps are copied directly;
//     coverage bitmaps are expanded to (0,0,0,red) per pixel, letting the
//     text fragment shader reconstruct the correct blend via channel-max
//     when subpixel mode is enabled.
//  3. Upload the RGBA buffer to the atlas texture.
//  4. Compute UVs normalized by the shared page dimensions (every page in
//     the array has the same size) and return the completed Glyph.
func (l *Loader) LoadGlyph(r RasterizedGlyph) Glyph {
	layer, x, y, miss := l.pages.TryInsert(r.Width, r.Height)
	if miss {
		return Placeholder
	}

	rgba := toRGBA8(r)
	if l.uploader != nil {
		if err := l.uploader.Upload(layer, x, y, r.Width, r.Height, rgba); err != nil {
			rlog.Get().Warn("glyph: texture upload failed",
				slog.Int("layer", layer), slog.Any("err", err))
		}
	}

	pageW := float32(l.pages.Page(0).Width())
	pageH := float32(l.pages.Page(0).Height())

	return Glyph{
		TexID:      layer + 1,
		Multicolor: r.Color,
		Top:        r.Top,
		Left:       r.Left,
		Width:      int16(r.Width),
		Height:     int16(r.Height),
		U0:         float32(x) / pageW,
		V0:         float32(y) / pageH,
		UW:         float32(r.Width) / pageW,
		VH:         float32(r.Height) / pageH,
	}
}

// toRGBA8 converts a rasterized glyph's source bitmap to a tightly packed
// RGBA8 buffer ready for GPU upload.
func toRGBA8(r RasterizedGlyph) []byte {
	if r.Color {
		// Buffer is already RGBA32; copy so the caller's Buffer slice can
		// be reused for the next glyph.
		out := make([]byte, len(r.Buffer))
		copy(out, r.Buffer)
		return out
	}

	// Coverage (RGB) input from subpixel rasterizers: the red channel
	// stands in for single-channel coverage, written as (0, 0, 0, red).
	n := r.Width * r.Height
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		red := r.Buffer[i*3]
		out[i*4+3] = red
	}
	return out
}

// Clear resets every page's allocator state and the current page cursor.
// It does not zero any GPU memory.
func (l *Loader) Clear() {
	l.pages.Clear()
}
