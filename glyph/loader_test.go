package glyph

import (
	"testing"

	"github.com/gogpu/ttyrender/atlas"
)

type recordingUploader struct {
	uploads []upload
	err     error
}

type upload struct {
	layer, x, y, w, h int
	rgba              []byte
}

func (u *recordingUploader) Upload(layer, x, y, w, h int, rgba []byte) error {
	u.uploads = append(u.uploads, upload{layer, x, y, w, h, append([]byte(nil), rgba...)})
	return u.err
}

func TestLoadGlyphColorCopiesDirectly(t *testing.T) {
	pages := atlas.NewArray(1, 64, atlas.LruMinOccupancy)
	up := &recordingUploader{}
	l := NewLoader(pages, up)

	buf := []byte{10, 20, 30, 40, 50, 60, 70, 80}
	g := l.LoadGlyph(RasterizedGlyph{Width: 2, Height: 1, Color: true, Buffer: buf, Top: 5, Left: 1})

	if g.IsPlaceholder() {
		t.Fatal("expected a real glyph, got placeholder")
	}
	if !g.Multicolor {
		t.Error("color glyph should have Multicolor = true")
	}
	if len(up.uploads) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(up.uploads))
	}
	if string(up.uploads[0].rgba) != string(buf) {
		t.Error("color bitmap should be copied verbatim")
	}
}

func TestLoadGlyphCoverageExpandsToAlpha(t *testing.T) {
	pages := atlas.NewArray(1, 64, atlas.LruMinOccupancy)
	up := &recordingUploader{}
	l := NewLoader(pages, up)

	// One RGB pixel: red=200 is the coverage value.
	buf := []byte{200, 0, 0}
	g := l.LoadGlyph(RasterizedGlyph{Width: 1, Height: 1, Color: false, Buffer: buf})

	if g.Multicolor {
		t.Error("coverage glyph should have Multicolor = false")
	}
	want := []byte{0, 0, 0, 200}
	got := up.uploads[0].rgba
	if string(got) != string(want) {
		t.Errorf("coverage expansion = %v, want %v", got, want)
	}
}

func TestLoadGlyphMissReturnsPlaceholder(t *testing.T) {
	pages := atlas.NewArray(1, 8, atlas.LruMinOccupancy)
	l := NewLoader(pages, nil)

	// Load until the only page rejects a glyph. The page's row fit check is
	// strict (h < height-row_baseline), so an 8x8 glyph never fits an 8x8
	// page and the first load already misses.
	for {
		if g := l.LoadGlyph(RasterizedGlyph{Width: 8, Height: 8, Color: true, Buffer: make([]byte, 8*8*4)}); g.IsPlaceholder() {
			break
		}
	}

	g := l.LoadGlyph(RasterizedGlyph{Width: 8, Height: 8, Color: true, Buffer: make([]byte, 8*8*4)})
	if !g.IsPlaceholder() {
		t.Fatal("expected placeholder once the atlas is full")
	}
}

func TestLoadGlyphUVBounds(t *testing.T) {
	// P5: uv_left, uv_bot >= 0 and uv_left+uv_width, uv_bot+uv_height <= 1.
	pages := atlas.NewArray(1, 32, atlas.LruMinOccupancy)
	l := NewLoader(pages, nil)

	for i := 0; i < 4; i++ {
		g := l.LoadGlyph(RasterizedGlyph{Width: 8, Height: 8, Color: true, Buffer: make([]byte, 8*8*4)})
		if g.IsPlaceholder() {
			continue
		}
		if g.U0 < 0 || g.V0 < 0 {
			t.Fatalf("glyph %d: negative UV origin (%v,%v)", i, g.U0, g.V0)
		}
		if g.U0+g.UW > 1.0001 || g.V0+g.VH > 1.0001 {
			t.Fatalf("glyph %d: UV rect escapes [0,1]: (%v+%v, %v+%v)", i, g.U0, g.UW, g.V0, g.VH)
		}
	}
}
