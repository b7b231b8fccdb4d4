package stage

import (
	"testing"

	"github.com/gogpu/ttyrender/glyph"
)

type fakeResolver struct {
	glyphs map[rune]glyph.Glyph
}

func (f *fakeResolver) Resolve(fontID uint64, size float64, ch rune) glyph.Glyph {
	if g, ok := f.glyphs[ch]; ok {
		return g
	}
	return glyph.Placeholder
}

func testMetrics() GridMetrics {
	return GridMetrics{CellWidth: 10, CellHeight: 20, PaddingX: 2, PaddingY: 4, FontSize: 14}
}

func TestDrawCellsEmitsBackgroundRectWhenOpaque(t *testing.T) {
	var scratch FrameScratch
	resolver := &fakeResolver{glyphs: map[rune]glyph.Glyph{}}
	st := NewStager(&scratch, testMetrics(), resolver, false)

	st.DrawCells([]Cell{{Point: Point{Line: 1, Column: 2}, Char: 'a', BGAlpha: 1, BG: [3]float64{1, 0, 0}}})

	if len(scratch.PendingBG) != 1 {
		t.Fatalf("expected 1 background rect, got %d", len(scratch.PendingBG))
	}
	r := scratch.PendingBG[0]
	wantX := 2*10.0 + 2
	wantY := 1*20.0 + 4
	if r.X != wantX || r.Y != wantY {
		t.Errorf("rect position = (%v,%v), want (%v,%v)", r.X, r.Y, wantX, wantY)
	}
}

func TestDrawCellsSkipsBackgroundWhenTransparent(t *testing.T) {
	var scratch FrameScratch
	resolver := &fakeResolver{glyphs: map[rune]glyph.Glyph{}}
	st := NewStager(&scratch, testMetrics(), resolver, false)

	st.DrawCells([]Cell{{Char: 'a', BGAlpha: 0}})

	if len(scratch.PendingBG) != 0 {
		t.Fatalf("expected no background rect for zero alpha, got %d", len(scratch.PendingBG))
	}
}

func TestDrawCellsHiddenSubstitutesSpaceAndSuppressesCombinators(t *testing.T) {
	var scratch FrameScratch
	resolver := &fakeResolver{glyphs: map[rune]glyph.Glyph{
		'x':   {TexID: 1, Width: 4, Height: 4},
		0x301: {TexID: 1, Width: 4, Height: 4},
	}}
	st := NewStager(&scratch, testMetrics(), resolver, false)

	st.DrawCells([]Cell{{Char: 'x', Flags: Hidden, ZeroWidth: []rune{0x301}}})

	// A hidden cell's space substitute resolves to a placeholder (not
	// registered in the fake resolver), and any combinators are suppressed,
	// so no text vertices should be emitted.
	if len(scratch.PendingText) != 0 {
		t.Fatalf("hidden cell should emit no text vertices, got %d", len(scratch.PendingText))
	}
}

func TestDrawCellsEmitsSixVerticesPerGlyph(t *testing.T) {
	var scratch FrameScratch
	resolver := &fakeResolver{glyphs: map[rune]glyph.Glyph{
		'a': {TexID: 1, Width: 6, Height: 8, Top: 8, Left: 1, U0: 0.1, V0: 0.2, UW: 0.05, VH: 0.05},
	}}
	st := NewStager(&scratch, testMetrics(), resolver, true)

	st.DrawCells([]Cell{{Char: 'a', FG: [3]float64{1, 1, 1}}})

	if len(scratch.PendingText) != 6 {
		t.Fatalf("expected 6 vertices for one glyph quad, got %d", len(scratch.PendingText))
	}
	for _, v := range scratch.PendingText {
		if v.Flags&FlagSubpixel == 0 {
			t.Error("subpixel flag should be set on every vertex when enabled")
		}
		if v.Flags&FlagMulticolor != 0 {
			t.Error("non-color glyph must not set the multicolor flag")
		}
	}
}

func TestFontKeyForFlags(t *testing.T) {
	tests := []struct {
		flags CellFlags
		want  FontKey
	}{
		{0, FontRegular},
		{Bold, FontBold},
		{Italic, FontItalic},
		{Bold | Italic, FontBoldItalic},
	}
	for _, tt := range tests {
		if got := FontKeyFor(tt.flags); got != tt.want {
			t.Errorf("FontKeyFor(%v) = %v, want %v", tt.flags, got, tt.want)
		}
	}
}
