package ttyrender

import "testing"

func TestRGBAPack8(t *testing.T) {
	tests := []struct {
		name string
		c    RGBA
		want [4]uint8
	}{
		{"opaque black", Black, [4]uint8{0, 0, 0, 255}},
		{"opaque white", White, [4]uint8{255, 255, 255, 255}},
		{"opaque red", Red, [4]uint8{255, 0, 0, 255}},
		{"transparent", Transparent, [4]uint8{0, 0, 0, 0}},
		{"50% alpha red", RGBA2(1, 0, 0, 0.5), [4]uint8{255, 0, 0, 128}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.c.Pack8()
			if got != tt.want {
				t.Errorf("Pack8() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRGBAPremultiply(t *testing.T) {
	c := RGBA2(1, 0.5, 0.25, 0.5)
	got := c.Premultiply()
	want := RGBA{R: 0.5, G: 0.25, B: 0.125, A: 0.5}
	if got != want {
		t.Errorf("Premultiply() = %+v, want %+v", got, want)
	}
}

func TestClamp255(t *testing.T) {
	tests := []struct {
		x    float64
		want uint8
	}{
		{-10, 0},
		{0, 0},
		{127.9, 127},
		{255, 255},
		{300, 255},
	}
	for _, tt := range tests {
		if got := clamp255(tt.x); got != tt.want {
			t.Errorf("clamp255(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}
