package ttyrender

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ttyrender/gpu"
	"github.com/gogpu/ttyrender/stage"
)

func TestNewRejectsNilDeviceHandle(t *testing.T) {
	_, err := New(DefaultConfig(), nil, fakeWindow{}, 80, 24, stage.GridMetrics{}, nil)
	if err != ErrNilDeviceHandle {
		t.Fatalf("New(nil device) = %v, want ErrNilDeviceHandle", err)
	}
}

func TestNewRejectsNilWindowHandle(t *testing.T) {
	_, err := New(DefaultConfig(), gpu.NullDeviceHandle{}, nil, 80, 24, stage.GridMetrics{}, nil)
	if err != ErrNilWindowHandle {
		t.Fatalf("New(nil window) = %v, want ErrNilWindowHandle", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PageCount = 0
	_, err := New(cfg, gpu.NullDeviceHandle{}, fakeWindow{}, 80, 24, stage.GridMetrics{}, nil)
	if err == nil {
		t.Fatal("New(invalid config) = nil, want an error")
	}
	initErr, ok := err.(*InitError)
	if !ok || initErr.Stage != "config" {
		t.Fatalf("New(invalid config) = %v, want an InitError at stage \"config\"", err)
	}
}

// fakeWindow implements gpu.WindowHandle so New's argument-validation paths
// above can be exercised without a real surface. None of its methods are
// actually invoked: every case here fails before gpu.NewSurface would call
// into it.
type fakeWindow struct{}

func (fakeWindow) Configure(uint32, uint32, gputypes.TextureFormat) error { return nil }
func (fakeWindow) AcquireNextFrame() (hal.TextureView, gpu.FrameStatus, error) {
	return nil, gpu.FrameStatusOK, nil
}
func (fakeWindow) Present() error                             { return nil }
func (fakeWindow) PreferredFormats() []gputypes.TextureFormat { return nil }

func TestBuildRectVerticesLayoutAndCount(t *testing.T) {
	rects := []stage.Rect{
		{X: 0, Y: 0, W: 10, H: 10, R: 1, G: 0, B: 0, Alpha: 1},
	}
	data := buildRectVertices(rects)
	if len(data) != 6*rectVertexStride {
		t.Fatalf("len(data) = %d, want %d", len(data), 6*rectVertexStride)
	}

	x0 := math.Float32frombits(binary.LittleEndian.Uint32(data[0:4]))
	y0 := math.Float32frombits(binary.LittleEndian.Uint32(data[4:8]))
	if x0 != 0 || y0 != 0 {
		t.Errorf("first vertex position = (%v,%v), want (0,0)", x0, y0)
	}
	r := math.Float32frombits(binary.LittleEndian.Uint32(data[8:12]))
	a := math.Float32frombits(binary.LittleEndian.Uint32(data[20:24]))
	if r != 1 || a != 1 {
		t.Errorf("first vertex color = (r=%v,a=%v), want (1,1)", r, a)
	}
}

func TestBuildRectVerticesPremultipliesAlpha(t *testing.T) {
	rects := []stage.Rect{
		{X: 0, Y: 0, W: 1, H: 1, R: 1, G: 1, B: 1, Alpha: 0.5},
	}
	data := buildRectVertices(rects)
	r := math.Float32frombits(binary.LittleEndian.Uint32(data[8:12]))
	if r != 0.5 {
		t.Errorf("premultiplied red = %v, want 0.5", r)
	}
}

func TestBuildTextVerticesLayoutAndCount(t *testing.T) {
	verts := []stage.TextVertex{
		{X: 1, Y: 2, U: 0.25, V: 0.5, Color: [4]uint8{255, 0, 0, 255}, Flags: stage.FlagMulticolor, Layer: 3},
	}
	data := buildTextVertices(verts)
	if len(data) != textVertexStride {
		t.Fatalf("len(data) = %d, want %d", len(data), textVertexStride)
	}

	flags := binary.LittleEndian.Uint32(data[32:36])
	layer := binary.LittleEndian.Uint32(data[36:40])
	if flags != stage.FlagMulticolor {
		t.Errorf("flags = %d, want %d", flags, stage.FlagMulticolor)
	}
	if layer != 3 {
		t.Errorf("layer = %d, want 3", layer)
	}
}

func TestIsSRGBFormat(t *testing.T) {
	cases := map[gputypes.TextureFormat]bool{
		gputypes.TextureFormatBGRA8UnormSrgb: true,
		gputypes.TextureFormatRGBA8UnormSrgb: true,
		gputypes.TextureFormatRGBA8Unorm:     false,
	}
	for format, want := range cases {
		if got := isSRGBFormat(format); got != want {
			t.Errorf("isSRGBFormat(%v) = %v, want %v", format, got, want)
		}
	}
}
