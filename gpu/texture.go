package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"
)

// TextureArrayFormat is the pixel format the atlas texture array is created
// with. RGBA8 matches glyph.Loader's upload buffers, which are always
// converted to tightly packed RGBA8 before reaching Upload.
const TextureArrayFormat = gputypes.TextureFormatRGBA8Unorm

// TextureArray owns the GPU texture array backing an atlas.Array: one
// TextureArray layer per atlas page, all the same size.
//
// TextureArray implements glyph.TextureUploader and atlas.LayerZeroer, so it
// can be handed directly to glyph.NewLoader and atlas.Array.SetZeroEvictedLayer.
type TextureArray struct {
	device hal.Device
	queue  hal.Queue

	texture hal.Texture
	view    hal.TextureView

	pageSize int
	layers   int
}

// NewTextureArray creates a pageSize x pageSize x layers RGBA8 texture array
// with TextureBinding | CopyDst usage, plus a 2D-array view over all layers.
func NewTextureArray(device hal.Device, queue hal.Queue, pageSize, layers int) (*TextureArray, error) {
	if pageSize <= 0 || layers <= 0 {
		return nil, fmt.Errorf("gpu: invalid texture array dimensions %dx%d x%d", pageSize, pageSize, layers)
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: "ttyrender_atlas",
		Size: hal.Extent3D{
			Width:              uint32(pageSize),
			Height:             uint32(pageSize),
			DepthOrArrayLayers: uint32(layers),
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        TextureArrayFormat,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create atlas texture array: %w", err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           "ttyrender_atlas_view",
		Format:          TextureArrayFormat,
		Dimension:       gputypes.TextureViewDimension2DArray,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: uint32(layers),
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("gpu: create atlas texture array view: %w", err)
	}

	return &TextureArray{
		device:   device,
		queue:    queue,
		texture:  tex,
		view:     view,
		pageSize: pageSize,
		layers:   layers,
	}, nil
}

// View returns the 2D-array view bound into the text pipeline's fragment
// bind group.
func (t *TextureArray) View() hal.TextureView { return t.view }

// Upload writes one w x h region of rgba (RGBA8, stride 4*w) to (x, y) on
// the given layer. It implements glyph.TextureUploader.
func (t *TextureArray) Upload(layer, x, y, w, h int, rgba []byte) error {
	if layer < 0 || layer >= t.layers {
		return fmt.Errorf("gpu: atlas upload: layer %d out of range [0,%d)", layer, t.layers)
	}
	if x < 0 || y < 0 || x+w > t.pageSize || y+h > t.pageSize {
		return fmt.Errorf("gpu: atlas upload: region (%d,%d)+(%dx%d) exceeds page bounds %dx%d",
			x, y, w, h, t.pageSize, t.pageSize)
	}
	if len(rgba) < w*h*4 {
		return fmt.Errorf("gpu: atlas upload: buffer too small: have %d bytes, need %d", len(rgba), w*h*4)
	}

	t.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.texture,
			MipLevel: 0,
			Origin:   gputypes.Origin3D{X: uint32(x), Y: uint32(y), Z: uint32(layer)},
			Aspect:   gputypes.TextureAspectAll,
		},
		rgba,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(w * 4),
			RowsPerImage: uint32(h),
		},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
	return nil
}

// ZeroLayer overwrites an entire layer with transparent black. It implements
// atlas.LayerZeroer, invoked only when zero_evicted_atlas_layer is enabled.
//
// The zero-fill is produced by compositing image.Transparent over a staging
// RGBA image with draw.Draw, rather than hand-rolling the byte-fill loop,
// since the resulting buffer must still be a tightly packed RGBA8 plane in
// the same layout Upload expects.
func (t *TextureArray) ZeroLayer(layer int) error {
	if layer < 0 || layer >= t.layers {
		return fmt.Errorf("gpu: zero layer %d out of range [0,%d)", layer, t.layers)
	}
	staging := image.NewRGBA(image.Rect(0, 0, t.pageSize, t.pageSize))
	draw.Draw(staging, staging.Bounds(), image.Transparent, image.Point{}, draw.Src)
	return t.Upload(layer, 0, 0, t.pageSize, t.pageSize, staging.Pix)
}

// Close releases the texture array's GPU resources.
func (t *TextureArray) Close() {
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.texture != nil {
		t.device.DestroyTexture(t.texture)
		t.texture = nil
	}
}
