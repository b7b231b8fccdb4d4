package ttyrender

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ttyrender/atlas"
	"github.com/gogpu/ttyrender/glyph"
	"github.com/gogpu/ttyrender/gpu"
	"github.com/gogpu/ttyrender/internal/rlog"
	"github.com/gogpu/ttyrender/stage"
)

// fenceWait bounds how long Compositor waits for the GPU to finish a
// frame's render passes before presenting. The swapchain's own
// desired_maximum_frame_latency of 1 keeps the steady-state wait far below
// this; it exists only to fail loudly on a wedged device.
const fenceWait = 2 * time.Second

// Compositor is the GPU text rendering core: it owns the glyph atlas, the
// rect and text render pipelines, the projection uniform, and the per-frame
// scratch buffers, and presents one composed frame per DrawFrame call.
//
// Compositor is not safe for concurrent use from multiple goroutines beyond
// the mutex guarding Close/DrawFrame/Resize against each other; it is
// designed to be driven by a single render loop goroutine.
type Compositor struct {
	mu     sync.Mutex
	closed bool

	device hal.Device
	queue  hal.Queue

	surface  *gpu.Surface
	pipeline *gpu.Pipeline
	textures *gpu.TextureArray

	pages  *atlas.Array
	loader *glyph.Loader
	cache  *glyphCache
	stager *stage.Stager
	scr    stage.FrameScratch

	metrics         stage.GridMetrics
	width, height   uint32
	projection      Projection
	subpixelEnabled bool
	pendingClear    RGBA // premultiplied; zero value is transparent

	projBuf   hal.Buffer
	projGroup hal.BindGroup
	textGroup hal.BindGroup
}

// New creates a Compositor. device supplies the live GPU device and queue
// the host application already owns; window is the swapchain collaborator
// the Compositor presents into; metrics describes the terminal grid's cell
// geometry; rasterizer fills atlas misses.
func New(cfg Config, device gpu.DeviceHandle, window gpu.WindowHandle, width, height uint32, metrics stage.GridMetrics, rasterizer GlyphRasterizer) (*Compositor, error) {
	if device == nil {
		return nil, ErrNilDeviceHandle
	}
	if window == nil {
		return nil, ErrNilWindowHandle
	}
	if err := cfg.Validate(); err != nil {
		return nil, &InitError{Stage: "config", Err: err}
	}

	surface, err := gpu.NewSurface(window, width, height, cfg.SrgbPreference)
	if err != nil {
		return nil, &InitError{Stage: "surface", Err: err}
	}

	pipeline, err := gpu.NewPipeline(device.Device(), surface.Format())
	if err != nil {
		return nil, &InitError{Stage: "pipeline", Err: err}
	}

	textures, err := gpu.NewTextureArray(device.Device(), device.Queue(), cfg.PageSize, cfg.PageCount)
	if err != nil {
		pipeline.Close()
		return nil, &InitError{Stage: "atlas texture", Err: err}
	}

	pages := atlas.NewArray(cfg.PageCount, cfg.PageSize, cfg.EvictionPolicy)
	pages.SetZeroEvictedLayer(cfg.ZeroEvictedLayer, textures)
	pages.SetReportInterval(uint64(cfg.AtlasReportIntervalFrames))

	loader := glyph.NewLoader(pages, textures)
	cache := newGlyphCache(loader, rasterizer)

	subpixelEnabled := cfg.SubpixelPreference.Resolve(isSRGBFormat(surface.Format()))

	c := &Compositor{
		device:          device.Device(),
		queue:           device.Queue(),
		surface:         surface,
		pipeline:        pipeline,
		textures:        textures,
		pages:           pages,
		loader:          loader,
		cache:           cache,
		metrics:         metrics,
		width:           width,
		height:          height,
		projection:      NewProjection(width, height),
		subpixelEnabled: subpixelEnabled,
	}
	c.stager = stage.NewStager(&c.scr, metrics, cache, subpixelEnabled)

	if err := c.createPersistentBindGroups(); err != nil {
		c.Close()
		return nil, &InitError{Stage: "bind groups", Err: err}
	}

	return c, nil
}

func (c *Compositor) createPersistentBindGroups() error {
	buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "ttyrender_projection",
		Size:  16,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create projection buffer: %w", err)
	}
	c.projBuf = buf
	c.writeProjection()

	projGroup, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "ttyrender_projection_group",
		Layout: c.pipeline.ProjectionLayout(),
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: c.projBuf.NativeHandle(), Offset: 0, Size: 16}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create projection bind group: %w", err)
	}
	c.projGroup = projGroup

	textGroup, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "ttyrender_text_resource_group",
		Layout: c.pipeline.TextResourceLayout(),
		Entries: []gputypes.BindGroupEntry{
			{Binding: 1, Resource: c.textures.View()},
			{Binding: 2, Resource: c.pipeline.TextSampler()},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create text resource bind group: %w", err)
	}
	c.textGroup = textGroup

	return nil
}

func (c *Compositor) writeProjection() {
	bytes := c.projection.Bytes()
	c.queue.WriteBuffer(c.projBuf, 0, bytes[:])
}

// Resize updates the stored surface size and rewrites the projection
// uniform. Per the draw_rects contract the surface itself is reconfigured
// lazily on the next DrawFrame, not here.
func (c *Compositor) Resize(width, height uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.width, c.height = width, height
	c.projection = NewProjection(width, height)
	c.surface.Resize(width, height)
	c.writeProjection()
}

// Clear records rgb/alpha, premultiplied, as the color the next DrawFrame's
// rect pass clears to. It does not submit a frame by itself; the recorded
// value is consumed (and left in place, for repeated frames) by DrawFrame.
// Until Clear is called the pass clears to transparent.
func (c *Compositor) Clear(rgb RGBA, alpha float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pendingClear = RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: alpha}.Premultiply()
}

// DrawFrame resolves one pending atlas eviction if the previous frame
// triggered one, stages cells, and composes and presents one frame: an
// opaque background rect pass followed (when there is any staged text) by a
// textured glyph pass loaded over it. The rect pass draws the cells' staged
// backgrounds followed by rects, the caller's own ad-hoc rectangles (cursor
// and selection overlays, for instance), in that order.
//
// A dropped surface acquisition (see gpu.ErrFrameDropped) is not an error:
// the frame is silently skipped and the host drives the next one.
func (c *Compositor) DrawFrame(cells []stage.Cell, rects []stage.Rect) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	if c.pages.TakeAtlasEvicted() {
		c.pages.EvictOnePage()
		if layer, ok := c.pages.LastEvictedLayer(); ok {
			c.cache.InvalidateLayer(layer)
		}
	}

	c.scr.Reset()
	c.stager.DrawCells(cells)

	view, err := c.surface.AcquireFrame()
	if err != nil {
		rlog.Get().Warn("ttyrender: frame dropped", "err", err)
		return nil
	}

	if err := c.submitFrame(view, rects); err != nil {
		return err
	}

	if err := c.surface.Present(); err != nil {
		return fmt.Errorf("ttyrender: present: %w", err)
	}

	c.pages.Tick()
	return nil
}

func (c *Compositor) submitFrame(view hal.TextureView, rects []stage.Rect) error {
	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "ttyrender_frame"})
	if err != nil {
		return fmt.Errorf("ttyrender: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("ttyrender_frame"); err != nil {
		return fmt.Errorf("ttyrender: begin encoding: %w", err)
	}

	var rectBuf, textBuf hal.Buffer
	defer func() {
		if rectBuf != nil {
			c.device.DestroyBuffer(rectBuf)
		}
		if textBuf != nil {
			c.device.DestroyBuffer(textBuf)
		}
	}()

	rectCount := uint32((len(c.scr.PendingBG) + len(rects)) * 6)
	if rectCount > 0 {
		data := buildRectVertices(c.scr.PendingBG, rects)
		rectBuf, err = c.createAndUploadBuffer("ttyrender_rect_verts", data, gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
		if err != nil {
			encoder.DiscardEncoding()
			return err
		}
	}

	clear := c.pendingClear
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "ttyrender_rects",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: clear.R, G: clear.G, B: clear.B, A: clear.A},
		}},
	})
	if rectCount > 0 {
		rp.SetPipeline(c.pipeline.RectPipeline())
		rp.SetBindGroup(0, c.projGroup, nil)
		rp.SetVertexBuffer(0, rectBuf, 0)
		rp.Draw(rectCount, 1, 0, 0)
	}
	rp.End()

	textCount := uint32(len(c.scr.PendingText))
	if textCount > 0 {
		data := buildTextVertices(c.scr.PendingText)
		textBuf, err = c.createAndUploadBuffer("ttyrender_text_verts", data, gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
		if err != nil {
			encoder.DiscardEncoding()
			return err
		}

		textPass := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: "ttyrender_text",
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:    view,
				LoadOp:  gputypes.LoadOpLoad,
				StoreOp: gputypes.StoreOpStore,
			}},
		})
		textPass.SetPipeline(c.pipeline.TextPipeline())
		textPass.SetBindGroup(0, c.projGroup, nil)
		textPass.SetBindGroup(1, c.textGroup, nil)
		textPass.SetVertexBuffer(0, textBuf, 0)
		textPass.Draw(textCount, 1, 0, 0)
		textPass.End()
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("ttyrender: end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmdBuf)

	fence, err := c.device.CreateFence()
	if err != nil {
		return fmt.Errorf("ttyrender: create fence: %w", err)
	}
	defer c.device.DestroyFence(fence)

	if err := c.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("ttyrender: submit: %w", err)
	}
	ok, err := c.device.Wait(fence, 1, fenceWait)
	if err != nil || !ok {
		return fmt.Errorf("ttyrender: wait for GPU: ok=%v err=%w", ok, err)
	}
	return nil
}

func (c *Compositor) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: uint64(len(data)), Usage: usage})
	if err != nil {
		return nil, fmt.Errorf("ttyrender: create %s: %w", label, err)
	}
	c.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// Close releases the Compositor's GPU resources. Safe to call once; a
// second call returns ErrClosed.
func (c *Compositor) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.closed = true

	if c.projGroup != nil {
		c.device.DestroyBindGroup(c.projGroup)
	}
	if c.textGroup != nil {
		c.device.DestroyBindGroup(c.textGroup)
	}
	if c.projBuf != nil {
		c.device.DestroyBuffer(c.projBuf)
	}
	if c.textures != nil {
		c.textures.Close()
	}
	if c.pipeline != nil {
		c.pipeline.Close()
	}
	return nil
}

// buildRectVertices expands each Rect from every group, in order, into six
// vertices (two triangles) of position + premultiplied-alpha color,
// matching rect.wgsl's VertexInput layout. Callers pass the staged
// backgrounds followed by the caller's own rectangles, so the staged
// backgrounds draw first and the caller's rects draw (and so composite)
// over them.
func buildRectVertices(groups ...[]stage.Rect) []byte {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	out := make([]byte, 0, total*6*rectVertexStride)
	for _, g := range groups {
		for _, r := range g {
			cr := [4]float32{
				float32(r.R * r.Alpha), float32(r.G * r.Alpha), float32(r.B * r.Alpha), float32(r.Alpha),
			}
			x0, y0 := float32(r.X), float32(r.Y)
			x1, y1 := float32(r.X+r.W), float32(r.Y+r.H)

			corners := [6][2]float32{
				{x0, y0}, {x1, y0}, {x0, y1},
				{x1, y0}, {x1, y1}, {x0, y1},
			}
			for _, p := range corners {
				out = appendFloat32(out, p[0])
				out = appendFloat32(out, p[1])
				out = appendFloat32(out, cr[0])
				out = appendFloat32(out, cr[1])
				out = appendFloat32(out, cr[2])
				out = appendFloat32(out, cr[3])
			}
		}
	}
	return out
}

const rectVertexStride = 24

// buildTextVertices serializes staged glyph quad vertices to text.wgsl's
// VertexInput layout: position, uv, premultiplied color, flags, layer.
func buildTextVertices(verts []stage.TextVertex) []byte {
	out := make([]byte, 0, len(verts)*textVertexStride)
	for _, v := range verts {
		a := float32(v.Color[3]) / 255
		cr := [4]float32{
			float32(v.Color[0]) / 255 * a,
			float32(v.Color[1]) / 255 * a,
			float32(v.Color[2]) / 255 * a,
			a,
		}
		out = appendFloat32(out, float32(v.X))
		out = appendFloat32(out, float32(v.Y))
		out = appendFloat32(out, v.U)
		out = appendFloat32(out, v.V)
		out = appendFloat32(out, cr[0])
		out = appendFloat32(out, cr[1])
		out = appendFloat32(out, cr[2])
		out = appendFloat32(out, cr[3])
		out = appendUint32(out, v.Flags)
		out = appendUint32(out, v.Layer)
	}
	return out
}

const textVertexStride = 40

func appendFloat32(buf []byte, f float32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(f))
	return append(buf, b[:]...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func isSRGBFormat(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatBGRA8UnormSrgb, gputypes.TextureFormatRGBA8UnormSrgb:
		return true
	default:
		return false
	}
}
