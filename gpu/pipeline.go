package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/rect.wgsl
var rectShaderSource string

//go:embed shaders/text.wgsl
var textShaderSource string

// rectVertexStride is the byte stride of one Rect vertex: position
// (vec2<f32>, 8 bytes) + color (vec4<f32>, 16 bytes) = 24 bytes.
const rectVertexStride = 24

// textVertexStride is the byte stride of one glyph quad vertex: position
// (vec2<f32>, 8) + uv (vec2<f32>, 8) + color (vec4<f32>, 16) + flags (u32,
// 4) + layer (u32, 4) = 40 bytes.
const textVertexStride = 40

// projectionUniformSize is the byte size of the screen projection uniform:
// offset_x, offset_y, scale_x, scale_y, each f32.
const projectionUniformSize = 16

// Pipeline owns the two render pipelines the Compositor's two-pass frame
// uses: an opaque background rect pipeline and a textured glyph pipeline
// sampling a texture_2d_array atlas.
type Pipeline struct {
	device hal.Device

	projectionLayout hal.BindGroupLayout

	rectShader   hal.ShaderModule
	rectLayout   hal.PipelineLayout
	rectPipeline hal.RenderPipeline

	textShader   hal.ShaderModule
	textLayout   hal.BindGroupLayout
	textPipeLay  hal.PipelineLayout
	textPipeline hal.RenderPipeline
	textSampler  hal.Sampler
}

// NewPipeline compiles both shaders via naga, builds their bind group and
// pipeline layouts, and creates both render pipelines targeting surfaceFormat
// with premultiplied-alpha blending.
func NewPipeline(device hal.Device, surfaceFormat gputypes.TextureFormat) (*Pipeline, error) {
	p := &Pipeline{device: device}

	projLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "ttyrender_projection_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create projection bind group layout: %w", err)
	}
	p.projectionLayout = projLayout

	if err := p.createRectPipeline(surfaceFormat); err != nil {
		p.Close()
		return nil, err
	}
	if err := p.createTextPipeline(surfaceFormat); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) createRectPipeline(surfaceFormat gputypes.TextureFormat) error {
	words, err := compileWGSL(rectShaderSource)
	if err != nil {
		return fmt.Errorf("gpu: compile rect shader: %w", err)
	}

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "ttyrender_rect_shader",
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return fmt.Errorf("gpu: create rect shader module: %w", err)
	}
	p.rectShader = shader

	layout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "ttyrender_rect_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.projectionLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: create rect pipeline layout: %w", err)
	}
	p.rectLayout = layout

	blend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "ttyrender_rect_pipeline",
		Layout: p.rectLayout,
		Vertex: hal.VertexState{
			Module:     p.rectShader,
			EntryPoint: "vs_main",
			Buffers: []gputypes.VertexBufferLayout{
				{
					ArrayStride: rectVertexStride,
					StepMode:    gputypes.VertexStepModeVertex,
					Attributes: []gputypes.VertexAttribute{
						{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
						{Format: gputypes.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &hal.FragmentState{
			Module:     p.rectShader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{Format: surfaceFormat, Blend: &blend, WriteMask: gputypes.ColorWriteMaskAll},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return fmt.Errorf("gpu: create rect pipeline: %w", err)
	}
	p.rectPipeline = pipeline
	return nil
}

func (p *Pipeline) createTextPipeline(surfaceFormat gputypes.TextureFormat) error {
	words, err := compileWGSL(textShaderSource)
	if err != nil {
		return fmt.Errorf("gpu: compile text shader: %w", err)
	}

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "ttyrender_text_shader",
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return fmt.Errorf("gpu: create text shader module: %w", err)
	}
	p.textShader = shader

	textLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "ttyrender_text_resource_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2DArray,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create text resource bind group layout: %w", err)
	}
	p.textLayout = textLayout

	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "ttyrender_atlas_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("gpu: create atlas sampler: %w", err)
	}
	p.textSampler = sampler

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "ttyrender_text_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.projectionLayout, p.textLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: create text pipeline layout: %w", err)
	}
	p.textPipeLay = pipeLayout

	blend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "ttyrender_text_pipeline",
		Layout: p.textPipeLay,
		Vertex: hal.VertexState{
			Module:     p.textShader,
			EntryPoint: "vs_main",
			Buffers: []gputypes.VertexBufferLayout{
				{
					ArrayStride: textVertexStride,
					StepMode:    gputypes.VertexStepModeVertex,
					Attributes: []gputypes.VertexAttribute{
						{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
						{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
						{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
						{Format: gputypes.VertexFormatUint32, Offset: 32, ShaderLocation: 3},
						{Format: gputypes.VertexFormatUint32, Offset: 36, ShaderLocation: 4},
					},
				},
			},
		},
		Fragment: &hal.FragmentState{
			Module:     p.textShader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{Format: surfaceFormat, Blend: &blend, WriteMask: gputypes.ColorWriteMaskAll},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return fmt.Errorf("gpu: create text pipeline: %w", err)
	}
	p.textPipeline = pipeline
	return nil
}

// RectPipeline returns the opaque background rect render pipeline.
func (p *Pipeline) RectPipeline() hal.RenderPipeline { return p.rectPipeline }

// TextPipeline returns the textured glyph render pipeline.
func (p *Pipeline) TextPipeline() hal.RenderPipeline { return p.textPipeline }

// TextSampler returns the sampler bound alongside the atlas texture view in
// the text pass's resource bind group.
func (p *Pipeline) TextSampler() hal.Sampler { return p.textSampler }

// ProjectionLayout returns the bind group layout shared by both pipelines
// for the screen projection uniform (group 0, binding 0).
func (p *Pipeline) ProjectionLayout() hal.BindGroupLayout { return p.projectionLayout }

// TextResourceLayout returns the text pipeline's second bind group layout
// (atlas texture + sampler, group 1).
func (p *Pipeline) TextResourceLayout() hal.BindGroupLayout { return p.textLayout }

// Close releases both pipelines and their shared layouts in reverse
// creation order.
func (p *Pipeline) Close() {
	destroyRenderPipeline(p.device, p.textPipeline)
	destroyPipelineLayout(p.device, p.textPipeLay)
	destroySampler(p.device, p.textSampler)
	destroyBindGroupLayout(p.device, p.textLayout)
	destroyShaderModule(p.device, p.textShader)

	destroyRenderPipeline(p.device, p.rectPipeline)
	destroyPipelineLayout(p.device, p.rectLayout)
	destroyShaderModule(p.device, p.rectShader)

	destroyBindGroupLayout(p.device, p.projectionLayout)
}

// compileWGSL validates and lowers a WGSL source string to a SPIR-V word
// stream via naga, which the hal layer accepts directly in ShaderSource.
func compileWGSL(source string) ([]uint32, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("gpu: naga produced %d bytes, not a multiple of 4", len(spirv))
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	return words, nil
}

func destroyRenderPipeline(d hal.Device, p hal.RenderPipeline) {
	if d != nil && p != nil {
		d.DestroyRenderPipeline(p)
	}
}

func destroyPipelineLayout(d hal.Device, l hal.PipelineLayout) {
	if d != nil && l != nil {
		d.DestroyPipelineLayout(l)
	}
}

func destroyBindGroupLayout(d hal.Device, l hal.BindGroupLayout) {
	if d != nil && l != nil {
		d.DestroyBindGroupLayout(l)
	}
}

func destroyShaderModule(d hal.Device, m hal.ShaderModule) {
	if d != nil && m != nil {
		d.DestroyShaderModule(m)
	}
}

func destroySampler(d hal.Device, s hal.Sampler) {
	if d != nil && s != nil {
		d.DestroySampler(s)
	}
}
