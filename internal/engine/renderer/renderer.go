// Package renderer owns the WebGPU frame pipeline: surface, device,
// queue, the textured-quad render pipeline, the fixed-capacity vertex and
// index buffers, and the atlas texture binding. All GPU-facing failures
// are handled at this boundary.
package renderer

import (
	_ "embed"
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"

	"github.com/esoxlucius42/rusty-matrix/internal/engine/atlas"
	"github.com/esoxlucius42/rusty-matrix/internal/engine/window"
	"github.com/esoxlucius42/rusty-matrix/internal/logger"
	"github.com/esoxlucius42/rusty-matrix/internal/rain"
)

//go:embed shader.wgsl
var shaderSource string

const (
	vertsPerQuad   = 4
	indicesPerQuad = 6
	vertexStride   = uint64(unsafe.Sizeof(rain.Vertex{}))
	indexStride    = uint64(unsafe.Sizeof(uint32(0)))
)

// Config holds renderer construction parameters. MaxGlyphs bounds the
// vertex and index buffers for the lifetime of the pipeline; uploads
// never grow them.
type Config struct {
	Width     int
	Height    int
	MaxGlyphs int
}

// Renderer is the frame pipeline / presenter. It must be created after
// the window exists and is used from the single render loop thread only.
type Renderer struct {
	config Config
	win    *window.Window

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfConfig wgpu.SurfaceConfiguration

	pipeline  *wgpu.RenderPipeline
	bindGroup *wgpu.BindGroup

	vertexBuf *wgpu.Buffer
	indexBuf  *wgpu.Buffer

	atlasTex  *wgpu.Texture
	atlasView *wgpu.TextureView
	sampler   *wgpu.Sampler

	frames uint32
}

// New creates the renderer against the given window, uploads the atlas
// texture, and builds the quad pipeline. Device and adapter acquisition
// is the one blocking suspend point; the steady-state frame path never
// waits on the GPU.
func New(win *window.Window, at *atlas.Atlas, cfg Config) (*Renderer, error) {
	if cfg.MaxGlyphs < 1 {
		cfg.MaxGlyphs = 1
	}
	r := &Renderer{config: cfg, win: win}

	r.instance = wgpu.CreateInstance(nil)
	r.surface = r.instance.CreateSurface(win.SurfaceDescriptor())

	adapter, err := r.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: r.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("requesting adapter: %w", err)
	}
	r.adapter = adapter

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		return nil, fmt.Errorf("requesting device: %w", err)
	}
	r.device = device
	r.queue = device.GetQueue()

	r.configureSurface()

	logger.Info("renderer initialized",
		zap.String("format", r.surfConfig.Format.String()),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("maxGlyphs", cfg.MaxGlyphs),
	)

	if err := r.uploadAtlas(at); err != nil {
		return nil, err
	}
	if err := r.createPipeline(); err != nil {
		return nil, err
	}
	if err := r.createBuffers(); err != nil {
		return nil, err
	}

	return r, nil
}

// configureSurface (re)reads surface capabilities and configures the
// surface at the current size.
func (r *Renderer) configureSurface() {
	caps := r.surface.GetCapabilities(r.adapter)
	format := r.surfConfig.Format
	if len(caps.Formats) > 0 {
		// The format should not change across recreation, but be safe.
		format = caps.Formats[0]
	}
	alphaMode := wgpu.CompositeAlphaModeAuto
	if len(caps.AlphaModes) > 0 {
		alphaMode = caps.AlphaModes[0]
	}
	r.surfConfig = wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(max(r.config.Width, 1)),
		Height:      uint32(max(r.config.Height, 1)),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   alphaMode,
	}
	r.surface.Configure(r.adapter, r.device, &r.surfConfig)
}

// recreateSurface drops the surface and attaches a fresh one to the
// current window handle. Some platforms silently invalidate the surface
// on window-state transitions such as fullscreen toggles, so resize paths
// must recreate rather than merely reconfigure.
func (r *Renderer) recreateSurface() {
	if r.surface != nil {
		r.surface.Release()
	}
	r.surface = r.instance.CreateSurface(r.win.SurfaceDescriptor())
	r.configureSurface()
	logger.Info("surface recreated",
		zap.Int("width", r.config.Width),
		zap.Int("height", r.config.Height),
	)
}

// Resize reconfigures presentation for the new pixel dimensions.
func (r *Renderer) Resize(width, height int) {
	if width < 1 || height < 1 {
		return
	}
	r.config.Width = width
	r.config.Height = height
	r.recreateSurface()
}

// RenderFrame uploads the frame's quads into the pre-allocated buffers,
// clears the surface to opaque black, issues one indexed draw covering
// exactly the emitted index count, submits, and presents. A frame with no
// visible glyphs still clears and presents.
//
// Errors wrapping ErrOutOfMemory are fatal; any other returned error
// means the frame was skipped and the loop may continue.
func (r *Renderer) RenderFrame(verts []rain.Vertex, indices []uint32) error {
	r.frames++

	if n := r.config.MaxGlyphs * indicesPerQuad; len(indices) > n {
		// The mesh builder is sized to the same bound, so this is a
		// programming error rather than a runtime condition.
		indices = indices[:n]
		verts = verts[:r.config.MaxGlyphs*vertsPerQuad]
	}
	if len(indices) > 0 {
		if err := r.queue.WriteBuffer(r.vertexBuf, 0, wgpu.ToBytes(verts)); err != nil {
			return fmt.Errorf("writing vertex buffer: %w", err)
		}
		if err := r.queue.WriteBuffer(r.indexBuf, 0, wgpu.ToBytes(indices)); err != nil {
			return fmt.Errorf("writing index buffer: %w", err)
		}
	}

	tex, err := r.acquireTexture()
	if err != nil {
		return err
	}
	defer tex.Release()

	view, err := tex.CreateView(nil)
	if err != nil {
		return fmt.Errorf("creating surface view: %w", err)
	}
	defer view.Release()

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("creating command encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "rain pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	if len(indices) > 0 {
		pass.SetPipeline(r.pipeline)
		pass.SetBindGroup(0, r.bindGroup, nil)
		pass.SetVertexBuffer(0, r.vertexBuf, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(r.indexBuf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(uint32(len(indices)), 1, 0, 0, 0)
	}
	pass.End()
	pass.Release()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finishing command encoder: %w", err)
	}
	// Fire and forget: the bounded swapchain provides back-pressure.
	r.queue.Submit(cmd)
	cmd.Release()

	r.surface.Present()
	return nil
}

// acquireTexture gets the next presentable surface texture. A lost or
// outdated surface is recreated against the current window handle and
// acquisition retried once before the failure propagates.
func (r *Renderer) acquireTexture() (*wgpu.Texture, error) {
	tex, err := r.surface.GetCurrentTexture()
	if err != nil && isSurfaceLoss(err) {
		logger.Warn("surface lost, recreating", zap.Error(err))
		r.recreateSurface()
		tex, err = r.surface.GetCurrentTexture()
	}
	if err != nil {
		if isOutOfMemory(err) {
			return nil, fmt.Errorf("acquiring surface texture: %w: %v", ErrOutOfMemory, err)
		}
		return nil, fmt.Errorf("acquiring surface texture: %w", err)
	}
	return tex, nil
}

// uploadAtlas creates the atlas texture, uploads the pixels, and builds
// the sampler. The pixel data is RGBA at the atlas's fixed dimensions.
func (r *Renderer) uploadAtlas(at *atlas.Atlas) error {
	tex, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "font atlas",
		Size: wgpu.Extent3D{
			Width:              atlas.Width,
			Height:             atlas.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("creating atlas texture: %w", err)
	}
	r.atlasTex = tex

	r.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Aspect:   wgpu.TextureAspectAll,
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
		},
		at.Pix.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  4 * atlas.Width,
			RowsPerImage: atlas.Height,
		},
		&wgpu.Extent3D{
			Width:              atlas.Width,
			Height:             atlas.Height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		return fmt.Errorf("creating atlas view: %w", err)
	}
	r.atlasView = view

	sampler, err := r.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "glyph sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   1,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("creating sampler: %w", err)
	}
	r.sampler = sampler

	logger.Info("atlas uploaded", zap.Int("glyphs", len(at.Glyphs)))
	return nil
}

// createPipeline builds the single textured-and-colored-quad pipeline:
// alpha-blended color (source-alpha over destination), straight-replace
// alpha, CCW front faces with back-face culling.
func (r *Renderer) createPipeline() error {
	shader, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "rain shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaderSource},
	})
	if err != nil {
		return fmt.Errorf("creating shader module: %w", err)
	}
	defer shader.Release()

	bgl, err := r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "atlas bind group layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
					Multisampled:  false,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating bind group layout: %w", err)
	}
	defer bgl.Release()

	bindGroup, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "atlas bind group",
		Layout: bgl,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: r.atlasView},
			{Binding: 1, Sampler: r.sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("creating bind group: %w", err)
	}
	r.bindGroup = bindGroup

	layout, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "rain pipeline layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		return fmt.Errorf("creating pipeline layout: %w", err)
	}
	defer layout.Release()

	pipeline, err := r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "rain pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: vertexStride,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:         wgpu.PrimitiveTopologyTriangleList,
			StripIndexFormat: wgpu.IndexFormatUndefined,
			FrontFace:        wgpu.FrontFaceCCW,
			CullMode:         wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count:                  1,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: r.surfConfig.Format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorZero,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("creating render pipeline: %w", err)
	}
	r.pipeline = pipeline
	return nil
}

// createBuffers allocates the vertex and index buffers at their fixed
// upper bound. Per-frame uploads write into these; they are never
// reallocated.
func (r *Renderer) createBuffers() error {
	vbuf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "rain vertex buffer",
		Size:  uint64(r.config.MaxGlyphs*vertsPerQuad) * vertexStride,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("creating vertex buffer: %w", err)
	}
	r.vertexBuf = vbuf

	ibuf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "rain index buffer",
		Size:  uint64(r.config.MaxGlyphs*indicesPerQuad) * indexStride,
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("creating index buffer: %w", err)
	}
	r.indexBuf = ibuf
	return nil
}

// Release frees all GPU resources. The renderer must not be used after.
func (r *Renderer) Release() {
	logger.Info("releasing renderer", zap.Uint32("frames", r.frames))
	if r.indexBuf != nil {
		r.indexBuf.Release()
	}
	if r.vertexBuf != nil {
		r.vertexBuf.Release()
	}
	if r.pipeline != nil {
		r.pipeline.Release()
	}
	if r.bindGroup != nil {
		r.bindGroup.Release()
	}
	if r.sampler != nil {
		r.sampler.Release()
	}
	if r.atlasView != nil {
		r.atlasView.Release()
	}
	if r.atlasTex != nil {
		r.atlasTex.Release()
	}
	if r.device != nil {
		r.device.Release()
	}
	if r.surface != nil {
		r.surface.Release()
	}
	if r.adapter != nil {
		r.adapter.Release()
	}
	if r.instance != nil {
		r.instance.Release()
	}
}
