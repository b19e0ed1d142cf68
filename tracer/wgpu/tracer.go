package wgpu

import (
	_ "embed"
	"fmt"
	"image"
	"time"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/aaalloc/sviet/log"
	"github.com/aaalloc/sviet/tracer"
)

//go:embed shader/raytracing.wgsl
var shaderSource string

// Texture rows must be aligned to 256 bytes for texture-to-buffer copies.
const bytesPerRowAlignment = 256

// Fullscreen triangle covering clip space; texcoords run past 1.0 on the
// extended edges so the visible region maps to [0, 1].
var fullscreenTriangle = []float32{
	// x, y, u, v
	-1.0, -1.0, 0.0, 0.0,
	3.0, -1.0, 2.0, 0.0,
	-1.0, 3.0, 0.0, 2.0,
}

type pendingChange struct {
	changeType tracer.ChangeType
	data       interface{}
}

// wgpuTracer renders frames with a fragment shader that path-traces the
// uploaded scene buffers into an accumulation buffer and an offscreen
// texture.
type wgpuTracer struct {
	logger log.Logger
	dev    *Device

	frameW uint32
	frameH uint32

	pipeline     *wgpu.RenderPipeline
	vertexBuffer *wgpu.Buffer

	// Bind group 0: per-frame uniforms plus the accumulation buffer.
	frameBindGroupLayout *wgpu.BindGroupLayout
	frameBindGroup       *wgpu.BindGroup
	cameraBuffer         *UniformBuffer
	frameDataBuffer      *UniformBuffer
	renderParamBuffer    *UniformBuffer
	accumBuffer          *StorageBuffer

	// Bind group 1: flattened scene geometry.
	sceneBindGroupLayout *wgpu.BindGroupLayout
	sceneBindGroup       *wgpu.BindGroup
	objectBuffer         *StorageBuffer
	sphereBuffer         *StorageBuffer
	triangleBuffer       *StorageBuffer
	materialBuffer       *StorageBuffer
	bvhBuffer            *StorageBuffer

	target     *wgpu.Texture
	targetView *wgpu.TextureView

	pendingChanges []pendingChange
	stats          tracer.Stats
}

// Create a tracer backed by the default high-performance adapter.
func NewTracer() (tracer.Tracer, error) {
	dev, err := NewDevice()
	if err != nil {
		return nil, err
	}

	return &wgpuTracer{
		logger: log.New("wgpu tracer"),
		dev:    dev,
	}, nil
}

func (tr *wgpuTracer) Id() string {
	return tr.dev.Name()
}

// Allocate the render target, the accumulation buffer, the scene buffers
// and the render pipeline for the given frame dimensions.
func (tr *wgpuTracer) Setup(frameW, frameH uint32) error {
	if frameW == 0 || frameH == 0 {
		return fmt.Errorf("wgpu tracer: invalid frame dimensions %dx%d", frameW, frameH)
	}
	tr.frameW, tr.frameH = frameW, frameH

	var err error
	device := tr.dev.Handle()

	tr.target, err = device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "render target",
		Size: wgpu.Extent3D{
			Width:              frameW,
			Height:             frameH,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("wgpu tracer: could not create render target: %w", err)
	}

	tr.targetView, err = tr.target.CreateView(nil)
	if err != nil {
		return fmt.Errorf("wgpu tracer: could not create target view: %w", err)
	}

	tr.vertexBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "vertex buffer",
		Size:  uint64(len(fullscreenTriangle) * 4),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu tracer: could not create vertex buffer: %w", err)
	}
	tr.dev.Queue().WriteBuffer(tr.vertexBuffer, 0, asBytes(fullscreenTriangle))

	if err = tr.setupFrameGroup(); err != nil {
		return err
	}
	if err = tr.setupSceneGroup(); err != nil {
		return err
	}
	if err = tr.setupPipeline(); err != nil {
		return err
	}

	tr.logger.Debugf("allocated %dx%d render target and accumulation buffer", frameW, frameH)
	return nil
}

func (tr *wgpuTracer) setupFrameGroup() error {
	var err error

	if tr.cameraBuffer, err = NewUniformBuffer(tr.dev, "camera buffer", 0, 96); err != nil {
		return fmt.Errorf("wgpu tracer: could not create camera buffer: %w", err)
	}
	if tr.frameDataBuffer, err = NewUniformBuffer(tr.dev, "frame data buffer", 1, 16); err != nil {
		return fmt.Errorf("wgpu tracer: could not create frame data buffer: %w", err)
	}
	if tr.renderParamBuffer, err = NewUniformBuffer(tr.dev, "render param buffer", 2, 32); err != nil {
		return fmt.Errorf("wgpu tracer: could not create render param buffer: %w", err)
	}

	// One vec3 (16-byte stride) per pixel of running radiance sums.
	accumSize := uint64(tr.frameW) * uint64(tr.frameH) * 16
	if tr.accumBuffer, err = NewStorageBuffer(tr.dev, "accumulation buffer", 3, accumSize, false); err != nil {
		return fmt.Errorf("wgpu tracer: could not create accumulation buffer: %w", err)
	}

	tr.frameBindGroupLayout, err = tr.dev.Handle().CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "frame layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			tr.cameraBuffer.LayoutEntry(wgpu.ShaderStageFragment),
			tr.frameDataBuffer.LayoutEntry(wgpu.ShaderStageFragment),
			tr.renderParamBuffer.LayoutEntry(wgpu.ShaderStageFragment),
			tr.accumBuffer.LayoutEntry(wgpu.ShaderStageFragment),
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu tracer: could not create frame layout: %w", err)
	}

	return tr.rebuildFrameBindGroup()
}

func (tr *wgpuTracer) rebuildFrameBindGroup() error {
	if tr.frameBindGroup != nil {
		tr.frameBindGroup.Release()
	}

	var err error
	tr.frameBindGroup, err = tr.dev.Handle().CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "frame bind group",
		Layout: tr.frameBindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			tr.cameraBuffer.BindingEntry(),
			tr.frameDataBuffer.BindingEntry(),
			tr.renderParamBuffer.BindingEntry(),
			tr.accumBuffer.BindingEntry(),
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu tracer: could not create frame bind group: %w", err)
	}
	return nil
}

func (tr *wgpuTracer) setupSceneGroup() error {
	var err error

	// Scene buffers start with a minimal allocation and grow on the first
	// geometry upload.
	alloc := func(label string, binding uint32) (*StorageBuffer, error) {
		return NewStorageBuffer(tr.dev, label, binding, 16, true)
	}

	if tr.objectBuffer, err = alloc("objects buffer", 0); err != nil {
		return fmt.Errorf("wgpu tracer: could not create objects buffer: %w", err)
	}
	if tr.sphereBuffer, err = alloc("sphere buffer", 1); err != nil {
		return fmt.Errorf("wgpu tracer: could not create sphere buffer: %w", err)
	}
	if tr.triangleBuffer, err = alloc("triangle buffer", 2); err != nil {
		return fmt.Errorf("wgpu tracer: could not create triangle buffer: %w", err)
	}
	if tr.materialBuffer, err = alloc("material buffer", 3); err != nil {
		return fmt.Errorf("wgpu tracer: could not create material buffer: %w", err)
	}
	if tr.bvhBuffer, err = alloc("bvh buffer", 4); err != nil {
		return fmt.Errorf("wgpu tracer: could not create bvh buffer: %w", err)
	}

	tr.sceneBindGroupLayout, err = tr.dev.Handle().CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "scene layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			tr.objectBuffer.LayoutEntry(wgpu.ShaderStageFragment),
			tr.sphereBuffer.LayoutEntry(wgpu.ShaderStageFragment),
			tr.triangleBuffer.LayoutEntry(wgpu.ShaderStageFragment),
			tr.materialBuffer.LayoutEntry(wgpu.ShaderStageFragment),
			tr.bvhBuffer.LayoutEntry(wgpu.ShaderStageFragment),
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu tracer: could not create scene layout: %w", err)
	}

	return tr.rebuildSceneBindGroup()
}

func (tr *wgpuTracer) rebuildSceneBindGroup() error {
	if tr.sceneBindGroup != nil {
		tr.sceneBindGroup.Release()
	}

	var err error
	tr.sceneBindGroup, err = tr.dev.Handle().CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "scene bind group",
		Layout: tr.sceneBindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			tr.objectBuffer.BindingEntry(),
			tr.sphereBuffer.BindingEntry(),
			tr.triangleBuffer.BindingEntry(),
			tr.materialBuffer.BindingEntry(),
			tr.bvhBuffer.BindingEntry(),
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu tracer: could not create scene bind group: %w", err)
	}
	return nil
}

func (tr *wgpuTracer) setupPipeline() error {
	device := tr.dev.Handle()

	shader, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "raytracing shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: shaderSource,
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu tracer: could not compile shader: %w", err)
	}
	defer shader.Release()

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "render pipeline layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{tr.frameBindGroupLayout, tr.sceneBindGroupLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu tracer: could not create pipeline layout: %w", err)
	}
	defer pipelineLayout.Release()

	tr.pipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "render pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: 16,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{
							Format:         wgpu.VertexFormatFloat32x2,
							Offset:         0,
							ShaderLocation: 0,
						},
						{
							Format:         wgpu.VertexFormatFloat32x2,
							Offset:         8,
							ShaderLocation: 1,
						},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main_srgb",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    wgpu.TextureFormatRGBA8UnormSrgb,
					Blend:     &wgpu.BlendStateReplace,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu tracer: could not create pipeline: %w", err)
	}

	return nil
}

func (tr *wgpuTracer) AppendChange(changeType tracer.ChangeType, data interface{}) {
	tr.pendingChanges = append(tr.pendingChanges, pendingChange{
		changeType: changeType,
		data:       data,
	})
}

// Push all staged changes to the device in submission order. The scene bind
// group is recreated once at the end if any geometry buffer had to grow.
func (tr *wgpuTracer) ApplyPendingChanges() error {
	sceneDirty := false

	apply := func(buf *StorageBuffer, data interface{}) error {
		realloc, err := buf.Write(tr.dev, data)
		if realloc {
			sceneDirty = true
		}
		return err
	}

	for _, change := range tr.pendingChanges {
		var err error
		switch change.changeType {
		case tracer.UpdateCamera:
			tr.cameraBuffer.Write(tr.dev, change.data)
		case tracer.UpdateFrameData:
			tr.frameDataBuffer.Write(tr.dev, change.data)
		case tracer.UpdateRenderParam:
			tr.renderParamBuffer.Write(tr.dev, change.data)
		case tracer.SetObjects:
			err = apply(tr.objectBuffer, change.data)
		case tracer.SetSpheres:
			err = apply(tr.sphereBuffer, change.data)
		case tracer.SetTriangles:
			err = apply(tr.triangleBuffer, change.data)
		case tracer.SetMaterials:
			err = apply(tr.materialBuffer, change.data)
		case tracer.SetBvhNodes:
			err = apply(tr.bvhBuffer, change.data)
		default:
			err = fmt.Errorf("unsupported change type %d", change.changeType)
		}
		if err != nil {
			tr.pendingChanges = tr.pendingChanges[:0]
			return fmt.Errorf("wgpu tracer: could not apply change: %w", err)
		}
	}
	tr.pendingChanges = tr.pendingChanges[:0]

	if sceneDirty {
		tr.logger.Debug("scene buffers grew; recreating scene bind group")
		return tr.rebuildSceneBindGroup()
	}
	return nil
}

// Render a single accumulation pass into the offscreen target.
func (tr *wgpuTracer) RenderFrame() error {
	start := time.Now()

	encoder, err := tr.dev.Handle().CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("wgpu tracer: could not create command encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "render pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       tr.targetView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0.012, G: 0.012, B: 0.012, A: 1.0},
			},
		},
	})
	pass.SetPipeline(tr.pipeline)
	pass.SetBindGroup(0, tr.frameBindGroup, nil)
	pass.SetBindGroup(1, tr.sceneBindGroup, nil)
	pass.SetVertexBuffer(0, tr.vertexBuffer, 0, wgpu.WholeSize)
	pass.Draw(3, 1, 0, 0)
	pass.End()
	pass.Release()

	commands, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("wgpu tracer: could not encode frame: %w", err)
	}
	tr.dev.Queue().Submit(commands)
	commands.Release()
	tr.dev.Wait()

	tr.stats.FrameCount++
	tr.stats.FrameTime = time.Since(start).Nanoseconds()
	return nil
}

// Copy the render target into a mappable buffer and decode it into an RGBA
// image.
func (tr *wgpuTracer) ReadFrame() (*image.RGBA, error) {
	rowBytes := tr.frameW * 4
	paddedRowBytes := (rowBytes + bytesPerRowAlignment - 1) / bytesPerRowAlignment * bytesPerRowAlignment

	readback, err := tr.dev.Handle().CreateBuffer(&wgpu.BufferDescriptor{
		Label: "readback buffer",
		Size:  uint64(paddedRowBytes) * uint64(tr.frameH),
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu tracer: could not create readback buffer: %w", err)
	}
	defer readback.Release()

	encoder, err := tr.dev.Handle().CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("wgpu tracer: could not create command encoder: %w", err)
	}
	defer encoder.Release()

	encoder.CopyTextureToBuffer(
		tr.target.AsImageCopy(),
		&wgpu.ImageCopyBuffer{
			Buffer: readback,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  paddedRowBytes,
				RowsPerImage: tr.frameH,
			},
		},
		&wgpu.Extent3D{
			Width:              tr.frameW,
			Height:             tr.frameH,
			DepthOrArrayLayers: 1,
		},
	)

	commands, err := encoder.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("wgpu tracer: could not encode readback: %w", err)
	}
	tr.dev.Queue().Submit(commands)
	commands.Release()

	var mapStatus wgpu.BufferMapAsyncStatus
	err = readback.MapAsync(wgpu.MapModeRead, 0, readback.GetSize(), func(status wgpu.BufferMapAsyncStatus) {
		mapStatus = status
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu tracer: could not map readback buffer: %w", err)
	}
	tr.dev.Wait()
	if mapStatus != wgpu.BufferMapAsyncStatusSuccess {
		return nil, fmt.Errorf("wgpu tracer: readback map failed with status %d", mapStatus)
	}
	defer readback.Unmap()

	data := readback.GetMappedRange(0, uint(readback.GetSize()))

	img := image.NewRGBA(image.Rect(0, 0, int(tr.frameW), int(tr.frameH)))
	for y := uint32(0); y < tr.frameH; y++ {
		src := data[y*paddedRowBytes : y*paddedRowBytes+rowBytes]
		dst := img.Pix[int(y)*img.Stride : int(y)*img.Stride+int(rowBytes)]
		copy(dst, src)
	}

	return img, nil
}

func (tr *wgpuTracer) Stats() *tracer.Stats {
	return &tr.stats
}

func (tr *wgpuTracer) Close() {
	for _, buf := range []*StorageBuffer{tr.accumBuffer, tr.objectBuffer, tr.sphereBuffer, tr.triangleBuffer, tr.materialBuffer, tr.bvhBuffer} {
		if buf != nil {
			buf.Release()
		}
	}
	for _, buf := range []*UniformBuffer{tr.cameraBuffer, tr.frameDataBuffer, tr.renderParamBuffer} {
		if buf != nil {
			buf.Release()
		}
	}
	if tr.frameBindGroup != nil {
		tr.frameBindGroup.Release()
	}
	if tr.sceneBindGroup != nil {
		tr.sceneBindGroup.Release()
	}
	if tr.frameBindGroupLayout != nil {
		tr.frameBindGroupLayout.Release()
	}
	if tr.sceneBindGroupLayout != nil {
		tr.sceneBindGroupLayout.Release()
	}
	if tr.pipeline != nil {
		tr.pipeline.Release()
	}
	if tr.vertexBuffer != nil {
		tr.vertexBuffer.Release()
	}
	if tr.targetView != nil {
		tr.targetView.Release()
	}
	if tr.target != nil {
		tr.target.Release()
	}
	tr.dev.Close()
}
