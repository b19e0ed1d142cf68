package renderer

import (
	"image"
	"time"

	"github.com/aaalloc/sviet/log"
	"github.com/aaalloc/sviet/scene"
	"github.com/aaalloc/sviet/tracer"
)

type Renderer interface {
	// Render frames until the accumulation target is reached.
	Render() error

	// Render a single frame.
	RenderFrame() error

	// Read back the last rendered frame.
	Frame() (*image.RGBA, error)

	// Abort an in-progress Render call.
	Interrupt()

	// Shutdown renderer and the attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}

// defaultRenderer drives the tracer with a progressive accumulation loop.
// Before each frame it diffs the scene against the last uploaded snapshot
// and stages only the updates the device actually needs.
type defaultRenderer struct {
	logger  log.Logger
	options Options

	sc *scene.Scene
	tr tracer.Tracer

	// Snapshot of the scene as last pushed to the device.
	lastRendered *scene.Scene

	stats     FrameStats
	interrupt chan struct{}
}

// Create a renderer that drives the given tracer.
func NewDefault(sc *scene.Scene, tr tracer.Tracer, opts Options) (Renderer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if tr == nil {
		return nil, ErrTracerNotDefined
	}
	opts.applyDefaults()
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, ErrInvalidFrameDims
	}

	sc.FrameData.Width = opts.FrameW
	sc.FrameData.Height = opts.FrameH
	sc.RenderParam.SamplesPerPixel = opts.SamplesPerPixel
	sc.RenderParam.SamplesMaxPerPixel = opts.SamplesMaxPerPixel
	sc.RenderParam.MaxDepth = opts.MaxDepth
	sc.RenderParam.TotalSamples = 0

	r := &defaultRenderer{
		logger:    log.New("renderer"),
		options:   opts,
		sc:        sc,
		tr:        tr,
		interrupt: make(chan struct{}, 1),
	}

	if err := tr.Setup(opts.FrameW, opts.FrameH); err != nil {
		return nil, err
	}
	return r, nil
}

// Render frames until every pixel has accumulated the sample target, the
// frame limit is hit or Interrupt is called.
func (r *defaultRenderer) Render() error {
	start := time.Now()
	for {
		select {
		case <-r.interrupt:
			return ErrInterrupted
		default:
		}

		if err := r.RenderFrame(); err != nil {
			return err
		}

		if r.sc.RenderParam.Converged() {
			r.logger.Noticef(
				"converged after %d frames (%d samples/pixel) in %v",
				r.stats.FrameCount, r.sc.RenderParam.TotalSamples, time.Since(start),
			)
			return nil
		}
		if r.options.MaxFrames > 0 && r.stats.FrameCount >= r.options.MaxFrames {
			r.logger.Noticef("frame limit of %d reached", r.options.MaxFrames)
			return nil
		}
	}
}

// Render a single frame: sync pending scene changes, advance the
// accumulation state and dispatch the tracer.
func (r *defaultRenderer) RenderFrame() error {
	start := time.Now()

	if err := r.syncScene(); err != nil {
		return err
	}

	r.sc.FrameData.Index++
	r.tr.AppendChange(tracer.UpdateCamera, r.sc.Camera.Pack(r.options.FrameW, r.options.FrameH))
	r.tr.AppendChange(tracer.UpdateFrameData, r.sc.FrameData)

	r.sc.RenderParam.Update()
	r.tr.AppendChange(tracer.UpdateRenderParam, r.sc.RenderParam)

	if err := r.tr.ApplyPendingChanges(); err != nil {
		return err
	}
	if err := r.tr.RenderFrame(); err != nil {
		return err
	}

	r.stats.FrameCount++
	r.stats.TotalSamples = r.sc.RenderParam.TotalSamples
	r.stats.FrameTime = time.Since(start)
	r.stats.RenderTime += r.stats.FrameTime
	r.logger.Debugf(
		"frame %d: %d/%d samples per pixel in %v",
		r.sc.FrameData.Index, r.sc.RenderParam.TotalSamples, r.sc.RenderParam.SamplesMaxPerPixel, r.stats.FrameTime,
	)
	return nil
}

// Diff the scene against the last uploaded snapshot. Any change restarts
// the accumulation; geometry edits additionally rebuild the flattened
// acceleration structure and re-upload the scene buffers.
func (r *defaultRenderer) syncScene() error {
	if r.lastRendered != nil && r.sc.Equals(r.lastRendered) {
		return nil
	}

	if r.lastRendered == nil || !r.sc.GeometryEquals(r.lastRendered) {
		r.stageGeometry()
	}

	if r.lastRendered != nil {
		// Restart the accumulation. Samples per pixel is restored from the
		// options since a converged scene has zeroed it out.
		r.sc.RenderParam.SamplesPerPixel = r.options.SamplesPerPixel
		r.sc.RenderParam.TotalSamples = 0
		r.logger.Debug("scene changed; restarting accumulation")
	}

	r.lastRendered = r.sc.Clone()
	return nil
}

// Stage the flattened scene for upload. Storage buffers may not be empty
// so zero-value placeholders stand in for absent primitive lists.
func (r *defaultRenderer) stageGeometry() {
	buildStart := time.Now()
	nodes := r.sc.BuildBvh()
	r.logger.Debugf("rebuilt acceleration structure in %v", time.Since(buildStart))

	spheres := r.sc.Spheres
	if len(spheres) == 0 {
		spheres = []scene.Sphere{{}}
	}
	triangles := r.sc.Triangles
	if len(triangles) == 0 {
		triangles = []scene.Triangle{{}}
	}
	objects := r.sc.Objects
	if len(objects) == 0 {
		objects = []scene.Object{{}}
	}
	materials := scene.PackMaterials(r.sc.Materials)
	if len(materials) == 0 {
		materials = []scene.GpuMaterial{{}}
	}

	r.tr.AppendChange(tracer.SetBvhNodes, nodes)
	r.tr.AppendChange(tracer.SetObjects, objects)
	r.tr.AppendChange(tracer.SetSpheres, spheres)
	r.tr.AppendChange(tracer.SetTriangles, triangles)
	r.tr.AppendChange(tracer.SetMaterials, materials)
}

func (r *defaultRenderer) Frame() (*image.RGBA, error) {
	return r.tr.ReadFrame()
}

func (r *defaultRenderer) Interrupt() {
	select {
	case r.interrupt <- struct{}{}:
	default:
	}
}

func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

func (r *defaultRenderer) Close() {
	if r.tr != nil {
		r.tr.Close()
		r.tr = nil
	}
}
