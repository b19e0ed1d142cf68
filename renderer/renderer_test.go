package renderer

import (
	"image"
	"testing"

	"github.com/aaalloc/sviet/scene"
	"github.com/aaalloc/sviet/tracer"
	"github.com/aaalloc/sviet/types"
)

type recordedChange struct {
	changeType tracer.ChangeType
	data       interface{}
}

type mockTracer struct {
	changes     []recordedChange
	applyCalls  int
	renderCalls int
	setupW      uint32
	setupH      uint32
	closed      bool
}

func (m *mockTracer) Id() string { return "mock" }
func (m *mockTracer) Close()     { m.closed = true }
func (m *mockTracer) Setup(frameW, frameH uint32) error {
	m.setupW, m.setupH = frameW, frameH
	return nil
}
func (m *mockTracer) AppendChange(changeType tracer.ChangeType, data interface{}) {
	m.changes = append(m.changes, recordedChange{changeType, data})
}
func (m *mockTracer) ApplyPendingChanges() error { m.applyCalls++; return nil }
func (m *mockTracer) RenderFrame() error         { m.renderCalls++; return nil }
func (m *mockTracer) ReadFrame() (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, int(m.setupW), int(m.setupH))), nil
}
func (m *mockTracer) Stats() *tracer.Stats { return &tracer.Stats{} }

func (m *mockTracer) changeTypes() []tracer.ChangeType {
	out := make([]tracer.ChangeType, len(m.changes))
	for i, c := range m.changes {
		out[i] = c.changeType
	}
	return out
}

func (m *mockTracer) countChanges(changeType tracer.ChangeType) int {
	count := 0
	for _, c := range m.changes {
		if c.changeType == changeType {
			count++
		}
	}
	return count
}

func testScene() *scene.Scene {
	sc := &scene.Scene{}
	sc.Camera = scene.Camera{
		EyePos:        types.XYZ(0, 0, -5),
		EyeDir:        types.XYZ(0, 0, 1),
		Up:            types.XYZ(0, 1, 0),
		VFov:          45,
		FocusDistance: 1,
	}
	sc.AddSphere(types.XYZ(0, 0, 0), 1, scene.NewLambertian(types.XYZ(0.8, 0.3, 0.3)))
	return sc
}

func testOptions() Options {
	return Options{
		FrameW:             16,
		FrameH:             16,
		SamplesPerPixel:    4,
		SamplesMaxPerPixel: 16,
		MaxDepth:           8,
	}
}

func TestNewDefaultValidation(t *testing.T) {
	if _, err := NewDefault(nil, &mockTracer{}, testOptions()); err != ErrSceneNotDefined {
		t.Fatalf("expected ErrSceneNotDefined; got %v", err)
	}
	if _, err := NewDefault(testScene(), nil, testOptions()); err != ErrTracerNotDefined {
		t.Fatalf("expected ErrTracerNotDefined; got %v", err)
	}

	opts := testOptions()
	opts.FrameW = 0
	if _, err := NewDefault(testScene(), &mockTracer{}, opts); err != ErrInvalidFrameDims {
		t.Fatalf("expected ErrInvalidFrameDims; got %v", err)
	}
}

func TestFirstFrameUploadsFullScene(t *testing.T) {
	mock := &mockTracer{}
	r, err := NewDefault(testScene(), mock, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	if mock.setupW != 16 || mock.setupH != 16 {
		t.Fatalf("expected 16x16 setup; got %dx%d", mock.setupW, mock.setupH)
	}

	if err = r.RenderFrame(); err != nil {
		t.Fatal(err)
	}

	expected := []tracer.ChangeType{
		tracer.SetBvhNodes,
		tracer.SetObjects,
		tracer.SetSpheres,
		tracer.SetTriangles,
		tracer.SetMaterials,
		tracer.UpdateCamera,
		tracer.UpdateFrameData,
		tracer.UpdateRenderParam,
	}
	got := mock.changeTypes()
	if len(got) != len(expected) {
		t.Fatalf("expected %d staged changes; got %d", len(expected), len(got))
	}
	for i, changeType := range expected {
		if got[i] != changeType {
			t.Fatalf("change %d: expected type %d; got %d", i, changeType, got[i])
		}
	}
	if mock.applyCalls != 1 || mock.renderCalls != 1 {
		t.Fatalf("expected 1 apply and 1 render; got %d and %d", mock.applyCalls, mock.renderCalls)
	}
}

func TestUnchangedSceneSkipsGeometryUpload(t *testing.T) {
	mock := &mockTracer{}
	r, err := NewDefault(testScene(), mock, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err = r.RenderFrame(); err != nil {
			t.Fatal(err)
		}
	}

	if got := mock.countChanges(tracer.SetBvhNodes); got != 1 {
		t.Fatalf("expected a single geometry upload; got %d", got)
	}
	if got := mock.countChanges(tracer.UpdateRenderParam); got != 3 {
		t.Fatalf("expected 3 render param updates; got %d", got)
	}
}

func TestCameraChangeRestartsAccumulationWithoutRebuild(t *testing.T) {
	sc := testScene()
	mock := &mockTracer{}
	r, err := NewDefault(sc, mock, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	if err = r.RenderFrame(); err != nil {
		t.Fatal(err)
	}
	if err = r.RenderFrame(); err != nil {
		t.Fatal(err)
	}
	if sc.RenderParam.TotalSamples != 8 {
		t.Fatalf("expected 8 accumulated samples; got %d", sc.RenderParam.TotalSamples)
	}

	sc.Camera.EyePos = types.XYZ(1, 0, -5)
	if err = r.RenderFrame(); err != nil {
		t.Fatal(err)
	}

	if got := mock.countChanges(tracer.SetBvhNodes); got != 1 {
		t.Fatalf("camera move must not rebuild geometry; got %d uploads", got)
	}
	if sc.RenderParam.TotalSamples != 4 {
		t.Fatalf("expected accumulation restart at 4 samples; got %d", sc.RenderParam.TotalSamples)
	}
	if sc.RenderParam.ClearSamples != 1 {
		t.Fatalf("expected clear flag after restart; got %d", sc.RenderParam.ClearSamples)
	}
}

func TestGeometryChangeTriggersRebuild(t *testing.T) {
	sc := testScene()
	mock := &mockTracer{}
	r, err := NewDefault(sc, mock, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	if err = r.RenderFrame(); err != nil {
		t.Fatal(err)
	}

	sc.AddSphere(types.XYZ(2, 0, 0), 1, scene.NewMetal(types.XYZ(0.9, 0.9, 0.9), 0.1))
	if err = r.RenderFrame(); err != nil {
		t.Fatal(err)
	}

	if got := mock.countChanges(tracer.SetBvhNodes); got != 2 {
		t.Fatalf("expected geometry re-upload after sphere add; got %d uploads", got)
	}
	if got := mock.countChanges(tracer.SetMaterials); got != 2 {
		t.Fatalf("expected material re-upload after sphere add; got %d uploads", got)
	}
}

func TestRenderStopsAtConvergence(t *testing.T) {
	sc := testScene()
	mock := &mockTracer{}
	r, err := NewDefault(sc, mock, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	if err = r.Render(); err != nil {
		t.Fatal(err)
	}

	// Totals run 4, 8, 12, 16, 20; a sixth frame trips the budget check
	// and zeroes the batch size.
	if mock.renderCalls != 6 {
		t.Fatalf("expected 6 frames to convergence; got %d", mock.renderCalls)
	}
	if !sc.RenderParam.Converged() {
		t.Fatal("expected converged render param")
	}
	if sc.RenderParam.TotalSamples != 20 {
		t.Fatalf("expected 20 accumulated samples; got %d", sc.RenderParam.TotalSamples)
	}
}

func TestSceneChangeAfterConvergenceResumesRendering(t *testing.T) {
	sc := testScene()
	mock := &mockTracer{}
	opts := testOptions()
	r, err := NewDefault(sc, mock, opts)
	if err != nil {
		t.Fatal(err)
	}

	if err = r.Render(); err != nil {
		t.Fatal(err)
	}
	if !sc.RenderParam.Converged() {
		t.Fatal("expected converged render param")
	}

	sc.Camera.EyePos = types.XYZ(0, 1, -5)
	if err = r.RenderFrame(); err != nil {
		t.Fatal(err)
	}

	if sc.RenderParam.Converged() {
		t.Fatal("expected accumulation to resume after camera move")
	}
	if sc.RenderParam.SamplesPerPixel != opts.SamplesPerPixel {
		t.Fatalf("expected samples per pixel restored to %d; got %d", opts.SamplesPerPixel, sc.RenderParam.SamplesPerPixel)
	}
}

func TestMaxFramesLimit(t *testing.T) {
	sc := testScene()
	mock := &mockTracer{}
	opts := testOptions()
	opts.SamplesMaxPerPixel = 1 << 20
	opts.MaxFrames = 3
	r, err := NewDefault(sc, mock, opts)
	if err != nil {
		t.Fatal(err)
	}

	if err = r.Render(); err != nil {
		t.Fatal(err)
	}
	if mock.renderCalls != 3 {
		t.Fatalf("expected 3 frames; got %d", mock.renderCalls)
	}
}

func TestInterrupt(t *testing.T) {
	sc := testScene()
	mock := &mockTracer{}
	r, err := NewDefault(sc, mock, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	r.Interrupt()
	if err = r.Render(); err != ErrInterrupted {
		t.Fatalf("expected ErrInterrupted; got %v", err)
	}
	if mock.renderCalls != 0 {
		t.Fatalf("expected no frames after interrupt; got %d", mock.renderCalls)
	}
}

func TestEmptySceneStagesPlaceholders(t *testing.T) {
	sc := &scene.Scene{}
	sc.Camera = scene.Camera{
		EyePos:        types.XYZ(0, 0, -1),
		EyeDir:        types.XYZ(0, 0, 1),
		Up:            types.XYZ(0, 1, 0),
		VFov:          45,
		FocusDistance: 1,
	}
	mock := &mockTracer{}
	r, err := NewDefault(sc, mock, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	if err = r.RenderFrame(); err != nil {
		t.Fatal(err)
	}

	for _, c := range mock.changes {
		switch c.changeType {
		case tracer.SetSpheres:
			if len(c.data.([]scene.Sphere)) != 1 {
				t.Fatal("expected a single placeholder sphere")
			}
		case tracer.SetTriangles:
			if len(c.data.([]scene.Triangle)) != 1 {
				t.Fatal("expected a single placeholder triangle")
			}
		case tracer.SetObjects:
			if len(c.data.([]scene.Object)) != 1 {
				t.Fatal("expected a single placeholder object")
			}
		case tracer.SetMaterials:
			if len(c.data.([]scene.GpuMaterial)) != 1 {
				t.Fatal("expected a single placeholder material")
			}
		}
	}

	r.Close()
	if !mock.closed {
		t.Fatal("expected tracer to be closed")
	}
}
