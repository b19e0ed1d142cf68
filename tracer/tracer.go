package tracer

import "image"

type ChangeType uint8

const (
	SetBvhNodes ChangeType = iota
	SetSpheres
	SetTriangles
	SetMaterials
	SetObjects
	UpdateCamera
	UpdateFrameData
	UpdateRenderParam
)

// Tracer statistics.
type Stats struct {
	// Number of rendered frames.
	FrameCount uint32

	// The time for rendering the last frame (in nanoseconds).
	FrameTime int64
}

// A Tracer drives a GPU device that consumes the flattened scene. Changes
// are staged with AppendChange and pushed to the device in one batch so a
// frame never observes a half-updated scene.
type Tracer interface {
	// Get tracer id.
	Id() string

	// Shutdown and cleanup tracer.
	Close()

	// Allocate device resources for the given frame dimensions.
	Setup(frameW, frameH uint32) error

	// Append a change to the tracer's update buffer.
	AppendChange(ChangeType, interface{})

	// Apply all pending changes from the update buffer.
	ApplyPendingChanges() error

	// Render a single frame into the accumulation target.
	RenderFrame() error

	// Read back the last rendered frame.
	ReadFrame() (*image.RGBA, error)

	// Retrieve tracer statistics.
	Stats() *Stats
}
