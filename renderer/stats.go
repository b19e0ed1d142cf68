package renderer

import "time"

type FrameStats struct {
	// Number of frames rendered so far.
	FrameCount uint32

	// Samples accumulated per pixel so far.
	TotalSamples uint32

	// Render time for the last frame.
	FrameTime time.Duration

	// Total render time across all frames.
	RenderTime time.Duration
}
