package scene

// Progressive accumulation parameters, uploaded to the GPU as five packed
// uint32 every frame. TotalSamples counts the samples blended into the
// accumulation buffer so far; ClearSamples tells the shader to discard the
// previous image instead of blending into it.
type RenderParam struct {
	SamplesMaxPerPixel uint32
	SamplesPerPixel    uint32
	TotalSamples       uint32
	ClearSamples       uint32
	MaxDepth           uint32
}

// Advance the accumulation state by one rendered frame.
//
// The state machine has three states keyed off TotalSamples: reset
// (TotalSamples == 0) integrates a first batch and raises ClearSamples so
// the shader discards the stale image; accumulating integrates batches
// with blending until the sample budget is exhausted; converged zeroes
// SamplesPerPixel so no further work is done. Converged is sticky: the
// caller that resets TotalSamples must also restore SamplesPerPixel or no
// new samples are ever taken.
func (p *RenderParam) Update() {
	if p.TotalSamples == 0 {
		p.TotalSamples += p.SamplesPerPixel
		p.ClearSamples = 1
	} else if p.TotalSamples <= p.SamplesMaxPerPixel {
		p.TotalSamples += p.SamplesPerPixel
		p.ClearSamples = 0
	} else {
		p.SamplesPerPixel = 0
		p.ClearSamples = 0
	}
}

// Check whether the sample budget is exhausted and no further samples will
// be produced.
func (p RenderParam) Converged() bool {
	return p.SamplesPerPixel == 0
}

// Per-frame data uploaded as a uniform buffer. Index increments on every
// rendered frame and seeds the shader's random number generator.
type FrameData struct {
	Width  uint32
	Height uint32
	Index  uint32
}
