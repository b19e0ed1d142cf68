package renderer

const (
	defaultSamplesPerPixel = 4
	defaultMaxSamples      = 1000
	defaultMaxDepth        = 50
)

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Samples added per pixel each frame.
	SamplesPerPixel uint32

	// Accumulation target; rendering stops once a pixel has gathered
	// this many samples.
	SamplesMaxPerPixel uint32

	// Max ray bounces.
	MaxDepth uint32

	// Hard frame limit; 0 renders until convergence.
	MaxFrames uint32
}

// Fill in defaults for unset fields.
func (o *Options) applyDefaults() {
	if o.SamplesPerPixel == 0 {
		o.SamplesPerPixel = defaultSamplesPerPixel
	}
	if o.SamplesMaxPerPixel == 0 {
		o.SamplesMaxPerPixel = defaultMaxSamples
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = defaultMaxDepth
	}
}
