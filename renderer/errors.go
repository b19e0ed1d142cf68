package renderer

import "errors"

var (
	ErrSceneNotDefined  = errors.New("renderer: no scene defined")
	ErrTracerNotDefined = errors.New("renderer: no tracer defined")
	ErrInvalidFrameDims = errors.New("renderer: frame dimensions must be > 0")
	ErrInterrupted      = errors.New("renderer: interrupted while rendering")
)
