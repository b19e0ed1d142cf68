package scene

import (
	"math"

	"github.com/aaalloc/sviet/types"
)

// A pinhole/thin-lens camera description.
type Camera struct {
	EyePos types.Vec3
	EyeDir types.Vec3
	Up     types.Vec3

	// Vertical field of view in degrees.
	VFov float32

	// Lens aperture in [0, 1]; 0 disables depth of field.
	Aperture float32

	// Distance to the focal plane. Must be positive.
	FocusDistance float32
}

// The camera basis as consumed by the shader. Every vec3 is padded to 16
// bytes; the record takes 96 bytes and is uploaded as a uniform buffer.
type GpuCamera struct {
	Eye        types.Vec3
	_padding1  float32
	Horizontal types.Vec3
	_padding2  float32
	Vertical   types.Vec3
	_padding3  float32
	U          types.Vec3
	_padding4  float32
	V          types.Vec3
	LensRadius float32
	LowerLeft  types.Vec3
	_padding5  float32
}

// Compute the shader-side camera basis for a viewport.
func (c Camera) Pack(frameW, frameH uint32) GpuCamera {
	lensRadius := 0.5 * c.Aperture
	aspect := float32(frameW) / float32(frameH)
	theta := float64(c.VFov) * math.Pi / 180.0
	halfHeight := c.FocusDistance * float32(math.Tan(0.5*theta))
	halfWidth := aspect * halfHeight

	w := c.EyeDir.Normalize()
	v := c.Up.Normalize()
	u := w.Cross(v)

	lowerLeft := c.EyePos.
		Add(w.Mul(c.FocusDistance)).
		Sub(u.Mul(halfWidth)).
		Sub(v.Mul(halfHeight))

	return GpuCamera{
		Eye:        c.EyePos,
		Horizontal: u.Mul(2 * halfWidth),
		Vertical:   v.Mul(2 * halfHeight),
		U:          u,
		V:          v,
		LensRadius: lensRadius,
		LowerLeft:  lowerLeft,
	}
}
