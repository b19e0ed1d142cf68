package scene

import (
	"github.com/aaalloc/sviet/scene/bvh"
	"github.com/aaalloc/sviet/types"
)

// A sphere primitive laid out for direct upload to the GPU sphere storage
// buffer. Each sphere takes 32 bytes; the center W component and the two
// trailing words pad the record to vec4 alignment.
type Sphere struct {
	Center        types.Vec4
	Radius        float32
	MaterialIndex uint32

	_padding [2]uint32
}

// Create a new sphere.
func NewSphere(center types.Vec3, radius float32, materialIndex uint32) Sphere {
	return Sphere{
		Center:        center.Vec4(0),
		Radius:        radius,
		MaterialIndex: materialIndex,
	}
}

// Get the sphere bounds: center +/- radius along every axis.
func (s Sphere) Aabb() bvh.Aabb {
	center := s.Center.Vec3()
	ext := types.XYZ(s.Radius, s.Radius, s.Radius)
	return bvh.Aabb{
		Min: center.Sub(ext),
		Max: center.Add(ext),
	}
}
