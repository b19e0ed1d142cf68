package bvh

import (
	"math"

	"github.com/aaalloc/sviet/types"
)

// An axis-aligned bounding box. The zero-extent sentinel returned by
// EmptyAabb acts as the identity element of GrowAabb.
type Aabb struct {
	Min types.Vec3
	Max types.Vec3
}

// The Bounded interface is implemented by all primitives that can be
// partitioned by the bvh builder.
type Bounded interface {
	Aabb() Aabb
}

var (
	posInf = float32(math.Inf(1))
	negInf = float32(math.Inf(-1))
)

// Create an empty bounding box (min = +Inf, max = -Inf). Growing an empty
// box to include anything yields exactly that thing's bounds.
func EmptyAabb() Aabb {
	return Aabb{
		Min: types.Vec3{posInf, posInf, posInf},
		Max: types.Vec3{negInf, negInf, negInf},
	}
}

// Extend the bounding box to include a point.
func (a *Aabb) Grow(point types.Vec3) {
	a.Min = types.MinVec3(a.Min, point)
	a.Max = types.MaxVec3(a.Max, point)
}

// Extend the bounding box to include another bounding box.
func (a *Aabb) GrowAabb(other Aabb) {
	a.Min = types.MinVec3(a.Min, other.Min)
	a.Max = types.MaxVec3(a.Max, other.Max)
}

// Get the box centroid. Only meaningful for non-empty boxes.
func (a Aabb) Center() types.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}
