package scene

import (
	"math"
	"testing"

	"github.com/aaalloc/sviet/types"
)

const geomEpsilon = 1e-5

func vecNear(a, b types.Vec3) bool {
	return a.Sub(b).Len() < geomEpsilon
}

func TestQuadBounds(t *testing.T) {
	quad := Quad()
	if len(quad) != 2 {
		t.Fatalf("expected 2 triangles per quad; got %d", len(quad))
	}

	bounds := quad[0].Aabb()
	bounds.GrowAabb(quad[1].Aabb())
	if !vecNear(bounds.Min, types.XYZ(-1, -1, 0)) || !vecNear(bounds.Max, types.XYZ(1, 1, 0)) {
		t.Fatalf("unexpected quad bounds %v - %v", bounds.Min, bounds.Max)
	}
}

func TestTriangleAabbIsVertexUnion(t *testing.T) {
	tri := Triangle{
		Vertices: [3]types.Vec4{
			types.XYZW(-1, 0, 2, 1),
			types.XYZW(3, -2, 0, 1),
			types.XYZW(1, 4, -1, 1),
		},
	}

	bounds := tri.Aabb()
	if bounds.Min != types.XYZ(-1, -2, -1) || bounds.Max != types.XYZ(3, 4, 2) {
		t.Fatalf("unexpected triangle bounds %v - %v", bounds.Min, bounds.Max)
	}
}

func TestTranslateMovesBounds(t *testing.T) {
	quad := Quad()
	Translate(quad, types.XYZ(2, 0, -3))

	center := CenterOf(quad)
	if !vecNear(center, types.XYZ(2, 0, -3)) {
		t.Fatalf("expected center at translation offset; got %v", center)
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	quad := Quad()
	Rotate(quad, 90, types.XYZ(0, 1, 0))

	// A +Z facing quad rotated 90 degrees around Y spans the Z axis.
	bounds := quad[0].Aabb()
	bounds.GrowAabb(quad[1].Aabb())
	if math.Abs(float64(bounds.Min[2]+1)) > geomEpsilon || math.Abs(float64(bounds.Max[2]-1)) > geomEpsilon {
		t.Fatalf("expected rotated quad to span z in [-1, 1]; got %v - %v", bounds.Min, bounds.Max)
	}
	if math.Abs(float64(bounds.Max[0]-bounds.Min[0])) > geomEpsilon {
		t.Fatalf("expected rotated quad to be flat on x; got %v - %v", bounds.Min, bounds.Max)
	}

	// Normals must rotate with the surface.
	normal := quad[0].Normals[0].Vec3()
	if !vecNear(normal, types.XYZ(0.5, 0, 0)) {
		t.Fatalf("expected rotated normal (0.5, 0, 0); got %v", normal)
	}
}

func TestCubeGeometry(t *testing.T) {
	cube := Cube()
	if len(cube) != 12 {
		t.Fatalf("expected 12 triangles per cube; got %d", len(cube))
	}

	if !vecNear(CenterOf(cube), types.XYZ(0, 0, 0)) {
		t.Fatalf("expected cube centered on the origin; got %v", CenterOf(cube))
	}

	// 6 faces of a 2x2x2 cube.
	if area := Area(cube); math.Abs(float64(area)-24.0) > 1e-3 {
		t.Fatalf("expected cube surface area 24; got %f", area)
	}
}

func TestScaleAffectsArea(t *testing.T) {
	quad := Quad()
	Scale(quad, types.XYZ(2, 2, 1))

	if area := Area(quad); math.Abs(float64(area)-16.0) > 1e-3 {
		t.Fatalf("expected scaled quad area 16; got %f", area)
	}
}
