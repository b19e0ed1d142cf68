package scene

import (
	"math"

	"github.com/aaalloc/sviet/scene/bvh"
	"github.com/aaalloc/sviet/types"
)

// A single mesh face laid out for direct upload to the GPU triangle
// storage buffer. Vertices and normals are padded to vec4 alignment; each
// triangle takes 96 bytes.
type Triangle struct {
	Vertices [3]types.Vec4
	Normals  [3]types.Vec4
}

// Get the triangle bounds: the union of its three vertex positions.
func (t Triangle) Aabb() bvh.Aabb {
	bounds := bvh.EmptyAabb()
	for _, v := range t.Vertices {
		bounds.Grow(v.Vec3())
	}
	return bounds
}

// Create a 2x2 quad centered on the origin, facing +Z.
func Quad() []Triangle {
	normal := types.XYZW(0, 0, 0.5, 1)
	return []Triangle{
		{
			Vertices: [3]types.Vec4{
				types.XYZW(-1, -1, 0, 1),
				types.XYZW(1, -1, 0, 1),
				types.XYZW(-1, 1, 0, 1),
			},
			Normals: [3]types.Vec4{normal, normal, normal},
		},
		{
			Vertices: [3]types.Vec4{
				types.XYZW(1, 1, 0, 1),
				types.XYZW(1, -1, 0, 1),
				types.XYZW(-1, 1, 0, 1),
			},
			Normals: [3]types.Vec4{normal, normal, normal},
		},
	}
}

// Create a 2x2x2 cube centered on the origin with outward facing normals.
func Cube() []Triangle {
	sides := []struct {
		angle  float32
		axis   types.Vec3
		offset types.Vec3
		normal types.Vec3
	}{
		{0, types.XYZ(0, 1, 0), types.XYZ(0, 0, 1), types.XYZ(0, 0, 1)},
		{180, types.XYZ(0, 1, 0), types.XYZ(0, 0, -1), types.XYZ(0, 0, -1)},
		{90, types.XYZ(1, 0, 0), types.XYZ(0, 1, 0), types.XYZ(0, 1, 0)},
		{-90, types.XYZ(1, 0, 0), types.XYZ(0, -1, 0), types.XYZ(0, -1, 0)},
		{90, types.XYZ(0, 1, 0), types.XYZ(1, 0, 0), types.XYZ(1, 0, 0)},
		{-90, types.XYZ(0, 1, 0), types.XYZ(-1, 0, 0), types.XYZ(-1, 0, 0)},
	}

	var cube []Triangle
	for _, side := range sides {
		face := Quad()
		Rotate(face, side.angle, side.axis)
		Translate(face, side.offset)
		SetNormals(face, side.normal)
		cube = append(cube, face...)
	}
	return cube
}

// Translate all triangle vertices.
func Translate(tris []Triangle, offset types.Vec3) {
	for index := range tris {
		for v := range tris[index].Vertices {
			pos := tris[index].Vertices[v].Vec3().Add(offset)
			tris[index].Vertices[v] = pos.Vec4(tris[index].Vertices[v][3])
		}
	}
}

// Rotate all triangle vertices and normals by an angle (in degrees) around
// the given axis.
func Rotate(tris []Triangle, angle float32, axis types.Vec3) {
	rotation := types.QuatFromAxisAngle(axis, angle*math.Pi/180.0)
	for index := range tris {
		for v := range tris[index].Vertices {
			pos := rotation.Rotate(tris[index].Vertices[v].Vec3())
			tris[index].Vertices[v] = pos.Vec4(tris[index].Vertices[v][3])
		}
		for n := range tris[index].Normals {
			dir := rotation.Rotate(tris[index].Normals[n].Vec3())
			tris[index].Normals[n] = dir.Vec4(tris[index].Normals[n][3])
		}
	}
}

// Scale all triangle vertices and normals componentwise.
func Scale(tris []Triangle, factor types.Vec3) {
	for index := range tris {
		for v := range tris[index].Vertices {
			pos := tris[index].Vertices[v].Vec3().MulVec(factor)
			tris[index].Vertices[v] = pos.Vec4(tris[index].Vertices[v][3])
		}
		for n := range tris[index].Normals {
			dir := tris[index].Normals[n].Vec3().MulVec(factor)
			tris[index].Normals[n] = dir.Vec4(tris[index].Normals[n][3])
		}
	}
}

// Override every vertex normal of the given triangles.
func SetNormals(tris []Triangle, normal types.Vec3) {
	packed := normal.Vec4(1)
	for index := range tris {
		tris[index].Normals = [3]types.Vec4{packed, packed, packed}
	}
}

// Get the center of the bounding box enclosing all triangles.
func CenterOf(tris []Triangle) types.Vec3 {
	bounds := bvh.EmptyAabb()
	for _, tri := range tris {
		bounds.GrowAabb(tri.Aabb())
	}
	return bounds.Center()
}

// Get the total surface area of the given triangles.
func Area(tris []Triangle) float32 {
	var area float32
	for _, tri := range tris {
		a := tri.Vertices[0].Vec3()
		ab := tri.Vertices[1].Vec3().Sub(a)
		ac := tri.Vertices[2].Vec3().Sub(a)
		area += ab.Cross(ac).Len() * 0.5
	}
	return area
}

// Get the mean vertex position of the given triangles.
func Position(tris []Triangle) types.Vec3 {
	var sum types.Vec3
	for _, tri := range tris {
		for _, v := range tri.Vertices {
			sum = sum.Add(v.Vec3())
		}
	}
	if len(tris) == 0 {
		return sum
	}
	return sum.Mul(1.0 / (float32(len(tris)) * 3.0))
}
