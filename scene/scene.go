package scene

import (
	"math/rand"

	"github.com/aaalloc/sviet/scene/bvh"
	"github.com/aaalloc/sviet/types"
)

// A complete scene description. The renderer owns one live Scene plus a
// snapshot of the last rendered state; comparing the two decides when the
// accumulated image must be thrown away.
type Scene struct {
	Materials []Material
	Spheres   []Sphere
	Triangles []Triangle
	Lights    []Light
	Objects   []Object

	Camera      Camera
	RenderParam RenderParam
	FrameData   FrameData
}

// Append a sphere backed by its own material and directory entry. Returns
// the sphere index.
func (s *Scene) AddSphere(center types.Vec3, radius float32, mat Material) uint32 {
	matIndex := uint32(len(s.Materials))
	s.Materials = append(s.Materials, mat)

	offset := uint32(len(s.Spheres))
	s.Spheres = append(s.Spheres, NewSphere(center, radius, matIndex))
	s.Objects = append(s.Objects, NewObject(matIndex, bvh.ObjectSphere, 1, offset))
	return offset
}

// Append a triangle batch backed by a single material and directory entry.
// Returns the index of the first triangle.
func (s *Scene) AddMesh(tris []Triangle, mat Material) uint32 {
	matIndex := uint32(len(s.Materials))
	s.Materials = append(s.Materials, mat)

	offset := uint32(len(s.Triangles))
	s.Triangles = append(s.Triangles, tris...)
	s.Objects = append(s.Objects, NewObject(matIndex, bvh.ObjectTriangle, uint32(len(tris)), offset))
	return offset
}

// Mark a previously added primitive as emissive.
func (s *Scene) AddLight(index uint32, objType bvh.ObjectType) {
	s.Lights = append(s.Lights, NewLight(index, objType))
}

// Build the flattened acceleration structure over the scene's current
// geometry. Invoked again in full whenever the geometry changes.
func (s *Scene) BuildBvh() []bvh.Node {
	spheres := make([]bvh.Bounded, len(s.Spheres))
	for index, sphere := range s.Spheres {
		spheres[index] = sphere
	}
	triangles := make([]bvh.Bounded, len(s.Triangles))
	for index, tri := range s.Triangles {
		triangles[index] = tri
	}
	return bvh.Build(spheres, triangles)
}

// Compare the scene's render-relevant state against another scene.
// RenderParam and the frame index are deliberately excluded: they change
// every frame without invalidating the accumulated image.
func (s *Scene) Equals(other *Scene) bool {
	if len(s.Materials) != len(other.Materials) ||
		len(s.Spheres) != len(other.Spheres) ||
		len(s.Triangles) != len(other.Triangles) {
		return false
	}
	for index, mat := range s.Materials {
		if mat != other.Materials[index] {
			return false
		}
	}
	for index, sphere := range s.Spheres {
		if sphere != other.Spheres[index] {
			return false
		}
	}
	for index, tri := range s.Triangles {
		if tri != other.Triangles[index] {
			return false
		}
	}
	if s.Camera != other.Camera {
		return false
	}
	return s.FrameData.Width == other.FrameData.Width &&
		s.FrameData.Height == other.FrameData.Height
}

// Check whether the scene geometry or materials differ from another scene.
// Camera and viewport changes invalidate the accumulated image but do not
// require a bvh rebuild.
func (s *Scene) GeometryEquals(other *Scene) bool {
	if len(s.Materials) != len(other.Materials) ||
		len(s.Spheres) != len(other.Spheres) ||
		len(s.Triangles) != len(other.Triangles) {
		return false
	}
	for index, mat := range s.Materials {
		if mat != other.Materials[index] {
			return false
		}
	}
	for index, sphere := range s.Spheres {
		if sphere != other.Spheres[index] {
			return false
		}
	}
	for index, tri := range s.Triangles {
		if tri != other.Triangles[index] {
			return false
		}
	}
	return true
}

// Create a deep copy used as the last-rendered snapshot.
func (s *Scene) Clone() *Scene {
	clone := &Scene{
		Materials:   append([]Material(nil), s.Materials...),
		Spheres:     append([]Sphere(nil), s.Spheres...),
		Triangles:   append([]Triangle(nil), s.Triangles...),
		Lights:      append([]Light(nil), s.Lights...),
		Objects:     append([]Object(nil), s.Objects...),
		Camera:      s.Camera,
		RenderParam: s.RenderParam,
		FrameData:   s.FrameData,
	}
	return clone
}

// The classic "one weekend" scene: a large ground sphere, a grid of random
// small spheres and three showcase spheres, one of them emissive.
func OneWeekend(param RenderParam, frame FrameData) *Scene {
	sc := &Scene{
		Camera: Camera{
			EyePos:        types.XYZ(-10.5, 2.73, -5.83),
			EyeDir:        types.XYZ(0.9086872, -0.15932521, 0.3858796),
			Up:            types.XYZ(0, 1, 0),
			VFov:          20.0,
			Aperture:      0.0,
			FocusDistance: 10.0,
		},
		RenderParam: param,
		FrameData:   frame,
	}

	rng := rand.New(rand.NewSource(42))
	sc.AddSphere(types.XYZ(0, -1000, 0), 1000, NewLambertian(types.XYZ(0.5, 0.5, 0.5)))

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			center := types.XYZ(
				float32(a)+0.9*rng.Float32(),
				0.2,
				float32(b)+0.9*rng.Float32(),
			)
			if center.Sub(types.XYZ(4, 0.2, 0)).Len() <= 0.9 {
				continue
			}

			var mat Material
			switch chooseMat := rng.Float32(); {
			case chooseMat < 0.8:
				mat = NewLambertian(types.XYZ(
					rng.Float32()*rng.Float32(),
					rng.Float32()*rng.Float32(),
					rng.Float32()*rng.Float32(),
				))
			case chooseMat < 0.95:
				mat = NewMetal(types.XYZ(
					0.5*(1+rng.Float32()),
					0.5*(1+rng.Float32()),
					0.5*(1+rng.Float32()),
				), 0.5*rng.Float32())
			default:
				mat = NewDielectric(1.5)
			}
			sc.AddSphere(center, 0.2, mat)
		}
	}

	sc.AddSphere(types.XYZ(0, 1, 0), 1, NewDielectric(1.5))
	lightIndex := sc.AddSphere(types.XYZ(-4, 1, 0), 1, NewDiffuseLight(types.XYZ(10, 10, 10)))
	sc.AddLight(lightIndex, bvh.ObjectSphere)
	sc.AddSphere(types.XYZ(4, 1, 0), 1, NewMetal(types.XYZ(0.7, 0.6, 0.5), 0))

	return sc
}

// A Cornell box built from quads: colored side walls, a top light panel,
// two rotated boxes and a glass sphere.
func Cornell(param RenderParam, frame FrameData) *Scene {
	sc := &Scene{
		Camera: Camera{
			EyePos:        types.XYZ(0, 0, 5),
			EyeDir:        types.XYZ(0, 0, -1),
			Up:            types.XYZ(0, 1, 0),
			VFov:          30.0,
			Aperture:      0.0,
			FocusDistance: 10.0,
		},
		RenderParam: param,
		FrameData:   frame,
	}

	white := NewLambertian(types.XYZ(0.73, 0.73, 0.73))
	green := NewLambertian(types.XYZ(0.12, 0.45, 0.15))
	red := NewLambertian(types.XYZ(0.65, 0.05, 0.05))
	light := NewDiffuseLight(types.XYZ(15, 15, 15))
	metal := NewMetal(types.XYZ(0.8, 0.85, 0.88), 0)

	backWall := Quad()
	Translate(backWall, types.XYZ(0, 0, -1))
	sc.AddMesh(backWall, white)

	leftWall := Quad()
	Rotate(leftWall, 90, types.XYZ(0, 1, 0))
	Translate(leftWall, types.XYZ(-1, 0, 0))
	SetNormals(leftWall, types.XYZ(0.5, 0, 0))
	sc.AddMesh(leftWall, green)

	rightWall := Quad()
	Rotate(rightWall, 90, types.XYZ(0, 1, 0))
	Translate(rightWall, types.XYZ(1, 0, 0))
	SetNormals(rightWall, types.XYZ(-0.5, 0, 0))
	sc.AddMesh(rightWall, red)

	ceiling := Quad()
	Rotate(ceiling, 90, types.XYZ(1, 0, 0))
	Translate(ceiling, types.XYZ(0, 1, 0))
	SetNormals(ceiling, types.XYZ(0, -0.5, 0))
	sc.AddMesh(ceiling, white)

	floor := Quad()
	Rotate(floor, 90, types.XYZ(1, 0, 0))
	Translate(floor, types.XYZ(0, -1, 0))
	SetNormals(floor, types.XYZ(0, 0.5, 0))
	sc.AddMesh(floor, white)

	ceilingLight := Quad()
	Rotate(ceilingLight, 90, types.XYZ(1, 0, 0))
	Translate(ceilingLight, types.XYZ(0, 0.99, 0))
	Scale(ceilingLight, types.XYZ(0.2, 1, 0.2))
	SetNormals(ceilingLight, types.XYZ(0, -0.5, 0))
	lightOffset := sc.AddMesh(ceilingLight, light)
	sc.AddLight(lightOffset, bvh.ObjectTriangle)

	box := Cube()
	Scale(box, types.XYZ(0.3, 0.3, 0.3))
	Rotate(box, 70, types.XYZ(0, 1, 0))
	Translate(box, types.XYZ(0.3, -0.699, 0.3))
	sc.AddMesh(box, metal)

	tallBox := Cube()
	Scale(tallBox, types.XYZ(0.3, 0.6, 0.3))
	Rotate(tallBox, 15, types.XYZ(0, 1, 0))
	Translate(tallBox, types.XYZ(-0.3, -0.399, -0.35))
	sc.AddMesh(tallBox, white)

	sc.AddSphere(types.XYZ(-0.5, -0.8, 0.3), 0.2, NewDielectric(1.5))

	return sc
}
