package scene

import "github.com/aaalloc/sviet/types"

type MaterialType uint32

const (
	LambertianMaterial MaterialType = iota
	MetalMaterial
	DielectricMaterial
	DiffuseLightMaterial
)

// A surface material. Fuzz only applies to metals and RefractionIndex to
// dielectrics; emissive surfaces carry their radiance in Emissive.
type Material struct {
	Type            MaterialType
	Albedo          types.Vec3
	Emissive        types.Vec3
	Fuzz            float32
	RefractionIndex float32
}

// Create a diffuse material.
func NewLambertian(albedo types.Vec3) Material {
	return Material{Type: LambertianMaterial, Albedo: albedo}
}

// Create a reflective material. A fuzz of 0 yields a perfect mirror.
func NewMetal(albedo types.Vec3, fuzz float32) Material {
	return Material{Type: MetalMaterial, Albedo: albedo, Fuzz: fuzz}
}

// Create a refractive material.
func NewDielectric(refractionIndex float32) Material {
	return Material{Type: DielectricMaterial, RefractionIndex: refractionIndex}
}

// Create a light-emitting material.
func NewDiffuseLight(emit types.Vec3) Material {
	return Material{Type: DiffuseLightMaterial, Emissive: emit}
}

// Packed form of a material as uploaded to the GPU material storage
// buffer. Each material takes 48 bytes.
//
// Properties:
//   - x: material type
//   - y: fuzz (metals)
//   - z: refraction index (dielectrics)
type GpuMaterial struct {
	Properties types.Vec4
	Albedo     types.Vec4
	Emissive   types.Vec4
}

// Pack a material for upload.
func (m Material) Pack() GpuMaterial {
	return GpuMaterial{
		Properties: types.XYZW(float32(m.Type), m.Fuzz, m.RefractionIndex, 0),
		Albedo:     m.Albedo.Vec4(0),
		Emissive:   m.Emissive.Vec4(0),
	}
}

// Pack a material list for upload.
func PackMaterials(materials []Material) []GpuMaterial {
	packed := make([]GpuMaterial, len(materials))
	for index, mat := range materials {
		packed[index] = mat.Pack()
	}
	return packed
}
