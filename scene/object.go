package scene

import "github.com/aaalloc/sviet/scene/bvh"

// A directory entry mapping an object to the range it occupies inside its
// homogeneous primitive array. The shader uses the directory to resolve a
// hit primitive back to its object and material. Each entry takes 16 bytes.
type Object struct {
	Id     uint32
	Type   uint32
	Count  uint32
	Offset uint32
}

// An emissive primitive reference used for light sampling.
type Light struct {
	Id   uint32
	Type uint32
}

// NewObject creates a directory entry for count primitives of the given
// kind starting at offset.
func NewObject(id uint32, objType bvh.ObjectType, count, offset uint32) Object {
	return Object{
		Id:     id,
		Type:   uint32(objType),
		Count:  count,
		Offset: offset,
	}
}

// NewLight marks the primitive with the given index as emissive.
func NewLight(id uint32, objType bvh.ObjectType) Light {
	return Light{
		Id:   id,
		Type: uint32(objType),
	}
}
