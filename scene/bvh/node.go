package bvh

import "github.com/aaalloc/sviet/types"

// The type of primitive referenced by a bvh leaf.
type ObjectType uint32

const (
	ObjectSphere ObjectType = iota
	ObjectTriangle
)

func (t ObjectType) String() string {
	switch t {
	case ObjectSphere:
		return "sphere"
	case ObjectTriangle:
		return "triangle"
	}
	panic("bvh: unsupported object type")
}

// A reference to a primitive inside its homogeneous scene array. Spheres
// and triangles are indexed separately.
type PrimitiveRef struct {
	Type  ObjectType
	Index int
}

const (
	// The most significant bit of a leaf's Data field tags the primitive kind.
	leafTypeBit uint32 = 1 << 31
	leafIndexMask      = leafTypeBit - 1
)

// A flattened bvh node. Each node takes 32 bytes and contains no pointers
// so the node list can be uploaded verbatim to a GPU storage buffer.
//
// For internal nodes Count is 0 and Data holds the flat index of the right
// child; the left child always occupies the next array slot. For leaf
// nodes Count holds the primitive count and Data packs the primitive kind
// tag in its most significant bit and the primitive index in the rest.
type Node struct {
	Min   types.Vec3
	Data  uint32
	Max   types.Vec3
	Count uint32
}

// Check whether this is a leaf node.
func (n Node) Leaf() bool {
	return n.Count != 0
}

// Get the flat indices of this node's children. Must only be called on
// internal nodes; the receiver's own index is required since the left
// child is encoded implicitly.
func (n Node) ChildNodes(selfIndex uint32) (left, right uint32) {
	return selfIndex + 1, n.Data
}

// Decode the primitive reference stored at a leaf.
func (n Node) Primitive() PrimitiveRef {
	ref := PrimitiveRef{
		Type:  ObjectSphere,
		Index: int(n.Data & leafIndexMask),
	}
	if n.Data&leafTypeBit != 0 {
		ref.Type = ObjectTriangle
	}
	return ref
}

// Setup node as a leaf referencing the given primitive.
func (n *Node) SetPrimitive(ref PrimitiveRef, count uint32) {
	n.Data = uint32(ref.Index) & leafIndexMask
	if ref.Type == ObjectTriangle {
		n.Data |= leafTypeBit
	}
	n.Count = count
}

// Setup node as an internal node pointing at its right child.
func (n *Node) SetRightChild(index uint32) {
	n.Data = index
	n.Count = 0
}
