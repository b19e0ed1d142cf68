package bvh

import (
	"sort"
	"time"

	"github.com/aaalloc/sviet/log"
)

// A primitive queued for partitioning: its reference and cached bounds.
type primitive struct {
	ref    PrimitiveRef
	bounds Aabb
}

// Transient tree node owned by the builder for the duration of a single
// Build call. A node is a leaf iff both children are nil, in which case
// refs holds the partitioned primitives; internal nodes keep refs empty.
type buildNode struct {
	bounds Aabb
	left   *buildNode
	right  *buildNode
	refs   []PrimitiveRef
}

type stats struct {
	nodes    int
	leafs    int
	maxDepth int
}

type builder struct {
	logger log.Logger

	// Flattened bvh nodes stored as a contiguous list.
	nodes []Node

	stats stats
}

// Construct a flat BVH from the scene's sphere and triangle lists. The two
// lists are indexed independently; leafs reference primitives with a
// (kind, index) pair.
//
// The builder partitions primitives with object-median splits: at every
// level the list is sorted by centroid along the widest axis of the node
// bounds and cut at the midpoint. Recursion stops only when a single
// primitive remains, so every leaf holds exactly one primitive and a tree
// over k primitives always flattens to 2k-1 nodes.
func Build(spheres []Bounded, triangles []Bounded) []Node {
	b := &builder{
		logger: log.New("bvh builder"),
	}

	workList := make([]primitive, 0, len(spheres)+len(triangles))
	for index, s := range spheres {
		workList = append(workList, primitive{
			ref:    PrimitiveRef{Type: ObjectSphere, Index: index},
			bounds: s.Aabb(),
		})
	}
	for index, tri := range triangles {
		workList = append(workList, primitive{
			ref:    PrimitiveRef{Type: ObjectTriangle, Index: index},
			bounds: tri.Aabb(),
		})
	}

	start := time.Now()
	root := b.partition(workList, 0)

	b.nodes = make([]Node, 0, b.stats.nodes+b.stats.leafs)
	b.flatten(root)

	b.logger.Debugf(
		"bvh build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d",
		time.Since(start).Nanoseconds()/1e6,
		b.stats.maxDepth, b.stats.nodes, b.stats.leafs,
	)
	return b.nodes
}

// Partition worklist and return the subtree root.
func (b *builder) partition(workList []primitive, depth int) *buildNode {
	if depth > b.stats.maxDepth {
		b.stats.maxDepth = depth
	}

	// Calculate bounding box for node
	bounds := EmptyAabb()
	for _, item := range workList {
		bounds.GrowAabb(item.bounds)
	}

	// A single primitive (or an empty scene) terminates the recursion.
	if len(workList) <= 1 {
		node := &buildNode{bounds: bounds}
		for _, item := range workList {
			node.refs = append(node.refs, item.ref)
		}
		b.stats.leafs++
		return node
	}

	// Split along the axis with the largest extent. X wins ties with Y,
	// Y wins ties with Z.
	extent := bounds.Max.Sub(bounds.Min)
	axis := 0
	if extent[1] > extent[axis] {
		axis = 1
	}
	if extent[2] > extent[axis] {
		axis = 2
	}

	// Sort by centroid along the chosen axis. Incomparable (NaN) centroid
	// pairs order as equal so the sort always terminates.
	sort.Slice(workList, func(i, j int) bool {
		return workList[i].bounds.Center()[axis] < workList[j].bounds.Center()[axis]
	})

	// Object-median split; for odd lengths the right half takes the extra item.
	splitIndex := len(workList) / 2

	b.stats.nodes++
	return &buildNode{
		bounds: bounds,
		left:   b.partition(workList[:splitIndex], depth+1),
		right:  b.partition(workList[splitIndex:], depth+1),
	}
}

// Serialize the build tree in pre-order and return the flat index assigned
// to the subtree root. A node's slot is reserved before its children are
// visited so the left child always lands on the next slot; only the right
// child index needs to be recorded.
func (b *builder) flatten(node *buildNode) uint32 {
	index := uint32(len(b.nodes))
	b.nodes = append(b.nodes, Node{})

	flat := Node{
		Min: node.bounds.Min,
		Max: node.bounds.Max,
	}

	if node.left == nil && node.right == nil {
		// An empty leaf encodes a harmless placeholder (sphere 0, count 0).
		ref := PrimitiveRef{Type: ObjectSphere, Index: 0}
		if len(node.refs) > 0 {
			ref = node.refs[0]
		}
		flat.SetPrimitive(ref, uint32(len(node.refs)))
	} else {
		b.flatten(node.left)
		flat.SetRightChild(b.flatten(node.right))
	}

	b.nodes[index] = flat
	return index
}
