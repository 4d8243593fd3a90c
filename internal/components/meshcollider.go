package components

import (
	"unsafe"

	"cled/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Triangle represents a single triangle with precomputed normal
type Triangle struct {
	V0, V1, V2 rl.Vector3
	Normal     rl.Vector3
}

func NewTriangle(v0, v1, v2 rl.Vector3) Triangle {
	n := rl.Vector3Normalize(rl.Vector3CrossProduct(rl.Vector3Subtract(v1, v0), rl.Vector3Subtract(v2, v0)))
	return Triangle{V0: v0, V1: v1, V2: v2, Normal: n}
}

func (t *Triangle) centroid() rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Add(rl.Vector3Add(t.V0, t.V1), t.V2), 1.0/3.0)
}

// BVHNode is a node in the bounding volume hierarchy
type BVHNode struct {
	Bounds    AABB
	Left      *BVHNode
	Right     *BVHNode
	Triangles []int // indices into the triangle array (only for leaf nodes)
}

// MeshCollider keeps triangles in the object's local space, so the object
// can move and rotate without a rebuild. Rays are brought into local space
// for the query.
type MeshCollider struct {
	engine.BaseComponent
	Triangles []Triangle
	Root      *BVHNode
}

func NewMeshCollider() *MeshCollider {
	return &MeshCollider{}
}

// BuildFromModel extracts triangles from a raylib Model and builds the BVH
func (m *MeshCollider) BuildFromModel(model rl.Model) {
	var tris []Triangle
	meshes := unsafe.Slice(model.Meshes, model.MeshCount)

	for _, mesh := range meshes {
		vertices := unsafe.Slice(mesh.Vertices, mesh.VertexCount*3)
		vertex := func(i int32) rl.Vector3 {
			return rl.Vector3{X: vertices[i*3+0], Y: vertices[i*3+1], Z: vertices[i*3+2]}
		}

		if mesh.Indices != nil {
			indices := unsafe.Slice(mesh.Indices, mesh.TriangleCount*3)
			for i := int32(0); i < mesh.TriangleCount; i++ {
				tris = append(tris, NewTriangle(
					vertex(int32(indices[i*3+0])),
					vertex(int32(indices[i*3+1])),
					vertex(int32(indices[i*3+2])),
				))
			}
		} else {
			// Non-indexed mesh (every 3 vertices = 1 triangle)
			for i := int32(0); i < mesh.VertexCount/3; i++ {
				tris = append(tris, NewTriangle(vertex(i*3), vertex(i*3+1), vertex(i*3+2)))
			}
		}
	}

	m.SetTriangles(tris)
}

// SetTriangles replaces the local-space triangles and rebuilds the BVH.
func (m *MeshCollider) SetTriangles(tris []Triangle) {
	m.Triangles = tris
	m.Root = nil
	if len(tris) == 0 {
		return
	}

	indices := make([]int, len(tris))
	for i := range indices {
		indices[i] = i
	}
	m.Root = m.buildBVHNode(indices, 0)
}

func (m *MeshCollider) buildBVHNode(indices []int, depth int) *BVHNode {
	node := &BVHNode{}

	// Compute bounds for all triangles in this node
	node.Bounds = m.computeBounds(indices)

	// If few triangles or max depth, make leaf
	if len(indices) <= 4 || depth > 20 {
		node.Triangles = indices
		return node
	}

	// Find longest axis
	size := rl.Vector3Subtract(node.Bounds.Max, node.Bounds.Min)
	axis := 0
	if size.Y > size.X {
		axis = 1
	}
	if size.Z > getAxisValue(size, axis) {
		axis = 2
	}

	mid := m.partitionTriangles(indices, axis)
	if mid == 0 || mid == len(indices) {
		// Couldn't split, make leaf
		node.Triangles = indices
		return node
	}

	node.Left = m.buildBVHNode(indices[:mid], depth+1)
	node.Right = m.buildBVHNode(indices[mid:], depth+1)

	return node
}

func (m *MeshCollider) computeBounds(indices []int) AABB {
	bounds := emptyAABB()
	for _, idx := range indices {
		tri := &m.Triangles[idx]
		bounds = bounds.Extend(tri.V0).Extend(tri.V1).Extend(tri.V2)
	}
	return bounds
}

// partitionTriangles splits indices around the mean centroid on axis.
func (m *MeshCollider) partitionTriangles(indices []int, axis int) int {
	center := float32(0)
	for _, idx := range indices {
		center += getAxisValue(m.Triangles[idx].centroid(), axis)
	}
	center /= float32(len(indices))

	left := 0
	right := len(indices) - 1
	for left <= right {
		if getAxisValue(m.Triangles[indices[left]].centroid(), axis) < center {
			left++
		} else {
			indices[left], indices[right] = indices[right], indices[left]
			right--
		}
	}
	return left
}

func getAxisValue(v rl.Vector3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Raycast returns the nearest triangle hit. The normal faces back toward
// the ray so single-sided walls work from either side.
func (m *MeshCollider) Raycast(ray rl.Ray, maxDistance float32) (engine.RaycastHit, bool) {
	g := m.GetGameObject()
	if m.Root == nil || g == nil {
		return engine.RaycastHit{}, false
	}

	world := g.WorldMatrix()
	inv := rl.MatrixInvert(world)
	origin := rl.Vector3Transform(ray.Position, inv)
	// Not normalized: t stays a world-space distance along the unit ray.
	dir := rl.Vector3Subtract(rl.Vector3Transform(rl.Vector3Add(ray.Position, ray.Direction), inv), origin)

	best := -1
	bestT := maxDistance
	m.raycastNode(m.Root, origin, dir, &best, &bestT)
	if best < 0 {
		return engine.RaycastHit{}, false
	}

	tri := &m.Triangles[best]
	v0 := rl.Vector3Transform(tri.V0, world)
	v1 := rl.Vector3Transform(tri.V1, world)
	v2 := rl.Vector3Transform(tri.V2, world)
	normal := rl.Vector3Normalize(rl.Vector3CrossProduct(rl.Vector3Subtract(v1, v0), rl.Vector3Subtract(v2, v0)))
	if rl.Vector3DotProduct(normal, ray.Direction) > 0 {
		normal = rl.Vector3Negate(normal)
	}

	return engine.RaycastHit{
		GameObject: g,
		Point:      rl.Vector3Add(ray.Position, rl.Vector3Scale(ray.Direction, bestT)),
		Normal:     normal,
		Distance:   bestT,
	}, true
}

func (m *MeshCollider) raycastNode(node *BVHNode, origin, dir rl.Vector3, best *int, bestT *float32) {
	if node == nil {
		return
	}
	if _, _, ok := node.Bounds.RayEntry(origin, dir, *bestT); !ok {
		return
	}
	if node.Triangles != nil {
		for _, idx := range node.Triangles {
			if t, ok := rayTriangle(origin, dir, &m.Triangles[idx]); ok && t < *bestT {
				*best, *bestT = idx, t
			}
		}
		return
	}
	m.raycastNode(node.Left, origin, dir, best, bestT)
	m.raycastNode(node.Right, origin, dir, best, bestT)
}

// rayTriangle is the Möller–Trumbore intersection test.
func rayTriangle(origin, dir rl.Vector3, tri *Triangle) (float32, bool) {
	const epsilon = 1e-7

	edge1 := rl.Vector3Subtract(tri.V1, tri.V0)
	edge2 := rl.Vector3Subtract(tri.V2, tri.V0)
	h := rl.Vector3CrossProduct(dir, edge2)
	a := rl.Vector3DotProduct(edge1, h)
	if a > -epsilon && a < epsilon {
		return 0, false
	}

	f := 1 / a
	s := rl.Vector3Subtract(origin, tri.V0)
	u := f * rl.Vector3DotProduct(s, h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := rl.Vector3CrossProduct(s, edge1)
	v := f * rl.Vector3DotProduct(dir, q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := f * rl.Vector3DotProduct(edge2, q)
	return t, t > epsilon
}

// TriangleCount returns the number of triangles in the collider
func (m *MeshCollider) TriangleCount() int {
	return len(m.Triangles)
}

// GetBounds returns the local-space AABB of the whole mesh.
func (m *MeshCollider) GetBounds() AABB {
	if m.Root == nil {
		return AABB{}
	}
	return m.Root.Bounds
}
