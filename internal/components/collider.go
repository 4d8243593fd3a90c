package components

import (
	"math"

	"cled/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Collider is a component the physics world can cast rays against.
// Directions passed in are unit length.
type Collider interface {
	engine.Component
	Raycast(ray rl.Ray, maxDistance float32) (engine.RaycastHit, bool)
}

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min, Max rl.Vector3
}

func NewAABBFromCenter(center, size rl.Vector3) AABB {
	half := rl.Vector3{X: abs(size.X) / 2, Y: abs(size.Y) / 2, Z: abs(size.Z) / 2}
	return AABB{
		Min: rl.Vector3Subtract(center, half),
		Max: rl.Vector3Add(center, half),
	}
}

// emptyAABB is the identity for Extend.
func emptyAABB() AABB {
	return AABB{
		Min: rl.Vector3{X: math.MaxFloat32, Y: math.MaxFloat32, Z: math.MaxFloat32},
		Max: rl.Vector3{X: -math.MaxFloat32, Y: -math.MaxFloat32, Z: -math.MaxFloat32},
	}
}

func (a AABB) Extend(p rl.Vector3) AABB {
	return AABB{Min: rl.Vector3Min(a.Min, p), Max: rl.Vector3Max(a.Max, p)}
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// RayEntry runs the slab test and returns the parametric entry and exit
// distances. ok is false when the ray misses or the box is behind it.
func (a AABB) RayEntry(origin, direction rl.Vector3, maxDistance float32) (tmin, tmax float32, ok bool) {
	tmin, tmax = -math.MaxFloat32, math.MaxFloat32
	o := [3]float32{origin.X, origin.Y, origin.Z}
	d := [3]float32{direction.X, direction.Y, direction.Z}
	lo := [3]float32{a.Min.X, a.Min.Y, a.Min.Z}
	hi := [3]float32{a.Max.X, a.Max.Y, a.Max.Z}

	for i := range 3 {
		if d[i] == 0 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, 0, false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
		if tmin > tmax {
			return 0, 0, false
		}
	}
	if tmax < 0 || tmin > maxDistance {
		return 0, 0, false
	}
	return tmin, tmax, true
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
