package components

import (
	"cled/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// BoxCollider is axis-aligned in world space; rotation is ignored.
type BoxCollider struct {
	engine.BaseComponent
	Size   rl.Vector3
	Offset rl.Vector3
}

func NewBoxCollider(size rl.Vector3) *BoxCollider {
	return &BoxCollider{
		Size:   size,
		Offset: rl.Vector3{},
	}
}

// GetCenter returns the world-space center of this collider
func (b *BoxCollider) GetCenter() rl.Vector3 {
	return rl.Vector3Add(b.GetGameObject().WorldPosition(), b.Offset)
}

// GetWorldSize returns Size scaled by the object's world scale.
func (b *BoxCollider) GetWorldSize() rl.Vector3 {
	s := b.GetGameObject().WorldScale()
	return rl.Vector3{X: b.Size.X * s.X, Y: b.Size.Y * s.Y, Z: b.Size.Z * s.Z}
}

func (b *BoxCollider) GetAABB() AABB {
	return NewAABBFromCenter(b.GetCenter(), b.GetWorldSize())
}

func (b *BoxCollider) Raycast(ray rl.Ray, maxDistance float32) (engine.RaycastHit, bool) {
	box := b.GetAABB()
	tmin, tmax, ok := box.RayEntry(ray.Position, ray.Direction, maxDistance)
	if !ok {
		return engine.RaycastHit{}, false
	}

	t := tmin
	if t < 0 {
		t = tmax
	}
	if t > maxDistance {
		return engine.RaycastHit{}, false
	}

	point := rl.Vector3Add(ray.Position, rl.Vector3Scale(ray.Direction, t))

	// Calculate normal based on which face was hit
	var normal rl.Vector3
	epsilon := float32(0.001)
	switch {
	case abs(point.X-box.Min.X) < epsilon:
		normal = rl.Vector3{X: -1}
	case abs(point.X-box.Max.X) < epsilon:
		normal = rl.Vector3{X: 1}
	case abs(point.Y-box.Min.Y) < epsilon:
		normal = rl.Vector3{Y: -1}
	case abs(point.Y-box.Max.Y) < epsilon:
		normal = rl.Vector3{Y: 1}
	case abs(point.Z-box.Min.Z) < epsilon:
		normal = rl.Vector3{Z: -1}
	default:
		normal = rl.Vector3{Z: 1}
	}

	return engine.RaycastHit{GameObject: b.GetGameObject(), Point: point, Normal: normal, Distance: t}, true
}
