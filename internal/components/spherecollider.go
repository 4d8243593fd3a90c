package components

import (
	"math"

	"cled/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type SphereCollider struct {
	engine.BaseComponent
	Radius float32
	Offset rl.Vector3
}

func NewSphereCollider(radius float32) *SphereCollider {
	return &SphereCollider{
		Radius: radius,
		Offset: rl.Vector3{},
	}
}

// GetCenter returns the world-space center of this collider
func (s *SphereCollider) GetCenter() rl.Vector3 {
	g := s.GetGameObject()
	return rl.Vector3Add(g.WorldPosition(), s.Offset)
}

func (s *SphereCollider) Raycast(ray rl.Ray, maxDistance float32) (engine.RaycastHit, bool) {
	center := s.GetCenter()

	oc := rl.Vector3Subtract(ray.Position, center)
	b := rl.Vector3DotProduct(oc, ray.Direction)
	c := rl.Vector3DotProduct(oc, oc) - s.Radius*s.Radius

	discriminant := b*b - c
	if discriminant < 0 {
		return engine.RaycastHit{}, false
	}

	sq := float32(math.Sqrt(float64(discriminant)))
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 || t > maxDistance {
		return engine.RaycastHit{}, false
	}

	point := rl.Vector3Add(ray.Position, rl.Vector3Scale(ray.Direction, t))
	normal := rl.Vector3Normalize(rl.Vector3Subtract(point, center))

	return engine.RaycastHit{GameObject: s.GetGameObject(), Point: point, Normal: normal, Distance: t}, true
}
