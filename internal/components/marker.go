package components

import (
	"cled/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Marker is the ring drawn in front of a start or end hold. It is a child
// of the hold, so it follows the hold when picked up.
type Marker struct {
	engine.BaseComponent
	Color  rl.Color
	Radius float32
	Offset float32 // distance out of the wall along the hold's facing
}

func NewMarker(color rl.Color) *Marker {
	return &Marker{Color: color, Radius: 0.12, Offset: 0.08}
}

func (m *Marker) Center() rl.Vector3 {
	g := m.GetGameObject()
	out := rl.Vector3RotateByQuaternion(rl.Vector3{Z: m.Offset}, g.WorldRotation())
	return rl.Vector3Add(g.WorldPosition(), out)
}

func (m *Marker) Draw() {
	g := m.GetGameObject()
	if g == nil || !g.Active || (g.Parent != nil && !g.Parent.Active) {
		return
	}
	center := m.Center()
	axis := rl.Vector3RotateByQuaternion(rl.Vector3{Z: 1}, g.WorldRotation())
	rl.DrawCylinderWiresEx(center, rl.Vector3Add(center, rl.Vector3Scale(axis, 0.01)), m.Radius, m.Radius, 24, m.Color)
}
