package components

import (
	"cled/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type PointLight struct {
	engine.BaseComponent
	Color     rl.Color
	Intensity float32
	Radius    float32 // falloff distance
}

func NewPointLight() *PointLight {
	return &PointLight{
		Color:     rl.White,
		Intensity: 1.0,
		Radius:    10.0,
	}
}

func (p *PointLight) GetPosition() rl.Vector3 {
	if g := p.GetGameObject(); g != nil {
		return g.WorldPosition()
	}
	return rl.Vector3Zero()
}
