package components

import (
	"cled/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ModelRenderer draws a model at its object's world transform. Models come
// from the asset cache and are shared, so the renderer never unloads them.
type ModelRenderer struct {
	engine.BaseComponent
	Model rl.Model
	Color rl.Color
	// Tint multiplies Color for one draw; the world sets it from highlight
	// state each frame.
	Tint rl.Color
}

func NewModelRenderer(model rl.Model, color rl.Color) *ModelRenderer {
	return &ModelRenderer{
		Model: model,
		Color: color,
		Tint:  rl.White,
	}
}

func (m *ModelRenderer) Draw() {
	g := m.GetGameObject()
	if g == nil || !g.Active {
		return
	}

	m.Model.Transform = g.WorldMatrix()
	rl.DrawModel(m.Model, rl.Vector3Zero(), 1.0, MultiplyColor(m.Color, m.Tint))
}

// DrawWires outlines the model, used for highlighting.
func (m *ModelRenderer) DrawWires(color rl.Color) {
	g := m.GetGameObject()
	if g == nil || !g.Active {
		return
	}

	m.Model.Transform = g.WorldMatrix()
	rl.DrawModelWires(m.Model, rl.Vector3Zero(), 1.0, color)
}

func MultiplyColor(a, b rl.Color) rl.Color {
	return rl.NewColor(
		uint8(uint16(a.R)*uint16(b.R)/255),
		uint8(uint16(a.G)*uint16(b.G)/255),
		uint8(uint16(a.B)*uint16(b.B)/255),
		uint8(uint16(a.A)*uint16(b.A)/255),
	)
}
