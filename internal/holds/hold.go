// Package holds tracks hold instances: the placed set on the wall and the
// single hold currently following the view.
package holds

import (
	"math"

	"cled/internal/catalog"
	"cled/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const twoPi = 2 * math.Pi

// ModelForward is the axis hold models are authored to face out of the wall.
var ModelForward = rl.Vector3{X: 0, Y: 0, Z: 1}

// State is the per-hold editable state that is persisted.
type State struct {
	Rotation float32 `yaml:"Rotation"` // radians about the wall normal, in [0, 2π)
}

// Hold is one instance of a blueprint. Its identity is its object's UID.
type Hold struct {
	Object    *engine.GameObject
	Blueprint *catalog.Blueprint
	State     State
	Normal    rl.Vector3 // wall normal the hold is attached along

	placed bool // has been on the wall at least once
}

func (h *Hold) UID() uint64 {
	return h.Object.UID
}

func (h *Hold) Position() rl.Vector3 {
	return h.Object.Transform.Position
}

// WasPlaced reports whether h has ever been put on the wall. A hold fresh
// from the palette that is still held has not.
func (h *Hold) WasPlaced() bool {
	return h.placed
}

// WrapRotation maps r into [0, 2π). The upper bound is checked after
// narrowing, since tiny negative angles round up to float32(2π).
func WrapRotation(r float32) float32 {
	w := math.Mod(float64(r), twoPi)
	if w < 0 {
		w += twoPi
	}
	f := float32(w)
	if f >= float32(twoPi) {
		f = 0
	}
	return f
}

// Orientation faces ModelForward along normal, then spins rotation radians
// about it.
func Orientation(normal rl.Vector3, rotation float32) rl.Quaternion {
	n := ModelForward
	if rl.Vector3Length(normal) > 0 {
		n = rl.Vector3Normalize(normal)
	}

	var align rl.Quaternion
	if rl.Vector3DotProduct(ModelForward, n) < -0.9999 {
		align = rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, math.Pi)
	} else {
		align = rl.QuaternionFromVector3ToVector3(ModelForward, n)
	}
	spin := rl.QuaternionFromAxisAngle(n, rotation)
	return rl.QuaternionNormalize(rl.QuaternionMultiply(spin, align))
}
