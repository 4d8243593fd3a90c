package game

import (
	"cled/internal/interaction"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type binding struct {
	keys    []int32
	buttons []rl.MouseButton
}

// bindings maps editor actions to keys and mouse buttons. WASD, Space,
// LeftControl, F and L belong to the player.
var bindings = map[interaction.Action]binding{
	interaction.Place:         {buttons: []rl.MouseButton{rl.MouseLeftButton}},
	interaction.SelectRoute:   {buttons: []rl.MouseButton{rl.MouseRightButton}},
	interaction.ToggleMode:    {keys: []int32{rl.KeyTab}},
	interaction.Delete:        {keys: []int32{rl.KeyX, rl.KeyDelete, rl.KeyBackspace}},
	interaction.ToggleStart:   {keys: []int32{rl.KeyB}},
	interaction.ToggleEnd:     {keys: []int32{rl.KeyT}},
	interaction.RouteModifier: {keys: []int32{rl.KeyLeftShift, rl.KeyRightShift}},
	interaction.Slow:          {keys: []int32{rl.KeyLeftAlt, rl.KeyRightAlt}},
	interaction.RotateLeft:    {keys: []int32{rl.KeyQ}},
	interaction.RotateRight:   {keys: []int32{rl.KeyE}},
}

// keyboardInput polls raylib. While disabled, for example with a menu open,
// it reports nothing.
type keyboardInput struct {
	enabled bool
}

func (k *keyboardInput) Pressed(a interaction.Action) bool {
	if !k.enabled {
		return false
	}
	b := bindings[a]
	for _, key := range b.keys {
		if rl.IsKeyPressed(key) {
			return true
		}
	}
	for _, button := range b.buttons {
		if rl.IsMouseButtonPressed(button) {
			return true
		}
	}
	return false
}

func (k *keyboardInput) Down(a interaction.Action) bool {
	if !k.enabled {
		return false
	}
	b := bindings[a]
	for _, key := range b.keys {
		if rl.IsKeyDown(key) {
			return true
		}
	}
	for _, button := range b.buttons {
		if rl.IsMouseButtonDown(button) {
			return true
		}
	}
	return false
}
