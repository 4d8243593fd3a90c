// Package assets caches GPU resources by file path. Holds made from the
// same blueprint share one model.
package assets

import (
	"path/filepath"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var manager *Manager

type Manager struct {
	models   map[string]rl.Model
	textures map[string]rl.Texture2D
}

func Init() {
	manager = &Manager{
		models:   make(map[string]rl.Model),
		textures: make(map[string]rl.Texture2D),
	}
}

// LoadModel loads an .obj together with the .mtl it references.
func LoadModel(path string) rl.Model {
	if manager == nil {
		Init()
	}

	if model, exists := manager.models[path]; exists {
		return model
	}

	model := rl.LoadModel(path)
	manager.models[path] = model
	return model
}

// LoadTexture is used for blueprint preview images.
func LoadTexture(path string) rl.Texture2D {
	if manager == nil {
		Init()
	}

	if texture, exists := manager.textures[path]; exists {
		return texture
	}

	texture := rl.LoadTexture(path)
	manager.textures[path] = texture
	return texture
}

// Evict unloads everything cached from below dir so the next load reads
// the files again.
func Evict(dir string) {
	if manager == nil {
		return
	}
	prefix := filepath.Clean(dir) + string(filepath.Separator)
	for path, model := range manager.models {
		if strings.HasPrefix(filepath.Clean(path), prefix) {
			rl.UnloadModel(model)
			delete(manager.models, path)
		}
	}
	for path, texture := range manager.textures {
		if strings.HasPrefix(filepath.Clean(path), prefix) {
			rl.UnloadTexture(texture)
			delete(manager.textures, path)
		}
	}
}

// EvictModel drops one cached model so the next LoadModel re-reads it.
func EvictModel(path string) {
	if manager == nil {
		return
	}
	if model, ok := manager.models[path]; ok {
		rl.UnloadModel(model)
		delete(manager.models, path)
	}
}

func Unload() {
	if manager == nil {
		return
	}

	for _, model := range manager.models {
		rl.UnloadModel(model)
	}

	for _, texture := range manager.textures {
		rl.UnloadTexture(texture)
	}

	manager.models = make(map[string]rl.Model)
	manager.textures = make(map[string]rl.Texture2D)
}
