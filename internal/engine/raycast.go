package engine

import rl "github.com/gen2brain/raylib-go/raylib"

// RaycastHit holds information about a raycast hit.
// Defined here to avoid circular imports with physics package.
type RaycastHit struct {
	GameObject *GameObject
	Point      rl.Vector3
	Normal     rl.Vector3
	Distance   float32
}

// Raycaster is the nearest-hit ray query the editor interacts through.
// skip, when non-nil, is excluded along with its descendants.
type Raycaster interface {
	Raycast(ray rl.Ray, maxDistance float32, skip *GameObject) (RaycastHit, bool)
}
