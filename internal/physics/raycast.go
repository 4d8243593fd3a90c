package physics

import (
	"cled/internal/components"
	"cled/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Raycast returns the closest hit over every active collider. skip and its
// descendants are ignored.
func (p *PhysicsWorld) Raycast(ray rl.Ray, maxDistance float32, skip *engine.GameObject) (engine.RaycastHit, bool) {
	if rl.Vector3Length(ray.Direction) == 0 {
		return engine.RaycastHit{}, false
	}
	ray.Direction = rl.Vector3Normalize(ray.Direction)

	var closestHit engine.RaycastHit
	closestHit.Distance = maxDistance
	hit := false

	for _, obj := range p.Objects {
		if skip != nil && (obj == skip || isDescendant(obj, skip)) {
			continue
		}
		if !activeInHierarchy(obj) {
			continue
		}
		for _, c := range obj.Components() {
			collider, ok := c.(components.Collider)
			if !ok {
				continue
			}
			if hitInfo, ok := collider.Raycast(ray, closestHit.Distance); ok && (!hit || hitInfo.Distance < closestHit.Distance) {
				closestHit = hitInfo
				closestHit.GameObject = obj
				hit = true
			}
		}
	}

	return closestHit, hit
}
