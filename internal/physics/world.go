// Package physics answers ray queries against the colliders in the scene.
// There is no simulation: holds and the wall are static between edits.
package physics

import (
	"slices"

	"cled/internal/components"
	"cled/internal/engine"
)

type PhysicsWorld struct {
	Objects []*engine.GameObject
}

func NewPhysicsWorld() *PhysicsWorld {
	return &PhysicsWorld{
		Objects: make([]*engine.GameObject, 0),
	}
}

// AddObject registers g and its descendants that carry a collider.
func (p *PhysicsWorld) AddObject(g *engine.GameObject) {
	if hasCollider(g) && !slices.Contains(p.Objects, g) {
		p.Objects = append(p.Objects, g)
	}
	for _, child := range g.Children {
		p.AddObject(child)
	}
}

// RemoveObject drops g and its descendants.
func (p *PhysicsWorld) RemoveObject(g *engine.GameObject) {
	p.Objects = slices.DeleteFunc(p.Objects, func(o *engine.GameObject) bool {
		return o == g || isDescendant(o, g)
	})
}

func (p *PhysicsWorld) Clear() {
	p.Objects = p.Objects[:0]
}

func hasCollider(g *engine.GameObject) bool {
	for _, c := range g.Components() {
		if _, ok := c.(components.Collider); ok {
			return true
		}
	}
	return false
}

// isDescendant reports whether g is below ancestor in the hierarchy.
func isDescendant(g, ancestor *engine.GameObject) bool {
	for p := g.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// activeInHierarchy is false when g or any ancestor is inactive.
func activeInHierarchy(g *engine.GameObject) bool {
	for o := g; o != nil; o = o.Parent {
		if !o.Active {
			return false
		}
	}
	return true
}
