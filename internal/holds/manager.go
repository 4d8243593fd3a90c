package holds

import (
	"cmp"
	"fmt"
	"slices"

	"cled/internal/catalog"
	"cled/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"
)

const (
	// DefaultSmoothness is used while a held hold follows the view.
	DefaultSmoothness float32 = 0.5
	// SlowSmoothness is used while the slow-move modifier is held.
	SlowSmoothness float32 = 0.85
)

// Spawner turns a blueprint into a scene object and removes it again.
type Spawner interface {
	Spawn(bp *catalog.Blueprint) *engine.GameObject
	Despawn(obj *engine.GameObject)
}

// Manager owns every hold instance. At most one hold is held; the rest are
// placed. Calling a held-hold operation with nothing held panics: callers
// check Held first.
type Manager struct {
	spawner  Spawner
	log      *zap.Logger
	placed   map[uint64]*Hold
	held     *Hold
	snapNext bool
}

func NewManager(spawner Spawner, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		spawner: spawner,
		log:     log,
		placed:  make(map[uint64]*Hold),
	}
}

// Spawn instantiates bp without placing or holding it.
func (m *Manager) Spawn(bp *catalog.Blueprint) *Hold {
	obj := m.spawner.Spawn(bp)
	return &Hold{Object: obj, Blueprint: bp, Normal: ModelForward}
}

// SetHeld instantiates bp and starts holding it. The new hold stays hidden
// until the first InterpolateToHit, which snaps it into place.
func (m *Manager) SetHeld(bp *catalog.Blueprint, state State) *Hold {
	m.mustNotHold("SetHeld")
	h := m.Spawn(bp)
	h.State.Rotation = WrapRotation(state.Rotation)
	h.Object.Active = false
	m.held = h
	m.snapNext = true
	m.log.Debug("Holding new hold", zap.Uint64("hold", h.UID()), zap.String("blueprint", bp.ID))
	return h
}

// PickUp detaches a placed hold and holds it, keeping its rotation.
func (m *Manager) PickUp(uid uint64) *Hold {
	m.mustNotHold("PickUp")
	h, ok := m.placed[uid]
	if !ok {
		panic(fmt.Sprintf("holds: PickUp of hold %d which is not placed", uid))
	}
	delete(m.placed, uid)
	m.held = h
	m.snapNext = true
	m.log.Debug("Picked up hold", zap.Uint64("hold", uid))
	return h
}

// PutDown attaches the held hold where it was last interpolated to.
func (m *Manager) PutDown() *Hold {
	h := m.mustHeld("PutDown")
	h.Object.Active = true
	h.placed = true
	m.placed[h.UID()] = h
	m.held = nil
	m.log.Debug("Put down hold", zap.Uint64("hold", h.UID()))
	return h
}

// DeleteHeld destroys the held hold.
func (m *Manager) DeleteHeld() *Hold {
	h := m.mustHeld("DeleteHeld")
	m.held = nil
	m.spawner.Despawn(h.Object)
	m.log.Debug("Deleted held hold", zap.Uint64("hold", h.UID()))
	return h
}

// RotateHeld accumulates delta radians modulo 2π.
func (m *Manager) RotateHeld(delta float32) {
	h := m.mustHeld("RotateHeld")
	h.State.Rotation = WrapRotation(h.State.Rotation + delta)
}

// HideHeld hides the held hold without destroying it. The next
// InterpolateToHit snaps instead of blending from the stale pose.
func (m *Manager) HideHeld() {
	h := m.mustHeld("HideHeld")
	h.Object.Active = false
	m.snapNext = true
}

// InterpolateToHit blends the held hold toward point and toward the
// orientation derived from normal by 1-smoothness. Smoothness 0 snaps.
func (m *Manager) InterpolateToHit(point, normal rl.Vector3, smoothness float32) {
	h := m.mustHeld("InterpolateToHit")
	if m.snapNext {
		smoothness = 0
		m.snapNext = false
	}
	smoothness = min(max(smoothness, 0), 1)

	if rl.Vector3Length(normal) > 0 {
		h.Normal = rl.Vector3Normalize(normal)
	}
	target := Orientation(h.Normal, h.State.Rotation)
	tr := &h.Object.Transform

	if smoothness == 0 {
		tr.Position = point
		tr.Rotation = target
	} else {
		t := 1 - smoothness
		tr.Position = rl.Vector3Lerp(tr.Position, point, t)
		tr.Rotation = rl.QuaternionSlerp(tr.Rotation, target, t)
	}
	h.Object.Active = true
}

// Place puts h on the wall at position, facing along normal.
func (m *Manager) Place(h *Hold, position, normal rl.Vector3, state State) {
	if rl.Vector3Length(normal) > 0 {
		h.Normal = rl.Vector3Normalize(normal)
	}
	h.State.Rotation = WrapRotation(state.Rotation)
	h.Object.Transform.Position = position
	h.Object.Transform.Rotation = Orientation(h.Normal, h.State.Rotation)
	h.Object.Active = true
	h.placed = true
	m.placed[h.UID()] = h
}

// Unplace removes a placed hold from the wall, destroying it when asked.
// Returns nil if uid is not placed.
func (m *Manager) Unplace(uid uint64, destroy bool) *Hold {
	h, ok := m.placed[uid]
	if !ok {
		return nil
	}
	delete(m.placed, uid)
	if destroy {
		m.spawner.Despawn(h.Object)
	}
	m.log.Debug("Unplaced hold", zap.Uint64("hold", uid), zap.Bool("destroyed", destroy))
	return h
}

// Get finds a placed or held hold.
func (m *Manager) Get(uid uint64) (*Hold, bool) {
	if h, ok := m.placed[uid]; ok {
		return h, true
	}
	if m.held != nil && m.held.UID() == uid {
		return m.held, true
	}
	return nil, false
}

func (m *Manager) IsPlaced(uid uint64) bool {
	_, ok := m.placed[uid]
	return ok
}

// Held returns the held hold or nil.
func (m *Manager) Held() *Hold {
	return m.held
}

// Placed returns placed holds ordered by UID.
func (m *Manager) Placed() []*Hold {
	out := make([]*Hold, 0, len(m.placed))
	for _, h := range m.placed {
		out = append(out, h)
	}
	slices.SortFunc(out, func(a, b *Hold) int {
		return cmp.Compare(a.UID(), b.UID())
	})
	return out
}

func (m *Manager) Len() int {
	return len(m.placed)
}

// Clear destroys every hold, held or placed.
func (m *Manager) Clear() {
	if m.held != nil {
		m.spawner.Despawn(m.held.Object)
		m.held = nil
	}
	for uid, h := range m.placed {
		m.spawner.Despawn(h.Object)
		delete(m.placed, uid)
	}
	m.snapNext = false
}

func (m *Manager) mustHeld(op string) *Hold {
	if m.held == nil {
		panic("holds: " + op + " with no held hold")
	}
	return m.held
}

func (m *Manager) mustNotHold(op string) {
	if m.held != nil {
		panic("holds: " + op + " while already holding a hold")
	}
}
