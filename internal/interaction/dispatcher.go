// Package interaction turns one frame of input plus one view ray into
// editor mutations. It is the only place that drives the mode machine.
package interaction

import (
	"math"

	"cled/internal/catalog"
	"cled/internal/engine"
	"cled/internal/highlight"
	"cled/internal/holds"
	"cled/internal/mode"
	"cled/internal/routes"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"
)

const (
	// MaxReach is how far the view ray looks for a surface.
	MaxReach float32 = 100
	// RotateSpeed is the held-hold spin rate in radians per second.
	RotateSpeed float32 = math.Pi
	// SlowFactor scales RotateSpeed while Slow is down.
	SlowFactor float32 = 0.25
)

type HitKind int

const (
	NoHit HitKind = iota
	WallHit
	HoldHit
)

func (k HitKind) String() string {
	switch k {
	case NoHit:
		return "NoHit"
	case WallHit:
		return "WallHit"
	case HoldHit:
		return "HoldHit"
	default:
		return "HitKind(?)"
	}
}

// Outcome is the classified result of a frame's raycast.
type Outcome struct {
	Kind HitKind
	Hold uint64 // set for HoldHit
	Hit  engine.RaycastHit
}

// Config wires a Dispatcher to the editor state it mutates.
type Config struct {
	Mode       *mode.Machine
	Highlights *highlight.State
	Holds      *holds.Manager
	Routes     *routes.Book
	Raycaster  engine.Raycaster
	Input      Input
	// Blueprint returns the palette's current blueprint, or nil.
	Blueprint func() *catalog.Blueprint
	// LookAt turns the view toward a point. Optional.
	LookAt func(point rl.Vector3)
	Logger *zap.Logger
}

type Dispatcher struct {
	mode       *mode.Machine
	highlights *highlight.State
	holds      *holds.Manager
	routes     *routes.Book
	raycaster  engine.Raycaster
	input      Input
	blueprint  func() *catalog.Blueprint
	lookAt     func(rl.Vector3)
	log        *zap.Logger
	subs       []engine.Subscription
}

func NewDispatcher(cfg Config) *Dispatcher {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dispatcher{
		mode:       cfg.Mode,
		highlights: cfg.Highlights,
		holds:      cfg.Holds,
		routes:     cfg.Routes,
		raycaster:  cfg.Raycaster,
		input:      cfg.Input,
		blueprint:  cfg.Blueprint,
		lookAt:     cfg.LookAt,
		log:        log,
	}
	d.subs = append(d.subs,
		d.mode.OnChange(d.modeChanged),
		d.routes.OnChange(d.routesChanged),
	)
	return d
}

// Close detaches the dispatcher from the mode machine and route book.
func (d *Dispatcher) Close() {
	for _, s := range d.subs {
		s.Unsubscribe()
	}
	d.subs = nil
}

// Tick runs one frame: the mode toggle first, then one raycast and exactly
// one behavior for the current mode and hit.
func (d *Dispatcher) Tick(view rl.Ray, dt float32) Outcome {
	if d.input.Pressed(ToggleMode) {
		d.toggleMode()
	}

	out := d.cast(view)
	switch d.mode.Current() {
	case mode.Holding:
		d.tickHolding(out, dt)
	default:
		d.tickPicking(out)
	}
	return out
}

func (d *Dispatcher) cast(view rl.Ray) Outcome {
	var skip *engine.GameObject
	if h := d.holds.Held(); h != nil {
		skip = h.Object
	}
	hit, ok := d.raycaster.Raycast(view, MaxReach, skip)
	if !ok || hit.GameObject == nil {
		return Outcome{Kind: NoHit}
	}
	for obj := hit.GameObject; obj != nil; obj = obj.Parent {
		if d.holds.IsPlaced(obj.UID) {
			return Outcome{Kind: HoldHit, Hold: obj.UID, Hit: hit}
		}
	}
	return Outcome{Kind: WallHit, Hit: hit}
}

func (d *Dispatcher) toggleMode() {
	switch d.mode.Current() {
	case mode.Normal:
		bp := d.currentBlueprint()
		if bp == nil {
			d.log.Debug("No blueprint selected to hold")
			return
		}
		d.holds.SetHeld(bp, holds.State{})
		d.mode.Set(mode.Holding)
	case mode.Holding:
		d.discardHeld()
		d.mode.Set(mode.Normal)
	case mode.Route:
		d.mode.Set(mode.Normal)
	}
}

func (d *Dispatcher) currentBlueprint() *catalog.Blueprint {
	if d.blueprint == nil {
		return nil
	}
	return d.blueprint()
}

// tickHolding treats any surface, including other holds, as a place to
// follow.
func (d *Dispatcher) tickHolding(out Outcome, dt float32) {
	if d.holds.Held() == nil {
		d.mode.Set(mode.Normal)
		return
	}
	if d.input.Pressed(Delete) {
		d.discardHeld()
		d.mode.Set(mode.Normal)
		return
	}
	if out.Kind == NoHit {
		d.holds.HideHeld()
		return
	}

	slow := d.input.Down(Slow)
	speed := RotateSpeed
	smoothness := holds.DefaultSmoothness
	if slow {
		speed *= SlowFactor
		smoothness = holds.SlowSmoothness
	}
	if d.input.Down(RotateLeft) {
		d.holds.RotateHeld(speed * dt)
	}
	if d.input.Down(RotateRight) {
		d.holds.RotateHeld(-speed * dt)
	}

	if d.input.Pressed(Place) {
		d.holds.InterpolateToHit(out.Hit.Point, out.Hit.Normal, 0)
		h := d.holds.PutDown()
		d.log.Info("Placed hold", zap.Uint64("hold", h.UID()), zap.String("blueprint", h.Blueprint.ID))
		d.mode.Set(mode.Normal)
		return
	}
	d.holds.InterpolateToHit(out.Hit.Point, out.Hit.Normal, smoothness)
}

func (d *Dispatcher) tickPicking(out Outcome) {
	if out.Kind != HoldHit {
		d.clearPrimary()
		return
	}
	uid := out.Hold
	d.hover(uid)

	switch {
	case d.input.Pressed(Place) && d.input.Down(RouteModifier):
		if d.mode.Is(mode.Route) {
			d.toggleMembership(uid)
		}
	case d.input.Pressed(Place):
		d.pickUp(uid)
	case d.input.Pressed(SelectRoute):
		d.selectRoute(uid)
	case d.input.Pressed(ToggleStart):
		d.routes.ToggleStarting(uid)
		d.log.Debug("Toggled starting hold", zap.Uint64("hold", uid), zap.Bool("starting", d.routes.IsStarting(uid)))
	case d.input.Pressed(ToggleEnd):
		d.routes.ToggleEnding(uid)
		d.log.Debug("Toggled ending hold", zap.Uint64("hold", uid), zap.Bool("ending", d.routes.IsEnding(uid)))
	case d.input.Pressed(Delete):
		d.deletePlaced(uid)
	}
}

func (d *Dispatcher) pickUp(uid uint64) {
	h := d.holds.PickUp(uid)
	d.highlights.Unhighlight(uid)
	if d.lookAt != nil {
		d.lookAt(h.Position())
	}
	d.log.Info("Picked up hold", zap.Uint64("hold", uid))
	d.mode.Set(mode.Holding)
}

func (d *Dispatcher) toggleMembership(uid uint64) {
	r := d.routes.Selected()
	if r == nil {
		return
	}
	d.routes.ToggleHold(r, uid)
	d.log.Debug("Toggled route membership", zap.Uint64("hold", uid), zap.Bool("member", r.Contains(uid)))
	if !d.routes.Has(r) {
		d.mode.Set(mode.Normal)
	}
}

func (d *Dispatcher) selectRoute(uid uint64) {
	r := d.routes.GetOrCreateRouteWithHold(uid)
	if d.mode.Is(mode.Route) && d.routes.Selected() == r {
		return
	}
	d.routes.Select(r)
	d.log.Info("Selected route", zap.String("name", r.Name), zap.Int("holds", r.Len()))
	if !d.mode.Set(mode.Route) {
		d.emphasizeRoutes()
	}
	d.highlights.Highlight(uid, highlight.Primary)
}

func (d *Dispatcher) deletePlaced(uid uint64) {
	selected := d.routes.Selected()
	d.holds.Unplace(uid, true)
	d.routes.RemoveHold(uid)
	d.highlights.Unhighlight(uid)
	d.log.Info("Deleted hold", zap.Uint64("hold", uid))
	if selected != nil && !d.routes.Has(selected) {
		d.mode.Set(mode.Normal)
	}
}

// discardHeld destroys the held hold together with any route membership or
// marker it carried from before it was picked up.
func (d *Dispatcher) discardHeld() {
	if d.holds.Held() == nil {
		return
	}
	h := d.holds.DeleteHeld()
	d.routes.RemoveHold(h.UID())
	d.highlights.Unhighlight(h.UID())
	d.log.Info("Discarded held hold", zap.Uint64("hold", h.UID()))
}

func (d *Dispatcher) hover(uid uint64) {
	if d.highlights.Level(uid) == highlight.Primary {
		return
	}
	d.clearPrimary()
	d.highlights.Highlight(uid, highlight.Primary)
}

func (d *Dispatcher) clearPrimary() {
	if len(d.highlights.Highlighted(highlight.Primary)) == 0 {
		return
	}
	d.highlights.ClearLevel(highlight.Primary)
	d.emphasizeRoutes()
}

// emphasizeRoutes marks the selected route's holds Secondary and every
// other route's holds Tertiary. Outside Route mode it does nothing.
func (d *Dispatcher) emphasizeRoutes() {
	if !d.mode.Is(mode.Route) {
		return
	}
	d.highlights.ClearLevel(highlight.Secondary)
	d.highlights.ClearLevel(highlight.Tertiary)
	selected := d.routes.Selected()
	for _, r := range d.routes.Routes() {
		level := highlight.Tertiary
		if r == selected {
			level = highlight.Secondary
		}
		for _, uid := range r.Holds() {
			d.highlights.Highlight(uid, level)
		}
	}
}

func (d *Dispatcher) modeChanged(c mode.Change) {
	d.log.Info("Mode changed", zap.Stringer("from", c.From), zap.Stringer("to", c.To))
	d.highlights.ClearAll()
	if c.To == mode.Normal {
		d.routes.Deselect()
	}
	d.emphasizeRoutes()
}

func (d *Dispatcher) routesChanged() {
	d.emphasizeRoutes()
}
