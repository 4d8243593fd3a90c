package routes

import (
	"slices"

	"cled/internal/engine"
)

type MarkerKind int

const (
	Starting MarkerKind = iota
	Ending
)

func (k MarkerKind) String() string {
	if k == Starting {
		return "start"
	}
	return "end"
}

// MarkerChange is published when a hold gains or loses a marker.
type MarkerChange struct {
	Hold uint64
	Kind MarkerKind
	On   bool
}

// Book holds every route, the hold -> route index, the global start/end
// marker sets and the selected route.
//
// A hold belongs to at most one route, and a route with no holds is never
// kept: it is dropped as soon as its last hold leaves.
type Book struct {
	routes   []*Route
	owner    map[uint64]*Route
	starting map[uint64]struct{}
	ending   map[uint64]struct{}
	selected *Route

	changed engine.Event
	marker  engine.EventWithArg[MarkerChange]
}

func NewBook() *Book {
	return &Book{
		owner:    make(map[uint64]*Route),
		starting: make(map[uint64]struct{}),
		ending:   make(map[uint64]struct{}),
	}
}

// NewRoute returns an empty route. It joins the book with its first hold.
func (b *Book) NewRoute() *Route {
	return &Route{holds: make(map[uint64]struct{})}
}

// RouteWithHold returns the route owning uid, or nil.
func (b *Book) RouteWithHold(uid uint64) *Route {
	return b.owner[uid]
}

// GetOrCreateRouteWithHold scans for the route owning uid and creates a
// single-hold route when there is none. Route counts are human-curated and
// small, so the scan is linear.
func (b *Book) GetOrCreateRouteWithHold(uid uint64) *Route {
	for _, r := range b.routes {
		if r.Contains(uid) {
			return r
		}
	}
	r := b.NewRoute()
	b.ToggleHold(r, uid)
	return r
}

// ToggleHold removes uid from r when r already has it. Otherwise uid moves
// into r from whatever route owned it before. Either way a route left empty
// is dropped.
func (b *Book) ToggleHold(r *Route, uid uint64) {
	if r.Contains(uid) {
		r.remove(uid)
		delete(b.owner, uid)
		b.pruneIfEmpty(r)
		b.changed.Invoke()
		return
	}

	if prev := b.owner[uid]; prev != nil {
		prev.remove(uid)
		b.pruneIfEmpty(prev)
	}
	r.add(uid)
	b.owner[uid] = r
	if !r.registered {
		r.registered = true
		b.routes = append(b.routes, r)
	}
	b.changed.Invoke()
}

// RemoveHold purges uid from both marker sets and from its route.
func (b *Book) RemoveHold(uid uint64) {
	b.setMarker(b.starting, Starting, uid, false)
	b.setMarker(b.ending, Ending, uid, false)
	if r := b.owner[uid]; r != nil {
		r.remove(uid)
		delete(b.owner, uid)
		b.pruneIfEmpty(r)
	}
	b.changed.Invoke()
}

// ToggleStarting flips uid's start marker. Marking it clears any end marker.
func (b *Book) ToggleStarting(uid uint64) {
	b.toggleMarker(b.starting, Starting, b.ending, Ending, uid)
}

// ToggleEnding flips uid's end marker. Marking it clears any start marker.
func (b *Book) ToggleEnding(uid uint64) {
	b.toggleMarker(b.ending, Ending, b.starting, Starting, uid)
}

func (b *Book) toggleMarker(set map[uint64]struct{}, kind MarkerKind, other map[uint64]struct{}, otherKind MarkerKind, uid uint64) {
	if _, on := set[uid]; on {
		b.setMarker(set, kind, uid, false)
	} else {
		b.setMarker(other, otherKind, uid, false)
		b.setMarker(set, kind, uid, true)
	}
	b.changed.Invoke()
}

func (b *Book) setMarker(set map[uint64]struct{}, kind MarkerKind, uid uint64, on bool) {
	_, was := set[uid]
	if was == on {
		return
	}
	if on {
		set[uid] = struct{}{}
	} else {
		delete(set, uid)
	}
	b.marker.Invoke(MarkerChange{Hold: uid, Kind: kind, On: on})
}

func (b *Book) IsStarting(uid uint64) bool {
	_, ok := b.starting[uid]
	return ok
}

func (b *Book) IsEnding(uid uint64) bool {
	_, ok := b.ending[uid]
	return ok
}

func (b *Book) StartingHolds() []uint64 {
	return sortedKeys(b.starting)
}

func (b *Book) EndingHolds() []uint64 {
	return sortedKeys(b.ending)
}

// Has reports whether r is a live route of the book.
func (b *Book) Has(r *Route) bool {
	return r != nil && r.registered
}

// Routes returns every live route in creation order.
func (b *Book) Routes() []*Route {
	return slices.Clone(b.routes)
}

// IsUsable reports whether r is worth persisting: at least two holds, a
// marked hold, or some metadata. A lone anonymous hold is a throwaway.
func (b *Book) IsUsable(r *Route) bool {
	if r.Len() == 0 {
		return false
	}
	if r.Len() >= 2 || r.HasMetadata() {
		return true
	}
	for uid := range r.holds {
		if b.IsStarting(uid) || b.IsEnding(uid) {
			return true
		}
	}
	return false
}

func (b *Book) UsableRoutes() []*Route {
	var out []*Route
	for _, r := range b.routes {
		if b.IsUsable(r) {
			out = append(out, r)
		}
	}
	return out
}

// Select makes r the selected route. r must be live.
func (b *Book) Select(r *Route) {
	if r != nil && !r.registered {
		return
	}
	b.selected = r
}

func (b *Book) Selected() *Route {
	return b.selected
}

func (b *Book) Deselect() {
	b.selected = nil
}

// Clear drops every route and marker without publishing per-hold marker
// changes; observers of OnChange are told once.
func (b *Book) Clear() {
	for _, r := range b.routes {
		r.registered = false
	}
	b.routes = nil
	clear(b.owner)
	clear(b.starting)
	clear(b.ending)
	b.selected = nil
	b.changed.Invoke()
}

// OnChange fires after any membership, marker or route-set change.
func (b *Book) OnChange(fn func()) engine.Subscription {
	return b.changed.AddListener(fn)
}

// OnMarker fires for every hold that gains or loses a marker.
func (b *Book) OnMarker(fn func(MarkerChange)) engine.Subscription {
	return b.marker.AddListener(fn)
}

func (b *Book) pruneIfEmpty(r *Route) {
	if r.Len() > 0 || !r.registered {
		return
	}
	r.registered = false
	if i := slices.Index(b.routes, r); i >= 0 {
		b.routes = slices.Delete(b.routes, i, i+1)
	}
	if b.selected == r {
		b.selected = nil
	}
}

func sortedKeys(m map[uint64]struct{}) []uint64 {
	out := make([]uint64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
