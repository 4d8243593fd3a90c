// Package routes groups holds into routes and tracks start/end markers.
package routes

import (
	"slices"
	"strings"
)

// Route is an unordered set of hold handles plus free-text metadata.
type Route struct {
	Name   string
	Grade  string
	Zone   string
	Setter string

	holds      map[uint64]struct{}
	registered bool
}

func (r *Route) Contains(uid uint64) bool {
	_, ok := r.holds[uid]
	return ok
}

func (r *Route) Len() int {
	return len(r.holds)
}

// Holds returns the route's hold handles in ascending order.
func (r *Route) Holds() []uint64 {
	out := make([]uint64, 0, len(r.holds))
	for uid := range r.holds {
		out = append(out, uid)
	}
	slices.Sort(out)
	return out
}

// HasMetadata reports whether any metadata field is non-blank.
func (r *Route) HasMetadata() bool {
	for _, s := range []string{r.Name, r.Grade, r.Zone, r.Setter} {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

func (r *Route) add(uid uint64) {
	if r.holds == nil {
		r.holds = make(map[uint64]struct{})
	}
	r.holds[uid] = struct{}{}
}

func (r *Route) remove(uid uint64) {
	delete(r.holds, uid)
}
