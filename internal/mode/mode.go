// Package mode holds the editor's interaction mode and notifies observers
// when it changes.
package mode

import "cled/internal/engine"

type Mode int

const (
	// Normal is the initial mode: hovering and picking placed holds.
	Normal Mode = iota
	// Holding means a hold follows the view center until placed or deleted.
	Holding
	// Route means a route is selected and its holds are emphasized.
	Route
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "Normal"
	case Holding:
		return "Holding"
	case Route:
		return "Route"
	default:
		return "Mode(?)"
	}
}

type Change struct {
	From Mode
	To   Mode
}

type Machine struct {
	current Mode
	changed engine.EventWithArg[Change]
}

func NewMachine() *Machine {
	return &Machine{current: Normal}
}

func (m *Machine) Current() Mode {
	return m.current
}

func (m *Machine) Is(mode Mode) bool {
	return m.current == mode
}

// Set switches to the given mode. Observers run after the switch and only
// when the mode actually changed.
func (m *Machine) Set(to Mode) bool {
	if to == m.current {
		return false
	}
	change := Change{From: m.current, To: to}
	m.current = to
	m.changed.Invoke(change)
	return true
}

func (m *Machine) OnChange(fn func(Change)) engine.Subscription {
	return m.changed.AddListener(fn)
}
