package interaction

// Action is an abstract editor input. The GUI maps keys and mouse buttons
// onto actions; tests script them directly.
type Action int

const (
	Place Action = iota
	SelectRoute
	ToggleMode
	Delete
	ToggleStart
	ToggleEnd
	RouteModifier
	Slow
	RotateLeft
	RotateRight
)

var actionNames = [...]string{
	Place:         "Place",
	SelectRoute:   "SelectRoute",
	ToggleMode:    "ToggleMode",
	Delete:        "Delete",
	ToggleStart:   "ToggleStart",
	ToggleEnd:     "ToggleEnd",
	RouteModifier: "RouteModifier",
	Slow:          "Slow",
	RotateLeft:    "RotateLeft",
	RotateRight:   "RotateRight",
}

func (a Action) String() string {
	if a >= 0 && int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "Action(?)"
}

// Input reports this frame's input. Pressed is edge-triggered and is used
// for discrete actions; Down is level-triggered and is used for continuous
// ones (Slow, RouteModifier, rotation).
type Input interface {
	Pressed(a Action) bool
	Down(a Action) bool
}
