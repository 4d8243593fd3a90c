package highlight

// Level orders emphasis. The zero value means not highlighted.
type Level int

const (
	None Level = iota
	Tertiary
	Secondary
	Primary
)

func (l Level) String() string {
	switch l {
	case None:
		return "None"
	case Tertiary:
		return "Tertiary"
	case Secondary:
		return "Secondary"
	case Primary:
		return "Primary"
	default:
		return "Level(?)"
	}
}

// State tracks which holds are visually emphasized. It is feedback only and
// is never consulted for editing decisions.
type State struct {
	levels map[uint64]Level
}

func New() *State {
	return &State{levels: make(map[uint64]Level)}
}

// Highlight sets uid to level when level outranks its current one.
// Returns whether anything changed.
func (s *State) Highlight(uid uint64, level Level) bool {
	if level == None {
		return s.Unhighlight(uid)
	}
	if s.levels[uid] >= level {
		return false
	}
	s.levels[uid] = level
	return true
}

func (s *State) Unhighlight(uid uint64) bool {
	if _, ok := s.levels[uid]; !ok {
		return false
	}
	delete(s.levels, uid)
	return true
}

func (s *State) Level(uid uint64) Level {
	return s.levels[uid]
}

// Highlighted returns every uid currently at level.
func (s *State) Highlighted(level Level) []uint64 {
	var out []uint64
	for uid, l := range s.levels {
		if l == level {
			out = append(out, uid)
		}
	}
	return out
}

func (s *State) ClearLevel(level Level) {
	for uid, l := range s.levels {
		if l == level {
			delete(s.levels, uid)
		}
	}
}

func (s *State) ClearAll() {
	clear(s.levels)
}

func (s *State) Len() int {
	return len(s.levels)
}
