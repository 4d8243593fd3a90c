package catalog

import "slices"

// Selection is the palette: the blueprints the user picked from the
// library, with a cursor on the one the mode-toggle key instantiates.
type Selection struct {
	ids    []string
	cursor int
}

func (s *Selection) IDs() []string {
	return slices.Clone(s.ids)
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// Set replaces the selection, dropping duplicates and keeping order.
func (s *Selection) Set(ids []string) {
	s.ids = nil
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		s.ids = append(s.ids, id)
	}
	s.cursor = 0
}

// Toggle adds id at the end, or removes it if already selected.
func (s *Selection) Toggle(id string) {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		if s.cursor >= len(s.ids) {
			s.cursor = 0
		}
		return
	}
	s.ids = append(s.ids, id)
	s.cursor = len(s.ids) - 1
}

func (s *Selection) Contains(id string) bool {
	return slices.Contains(s.ids, id)
}

func (s *Selection) CurrentID() string {
	if len(s.ids) == 0 {
		return ""
	}
	return s.ids[s.cursor]
}

// Current resolves the cursor against lib. It returns nil when nothing is
// selected or the id is no longer in the library.
func (s *Selection) Current(lib *Library) *Blueprint {
	if lib == nil {
		return nil
	}
	bp, ok := lib.Blueprint(s.CurrentID())
	if !ok {
		return nil
	}
	return bp
}

func (s *Selection) Next() {
	if len(s.ids) > 0 {
		s.cursor = (s.cursor + 1) % len(s.ids)
	}
}

func (s *Selection) Prev() {
	if len(s.ids) > 0 {
		s.cursor = (s.cursor - 1 + len(s.ids)) % len(s.ids)
	}
}

// Prune drops ids that lib no longer knows, e.g. after a library reload.
func (s *Selection) Prune(lib *Library) {
	current := s.CurrentID()
	s.ids = slices.DeleteFunc(s.ids, func(id string) bool {
		_, ok := lib.Blueprint(id)
		return !ok
	})
	s.cursor = max(slices.Index(s.ids, current), 0)
}
