package admin

import "sort"

// Selection is the set of row ids an operator has ticked in a list view.
type Selection struct {
	ids map[string]struct{}
}

func NewSelection(ids ...string) *Selection {
	s := &Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s *Selection) Add(id string) {
	if s.ids == nil {
		s.ids = map[string]struct{}{}
	}
	s.ids[id] = struct{}{}
}

func (s *Selection) Remove(id string) { delete(s.ids, id) }

func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Toggle adds id if absent, removes it otherwise. Reports whether id is selected afterwards.
func (s *Selection) Toggle(id string) bool {
	if s.Has(id) {
		s.Remove(id)
		return false
	}
	s.Add(id)
	return true
}

// ToggleAll selects every id unless all of them are already selected, in which case it clears.
func (s *Selection) ToggleAll(ids []string) {
	all := len(ids) > 0
	for _, id := range ids {
		if !s.Has(id) {
			all = false
			break
		}
	}
	if all {
		s.Clear()
		return
	}
	for _, id := range ids {
		s.Add(id)
	}
}

func (s *Selection) Len() int { return len(s.ids) }

func (s *Selection) Clear() { s.ids = map[string]struct{}{} }

// IDs returns the selected ids in sorted order.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
