package availability

import "sort"

// Selection is a set of ISO dates chosen for a booking request.
type Selection struct {
	dates map[string]struct{}
}

func NewSelection(dates ...string) *Selection {
	s := &Selection{dates: make(map[string]struct{}, len(dates))}
	for _, d := range dates {
		s.dates[d] = struct{}{}
	}
	return s
}

// Toggle flips membership of day. Days that are not selectable are inert:
// the selection is left unchanged and Toggle returns false.
func (s *Selection) Toggle(day Day) bool {
	if !day.Status.Selectable() {
		return false
	}
	if _, ok := s.dates[day.Date]; ok {
		delete(s.dates, day.Date)
	} else {
		s.dates[day.Date] = struct{}{}
	}
	return true
}

func (s *Selection) Contains(date string) bool {
	_, ok := s.dates[date]
	return ok
}

func (s *Selection) Len() int { return len(s.dates) }

// Dates lists the selection in ascending order.
func (s *Selection) Dates() []string {
	out := make([]string, 0, len(s.dates))
	for d := range s.dates {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func (s *Selection) Clear() {
	s.dates = make(map[string]struct{})
}
