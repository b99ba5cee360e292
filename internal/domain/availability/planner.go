package availability

// Planner pairs the displayed month with the caller's date selection.
// The selection survives switching months.
type Planner struct {
	month Month
	index map[string]Day
	sel   *Selection
}

func NewPlanner(month Month, selected ...string) *Planner {
	p := &Planner{sel: NewSelection(selected...)}
	p.Show(month)
	return p
}

// Show switches the displayed month.
func (p *Planner) Show(month Month) {
	p.month = month
	p.index = make(map[string]Day, len(month.Days))
	for _, d := range month.Days {
		p.index[d.Date] = d
	}
}

func (p *Planner) Month() Month { return p.month }

// Toggle flips date if it is a selectable day of the displayed month.
// Dates outside the month, blanks and inert days are ignored.
func (p *Planner) Toggle(date string) bool {
	day, ok := p.index[date]
	if !ok {
		return false
	}
	return p.sel.Toggle(day)
}

// Selected returns the chosen dates in ascending order.
func (p *Planner) Selected() []string {
	return p.sel.Dates()
}
