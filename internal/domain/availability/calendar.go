package availability

import (
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// DayStatus is the resolved availability of one calendar day.
type DayStatus string

const (
	DayAvailable DayStatus = "available"
	DayBooked    DayStatus = "booked"
	DayBlocked   DayStatus = "blocked"
	DayOff       DayStatus = "dayoff"
)

// Statuses in legend order.
var Statuses = []DayStatus{DayAvailable, DayBooked, DayBlocked, DayOff}

// Selectable reports whether a day with status s may join a date selection.
// Booked days stay requestable; the vendor may take more than one event.
func (s DayStatus) Selectable() bool {
	return s == DayAvailable || s == DayBooked
}

// Inputs are the three sources merged into a day status.
type Inputs struct {
	DaysOff  DaysOff
	Blocked  map[string]bool
	Bookings map[string]int
}

// Resolve applies precedence booked > blocked > dayoff > available.
// Absence of data means available.
func (in Inputs) Resolve(day time.Time) DayStatus {
	iso := day.Format(DateLayout)
	switch {
	case in.Bookings[iso] > 0:
		return DayBooked
	case in.Blocked[iso]:
		return DayBlocked
	case in.DaysOff.Off(WeekdayName(day)):
		return DayOff
	default:
		return DayAvailable
	}
}

// Day is one cell of a month calendar.
type Day struct {
	Date       string    `json:"date"`
	Day        int       `json:"day"`
	Weekday    string    `json:"weekday"`
	Status     DayStatus `json:"status"`
	Bookings   int       `json:"bookings,omitempty"`
	Selectable bool      `json:"selectable"`
}

// Month is a rendered month. Leading and trailing blanks pad the grid to
// whole Sunday-first weeks and are never selectable.
type Month struct {
	Month          string            `json:"month"`
	LeadingBlanks  int               `json:"leading_blanks"`
	TrailingBlanks int               `json:"trailing_blanks"`
	Days           []Day             `json:"days"`
	Counts         map[DayStatus]int `json:"counts"`
}

// BuildMonth computes a status for every day of the month containing month.
// A nil settings value is treated as every weekday worked.
func BuildMonth(month time.Time, settings *Settings, blocked map[string]bool, bookings map[string]int) Month {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	in := Inputs{Blocked: blocked, Bookings: bookings}
	if settings != nil {
		in.DaysOff = settings.DaysOff
	}

	m := Month{
		Month:         first.Format(MonthLayout),
		LeadingBlanks: int(first.Weekday()),
		Counts:        make(map[DayStatus]int, len(Statuses)),
	}
	for _, s := range Statuses {
		m.Counts[s] = 0
	}

	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		status := in.Resolve(d)
		iso := d.Format(DateLayout)
		m.Days = append(m.Days, Day{
			Date:       iso,
			Day:        d.Day(),
			Weekday:    WeekdayName(d),
			Status:     status,
			Bookings:   bookings[iso],
			Selectable: status.Selectable(),
		})
		m.Counts[status]++
	}

	if rem := (m.LeadingBlanks + len(m.Days)) % 7; rem != 0 {
		m.TrailingBlanks = 7 - rem
	}
	return m
}

// ParseMonth parses YYYY-MM.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return t, nil
}

// MonthBounds returns the first and last ISO dates of month.
func MonthBounds(month time.Time) (string, string) {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(DateLayout), last.Format(DateLayout)
}
