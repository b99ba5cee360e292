package availability

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func month(t *testing.T, s string) time.Time {
	t.Helper()
	m, err := ParseMonth(s)
	require.NoError(t, err)
	return m
}

func dayOf(t *testing.T, m Month, date string) Day {
	t.Helper()
	for _, d := range m.Days {
		if d.Date == date {
			return d
		}
	}
	t.Fatalf("day %s not in month %s", date, m.Month)
	return Day{}
}

func TestBuildMonth_Precedence(t *testing.T) {
	settings := &Settings{VendorID: uuid.New(), DaysOff: DaysOff{"saturday": true}}
	blocked := map[string]bool{"2025-06-10": true, "2025-06-14": true}
	bookings := map[string]int{"2025-06-14": 1, "2025-06-21": 2}

	m := BuildMonth(month(t, "2025-06"), settings, blocked, bookings)

	require.Len(t, m.Days, 30)
	assert.Equal(t, DayBooked, dayOf(t, m, "2025-06-14").Status, "booked beats blocked and day off")
	assert.Equal(t, DayBooked, dayOf(t, m, "2025-06-21").Status, "booked beats day off")
	assert.Equal(t, 2, dayOf(t, m, "2025-06-21").Bookings)
	assert.Equal(t, DayBlocked, dayOf(t, m, "2025-06-10").Status)
	assert.Equal(t, DayOff, dayOf(t, m, "2025-06-07").Status)
	assert.Equal(t, DayOff, dayOf(t, m, "2025-06-28").Status)
	assert.Equal(t, DayAvailable, dayOf(t, m, "2025-06-09").Status)

	assert.Equal(t, 2, m.Counts[DayBooked])
	assert.Equal(t, 1, m.Counts[DayBlocked])
	assert.Equal(t, 2, m.Counts[DayOff])
	assert.Equal(t, 25, m.Counts[DayAvailable])
}

func TestBuildMonth_EmptySettingsAllAvailable(t *testing.T) {
	for _, settings := range []*Settings{nil, DefaultSettings(uuid.New()), {DaysOff: DaysOff{}}} {
		m := BuildMonth(month(t, "2026-02"), settings, nil, nil)

		require.Len(t, m.Days, 28)
		for _, d := range m.Days {
			assert.Equal(t, DayAvailable, d.Status, d.Date)
			assert.True(t, d.Selectable)
		}
		assert.Equal(t, 28, m.Counts[DayAvailable])
		assert.Equal(t, 0, m.Counts[DayBooked])
		assert.Equal(t, 0, m.Counts[DayBlocked])
		assert.Equal(t, 0, m.Counts[DayOff])
	}
}

func TestBuildMonth_Blanks(t *testing.T) {
	cases := []struct {
		month    string
		leading  int
		trailing int
	}{
		{"2025-03", 6, 5},
		{"2026-02", 0, 0},
		{"2025-06", 0, 5},
	}
	for _, tc := range cases {
		t.Run(tc.month, func(t *testing.T) {
			m := BuildMonth(month(t, tc.month), nil, nil, nil)
			assert.Equal(t, tc.leading, m.LeadingBlanks)
			assert.Equal(t, tc.trailing, m.TrailingBlanks)
			assert.Zero(t, (m.LeadingBlanks+len(m.Days)+m.TrailingBlanks)%7)
		})
	}
}

func TestBuildMonth_Selectable(t *testing.T) {
	settings := &Settings{DaysOff: DaysOff{"sunday": true}}
	m := BuildMonth(month(t, "2025-06"), settings,
		map[string]bool{"2025-06-03": true},
		map[string]int{"2025-06-04": 1})

	for _, d := range m.Days {
		want := d.Status == DayAvailable || d.Status == DayBooked
		assert.Equal(t, want, d.Selectable, d.Date)
	}
}

func TestInputs_ResolveAbsentDataIsAvailable(t *testing.T) {
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, DayAvailable, Inputs{}.Resolve(day))
}

func TestParseMonth(t *testing.T) {
	_, err := ParseMonth("2025-13")
	assert.ErrorIs(t, err, ErrInvalidMonth)

	from, to := MonthBounds(month(t, "2024-02"))
	assert.Equal(t, "2024-02-01", from)
	assert.Equal(t, "2024-02-29", to)
}

func TestDaysOff_Scan(t *testing.T) {
	var d DaysOff
	require.NoError(t, d.Scan([]byte(`{"monday":true,"tuesday":false}`)))
	assert.True(t, d.Off("Monday"))
	assert.False(t, d.Off("tuesday"))

	require.NoError(t, d.Scan(nil))
	assert.Empty(t, d)
}
