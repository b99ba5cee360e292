package availability

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Weekdays in Sunday-first order, as stored in settings.
var Weekdays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// WeekdayName returns the lowercase settings key for t.
func WeekdayName(t time.Time) string {
	return Weekdays[int(t.Weekday())]
}

// DaysOff maps a weekday name to whether the vendor is off that day.
// A missing key means the vendor works.
type DaysOff map[string]bool

func (d DaysOff) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

func (d *DaysOff) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = DaysOff{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("days_off: unsupported type")
	}
	out := DaysOff{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*d = out
	return nil
}

// Off reports whether weekday is configured as a day off.
func (d DaysOff) Off(weekday string) bool {
	return d[strings.ToLower(weekday)]
}

// Settings is a vendor's weekly recurring availability.
type Settings struct {
	VendorID    uuid.UUID     `db:"vendor_id"`
	DaysOff     DaysOff       `db:"days_off"`
	SlotsPerDay sql.NullInt64 `db:"slots_per_day"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

// DefaultSettings is what a vendor who never configured availability gets:
// every weekday worked.
func DefaultSettings(vendorID uuid.UUID) *Settings {
	return &Settings{VendorID: vendorID, DaysOff: DaysOff{}}
}

// BlockedDate is an explicit date the vendor marked unavailable.
type BlockedDate struct {
	ID        uuid.UUID      `db:"id"`
	VendorID  uuid.UUID      `db:"vendor_id"`
	Date      time.Time      `db:"blocked_date"`
	Reason    sql.NullString `db:"reason"`
	CreatedAt time.Time      `db:"created_at"`
}

func (b *BlockedDate) ISODate() string { return b.Date.Format(DateLayout) }
