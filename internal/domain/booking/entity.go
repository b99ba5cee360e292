package booking

import (
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the ISO calendar date format used for every event date.
const DateLayout = "2006-01-02"

// MarkerPhrase identifies the system message posted when a vendor accepts.
// Settling offline marks unread messages containing it as read.
const MarkerPhrase = "booking request has been accepted"

// Request is a negotiation between one viewer and one vendor.
type Request struct {
	ID                  uuid.UUID       `db:"id"`
	VendorID            uuid.UUID       `db:"vendor_id"`
	UserID              uuid.UUID       `db:"user_id"`
	PackageID           uuid.NullUUID   `db:"package_id"`
	Notes               sql.NullString  `db:"notes"`
	RequestedChanges    sql.NullString  `db:"requested_changes"`
	Phone               sql.NullString  `db:"phone"`
	Status              Status          `db:"status"`
	CounterOfferDetails sql.NullString  `db:"counter_offer_details"`
	CounterOfferPrice   sql.NullFloat64 `db:"counter_offer_price"`
	Version             int             `db:"version"`
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`

	// Joined data
	Dates      []string        `db:"-"`
	Package    *PackageSummary `db:"-"`
	VendorName string          `db:"-"`
}

// PackageSummary is the referenced package as shown next to a request.
type PackageSummary struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	PricingType    string    `json:"pricing_type"`
	Price          *float64  `json:"price,omitempty"`
	PricePerPerson *float64  `json:"price_per_person,omitempty"`
}

// FirstDate is the earliest requested date, or "" when the request has none.
// ISO dates order lexically.
func (r *Request) FirstDate() string {
	first := ""
	for _, d := range r.Dates {
		if first == "" || d < first {
			first = d
		}
	}
	return first
}

// SortedDates returns the dates in ascending order without mutating r.
func (r *Request) SortedDates() []string {
	out := append([]string(nil), r.Dates...)
	sort.Strings(out)
	return out
}

// IsRequester reports whether userID is the requesting viewer.
func (r *Request) IsRequester(userID uuid.UUID) bool {
	return r.UserID == userID
}

// SortByFirstDate orders requests by first date ascending. Requests without
// dates go last; ties break on creation time then id so repeated calls agree.
func SortByFirstDate(reqs []*Request) {
	sort.SliceStable(reqs, func(i, j int) bool {
		a, b := reqs[i].FirstDate(), reqs[j].FirstDate()
		switch {
		case a == "" && b != "":
			return false
		case a != "" && b == "":
			return true
		case a != b:
			return a < b
		}
		if !reqs[i].CreatedAt.Equal(reqs[j].CreatedAt) {
			return reqs[i].CreatedAt.Before(reqs[j].CreatedAt)
		}
		return reqs[i].ID.String() < reqs[j].ID.String()
	})
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func ptrFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
