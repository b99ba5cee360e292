package rating

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Rating is a viewer's score for a vendor they booked.
type Rating struct {
	ID        uuid.UUID      `db:"id"`
	VendorID  uuid.UUID      `db:"vendor_id"`
	UserID    uuid.UUID      `db:"user_id"`
	Score     int            `db:"rating"`
	Comment   sql.NullString `db:"comment"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`

	ReviewerName string `db:"reviewer_name"`
}

// Summary aggregates a vendor's ratings.
type Summary struct {
	VendorID     uuid.UUID   `json:"vendor_id"`
	Average      float64     `json:"average"`
	Count        int         `json:"count"`
	Distribution map[int]int `json:"distribution"`
}

// Summarize computes a summary from individual scores. Every score
// bucket from 1 to 5 is present.
func Summarize(vendorID uuid.UUID, scores map[int]int) *Summary {
	s := &Summary{VendorID: vendorID, Distribution: make(map[int]int, 5)}
	total := 0
	for i := 1; i <= 5; i++ {
		n := scores[i]
		s.Distribution[i] = n
		s.Count += n
		total += i * n
	}
	if s.Count > 0 {
		s.Average = float64(total) / float64(s.Count)
	}
	return s
}
