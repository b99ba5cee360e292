package view

import (
	"time"

	"github.com/google/uuid"
)

// View is one entry of a vendor's view log.
type View struct {
	ID        uuid.UUID     `db:"id"`
	VendorID  uuid.UUID     `db:"vendor_id"`
	UserID    uuid.NullUUID `db:"user_id"`
	ViewerKey string        `db:"viewer_key"`
	ViewedOn  time.Time     `db:"viewed_on"`
	CreatedAt time.Time     `db:"created_at"`
}

// Counts of a vendor's view log. Unique counts one view per viewer per calendar day.
type Counts struct {
	Total  int `db:"total" json:"total"`
	Unique int `db:"unique_views" json:"unique"`
}
