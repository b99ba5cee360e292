package message

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Kind of inbox message.
type Kind string

const (
	KindSystem Kind = "system"
	KindUser   Kind = "user"
)

// Message is an inbox entry, optionally tied to a booking request.
type Message struct {
	ID          uuid.UUID     `db:"id"`
	RecipientID uuid.UUID     `db:"recipient_id"`
	SenderID    uuid.NullUUID `db:"sender_id"`
	RequestID   uuid.NullUUID `db:"request_id"`
	Kind        Kind          `db:"kind"`
	Body        string        `db:"body"`
	IsRead      bool          `db:"is_read"`
	ReadAt      sql.NullTime  `db:"read_at"`
	CreatedAt   time.Time     `db:"created_at"`
}
