package message

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*Message, error)
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Message, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkReadByMarker(ctx context.Context, recipientID, requestID uuid.UUID, marker string) (int64, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, m *Message) error {
	return r.db.QueryRowxContext(ctx, `
		INSERT INTO messages (id, recipient_id, sender_id, request_id, kind, body)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING is_read, created_at`,
		m.ID, m.RecipientID, m.SenderID, m.RequestID, m.Kind, m.Body,
	).Scan(&m.IsRead, &m.CreatedAt)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Message, error) {
	var m Message
	err := r.db.GetContext(ctx, &m, `SELECT * FROM messages WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Message, error) {
	var out []*Message
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM messages
		WHERE recipient_id = $1 AND (NOT $2 OR is_read = FALSE)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`, recipientID, unreadOnly, limit, offset)
	return out, err
}

func (r *repository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND is_read = FALSE`, recipientID)
	return n, err
}

func rowsAffected(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) MarkRead(ctx context.Context, id, recipientID uuid.UUID) (int64, error) {
	return rowsAffected(r.db.ExecContext(ctx, `
		UPDATE messages SET is_read = TRUE, read_at = NOW()
		WHERE id = $1 AND recipient_id = $2 AND is_read = FALSE`, id, recipientID))
}

func (r *repository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return rowsAffected(r.db.ExecContext(ctx, `
		UPDATE messages SET is_read = TRUE, read_at = NOW()
		WHERE recipient_id = $1 AND is_read = FALSE`, recipientID))
}

// MarkReadByMarker marks unread messages of a request whose body contains marker.
func (r *repository) MarkReadByMarker(ctx context.Context, recipientID, requestID uuid.UUID, marker string) (int64, error) {
	return rowsAffected(r.db.ExecContext(ctx, `
		UPDATE messages SET is_read = TRUE, read_at = NOW()
		WHERE recipient_id = $1 AND request_id = $2 AND is_read = FALSE
		  AND strpos(lower(body), lower($3)) > 0`, recipientID, requestID, marker))
}
