package message

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EventNew is pushed to a recipient when a message lands in their inbox.
const EventNew = "message.new"

// Publisher pushes realtime events.
type Publisher interface {
	Publish(ctx context.Context, userID uuid.UUID, event string, payload interface{}) error
}

type Service struct {
	repo      Repository
	publisher Publisher
}

// NewService creates a message service. publisher may be nil.
func NewService(repo Repository, publisher Publisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// PostSystem writes a system message about a booking request into the recipient's inbox.
func (s *Service) PostSystem(ctx context.Context, recipientID, requestID uuid.UUID, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return ErrEmptyBody
	}

	m := &Message{
		ID:          uuid.New(),
		RecipientID: recipientID,
		RequestID:   uuid.NullUUID{UUID: requestID, Valid: requestID != uuid.Nil},
		Kind:        KindSystem,
		Body:        body,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, recipientID, EventNew, ResponseFrom(m)); err != nil {
			log.Warn().Err(err).Str("user_id", recipientID.String()).Msg("message push failed")
		}
	}
	return nil
}

// MarkReadByMarker marks the recipient's unread messages for requestID containing marker.
func (s *Service) MarkReadByMarker(ctx context.Context, recipientID, requestID uuid.UUID, marker string) (int64, error) {
	return s.repo.MarkReadByMarker(ctx, recipientID, requestID, marker)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByRecipient(ctx, userID, unreadOnly, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead marks one message read. Marking an already read message is a no-op.
func (s *Service) MarkRead(ctx context.Context, userID, messageID uuid.UUID) error {
	m, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if m == nil || m.RecipientID != userID {
		return ErrMessageNotFound
	}
	_, err = s.repo.MarkRead(ctx, messageID, userID)
	return err
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
