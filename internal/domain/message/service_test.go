package message

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	msgs []*Message
}

func (f *fakeRepo) Create(_ context.Context, m *Message) error {
	m.CreatedAt = time.Now()
	f.msgs = append(f.msgs, m)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Message, error) {
	for _, m := range f.msgs {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ListByRecipient(_ context.Context, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Message, error) {
	var out []*Message
	for _, m := range f.msgs {
		if m.RecipientID == recipientID && (!unreadOnly || !m.IsRead) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountUnread(_ context.Context, recipientID uuid.UUID) (int, error) {
	n := 0
	for _, m := range f.msgs {
		if m.RecipientID == recipientID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) mark(match func(*Message) bool) int64 {
	var n int64
	for _, m := range f.msgs {
		if !m.IsRead && match(m) {
			m.IsRead = true
			n++
		}
	}
	return n
}

func (f *fakeRepo) MarkRead(_ context.Context, id, recipientID uuid.UUID) (int64, error) {
	return f.mark(func(m *Message) bool { return m.ID == id && m.RecipientID == recipientID }), nil
}

func (f *fakeRepo) MarkAllRead(_ context.Context, recipientID uuid.UUID) (int64, error) {
	return f.mark(func(m *Message) bool { return m.RecipientID == recipientID }), nil
}

func (f *fakeRepo) MarkReadByMarker(_ context.Context, recipientID, requestID uuid.UUID, marker string) (int64, error) {
	return f.mark(func(m *Message) bool {
		return m.RecipientID == recipientID &&
			m.RequestID.Valid && m.RequestID.UUID == requestID &&
			strings.Contains(strings.ToLower(m.Body), strings.ToLower(marker))
	}), nil
}

type recordingPublisher struct {
	events []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ uuid.UUID, event string, _ interface{}) error {
	p.events = append(p.events, event)
	return p.err
}

const marker = "booking request has been accepted"

func TestPostSystem_StoresAndPushes(t *testing.T) {
	repo := &fakeRepo{}
	pub := &recordingPublisher{}
	svc := NewService(repo, pub)
	user, request := uuid.New(), uuid.New()

	require.NoError(t, svc.PostSystem(context.Background(), user, request, "Your booking request has been accepted by Bloom."))
	require.Len(t, repo.msgs, 1)
	assert.Equal(t, KindSystem, repo.msgs[0].Kind)
	assert.Equal(t, request, repo.msgs[0].RequestID.UUID)
	assert.Equal(t, []string{EventNew}, pub.events)

	assert.ErrorIs(t, svc.PostSystem(context.Background(), user, request, "   "), ErrEmptyBody)
}

func TestPostSystem_PushFailureIsLoggedOnly(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, &recordingPublisher{err: errors.New("redis down")})

	require.NoError(t, svc.PostSystem(context.Background(), uuid.New(), uuid.New(), "hello"))
	assert.Len(t, repo.msgs, 1)
}

func TestMarkReadByMarker_OnlyMatchingRequestAndPhrase(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil)
	ctx := context.Background()
	user, request, other := uuid.New(), uuid.New(), uuid.New()

	require.NoError(t, svc.PostSystem(ctx, user, request, "Your Booking Request Has Been Accepted by Bloom."))
	require.NoError(t, svc.PostSystem(ctx, user, request, "Your vendor sent a counter-offer."))
	require.NoError(t, svc.PostSystem(ctx, user, other, "Your booking request has been accepted by Lumen."))

	n, err := svc.MarkReadByMarker(ctx, user, request, marker)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	unread, err := svc.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	n, err = svc.MarkReadByMarker(ctx, user, request, marker)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMarkRead_RecipientOnly(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil)
	ctx := context.Background()
	user := uuid.New()

	require.NoError(t, svc.PostSystem(ctx, user, uuid.Nil, "welcome"))
	id := repo.msgs[0].ID
	assert.False(t, repo.msgs[0].RequestID.Valid)

	assert.ErrorIs(t, svc.MarkRead(ctx, uuid.New(), id), ErrMessageNotFound)
	require.NoError(t, svc.MarkRead(ctx, user, id))
	assert.True(t, repo.msgs[0].IsRead)
	require.NoError(t, svc.MarkRead(ctx, user, id))

	unread, err := svc.List(ctx, user, true, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
