package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/vendora-api/internal/domain/user"
	"github.com/vendora/vendora-api/internal/pkg/jwt"
	"github.com/vendora/vendora-api/internal/pkg/session"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*user.User
	deleted []uuid.UUID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[uuid.UUID]*user.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return user.ErrEmailAlreadyExists
		}
	}
	u.CreatedAt = time.Now()
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id], nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) SetRole(_ context.Context, id uuid.UUID, role session.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		u.Role = role
	}
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(context.Context, uuid.UUID) error { return nil }

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeUserRepo) CountByRole(context.Context) (map[session.Role]int, error) {
	return nil, nil
}

type memRefreshStore struct {
	mu     sync.Mutex
	tokens map[string]uuid.UUID
}

func newMemRefreshStore() *memRefreshStore {
	return &memRefreshStore{tokens: map[string]uuid.UUID{}}
}

func (m *memRefreshStore) Save(_ context.Context, hash string, userID uuid.UUID, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[hash] = userID
	return nil
}

func (m *memRefreshStore) Lookup(_ context.Context, hash string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.tokens[hash]
	if !ok {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	return id, nil
}

func (m *memRefreshStore) Revoke(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, hash)
	return nil
}

type fakeRedeemer struct {
	vendorID uuid.UUID
	err      error
	calls    int
}

func (f *fakeRedeemer) Redeem(context.Context, string, uuid.UUID) (uuid.UUID, error) {
	f.calls++
	return f.vendorID, f.err
}

func newTestService(redeemer InvitationRedeemer) (*Service, *fakeUserRepo, *memRefreshStore) {
	users := newFakeUserRepo()
	store := newMemRefreshStore()
	svc := NewService(users, jwt.NewService("test-secret", time.Minute, time.Hour), store, redeemer, nil, "http://localhost:3000")
	return svc, users, store
}

func TestRegisterCreatesViewer(t *testing.T) {
	svc, users, _ := newTestService(nil)

	res, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "  Guest@Example.com ",
		Password: "correct-horse",
		FullName: "Guest",
	})
	require.NoError(t, err)

	assert.Equal(t, "guest@example.com", res.User.Email)
	assert.Equal(t, string(session.RoleViewer), res.User.Role)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.NotEmpty(t, res.Tokens.RefreshToken)
	assert.Len(t, users.byID, 1)

	_, err = svc.Register(context.Background(), &RegisterRequest{
		Email: "guest@example.com", Password: "correct-horse", FullName: "Again",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestRegisterWithInvitationBecomesVendor(t *testing.T) {
	redeemer := &fakeRedeemer{vendorID: uuid.New()}
	svc, _, _ := newTestService(redeemer)

	res, err := svc.Register(context.Background(), &RegisterRequest{
		Email: "florist@example.com", Password: "correct-horse", FullName: "Flora", InvitationToken: "abc",
	})
	require.NoError(t, err)
	assert.Equal(t, string(session.RoleVendor), res.User.Role)
	assert.Equal(t, 1, redeemer.calls)
}

func TestRegisterInvitationFailureRemovesUser(t *testing.T) {
	redeemer := &fakeRedeemer{err: ErrInvalidInvitation}
	svc, users, _ := newTestService(redeemer)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Email: "late@example.com", Password: "correct-horse", FullName: "Late", InvitationToken: "abc",
	})
	assert.ErrorIs(t, err, ErrInvalidInvitation)
	assert.Empty(t, users.byID)
	assert.Len(t, users.deleted, 1)
}

func TestLoginRefreshLogout(t *testing.T) {
	svc, _, store := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{Email: "a@example.com", Password: "correct-horse", FullName: "A"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginRequest{Email: "a@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := svc.Login(ctx, &LoginRequest{Email: "A@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, login.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.Tokens.RefreshToken, refreshed.Tokens.RefreshToken)

	_, err = svc.Refresh(ctx, login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken, "rotated token must not be reusable")

	require.NoError(t, svc.Logout(ctx, refreshed.Tokens.RefreshToken))
	_, err = svc.Refresh(ctx, refreshed.Tokens.RefreshToken)
	assert.True(t, errors.Is(err, ErrInvalidRefreshToken))
	assert.Empty(t, store.tokens)
}

func TestLoginInactiveUser(t *testing.T) {
	svc, users, _ := newTestService(nil)
	ctx := context.Background()

	res, err := svc.Register(ctx, &RegisterRequest{Email: "b@example.com", Password: "correct-horse", FullName: "B"})
	require.NoError(t, err)
	users.byID[res.User.ID].IsActive = false

	_, err = svc.Login(ctx, &LoginRequest{Email: "b@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrUserInactive)
}
