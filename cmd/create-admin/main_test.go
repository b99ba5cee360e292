package main

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/vendora-api/internal/domain/user"
	"github.com/vendora/vendora-api/internal/pkg/password"
	"github.com/vendora/vendora-api/internal/pkg/session"
)

type fakeUsers struct {
	byEmail map[string]*user.User
	roles   map[uuid.UUID]session.Role
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*user.User{}, roles: map[uuid.UUID]session.Role{}}
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	return f.byEmail[email], nil
}

func (f *fakeUsers) Create(_ context.Context, u *user.User) error {
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUsers) SetRole(_ context.Context, id uuid.UUID, role session.Role) error {
	f.roles[id] = role
	return nil
}

func TestEnsureAdmin_CreatesAccount(t *testing.T) {
	users := newFakeUsers()

	u, created, err := ensureAdmin(context.Background(), users, " Ops@Vendora.Events ", "correct-horse", "Ops")
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, "ops@vendora.events", u.Email)
	assert.Equal(t, session.RoleAdmin, u.Role)
	assert.True(t, password.Verify("correct-horse", u.PasswordHash))
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	users := newFakeUsers()
	existing := &user.User{ID: uuid.New(), Email: "owner@example.com", Role: session.RoleVendor}
	users.byEmail[existing.Email] = existing

	u, created, err := ensureAdmin(context.Background(), users, "owner@example.com", "", "")
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, session.RoleAdmin, u.Role)
	assert.Equal(t, session.RoleAdmin, users.roles[existing.ID])
}

func TestEnsureAdmin_NewAccountNeedsPassword(t *testing.T) {
	_, _, err := ensureAdmin(context.Background(), newFakeUsers(), "new@example.com", "", "")

	assert.ErrorIs(t, err, errPasswordRequired)
}
