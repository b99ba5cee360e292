package view

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/vendora-api/internal/domain/vendor"
	"github.com/vendora/vendora-api/internal/pkg/logger"
	"github.com/vendora/vendora-api/internal/pkg/session"
)

type fakeRepo struct {
	rows []*View
}

func (f *fakeRepo) Insert(_ context.Context, v *View) error {
	v.CreatedAt = time.Now()
	f.rows = append(f.rows, v)
	return nil
}

func (f *fakeRepo) Count(_ context.Context, vendorID uuid.UUID, from, to time.Time) (Counts, error) {
	var c Counts
	seen := map[string]bool{}
	for _, v := range f.rows {
		if v.VendorID != vendorID {
			continue
		}
		if !from.IsZero() && v.ViewedOn.Before(from) {
			continue
		}
		if !to.IsZero() && v.ViewedOn.After(to) {
			continue
		}
		c.Total++
		k := v.ViewerKey + v.ViewedOn.Format("2006-01-02")
		if !seen[k] {
			seen[k] = true
			c.Unique++
		}
	}
	return c, nil
}

type fakeVendors map[uuid.UUID]*vendor.Vendor

func (f fakeVendors) GetByID(_ context.Context, id uuid.UUID) (*vendor.Vendor, error) {
	return f[id], nil
}

// windowGuard lets a viewer through once until reset.
type windowGuard struct {
	claimed map[string]bool
	err     error
}

func (g *windowGuard) Allow(_ context.Context, vendorID uuid.UUID, key string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	k := vendorID.String() + key
	if g.claimed[k] {
		return false, nil
	}
	g.claimed[k] = true
	return true, nil
}

func newService(t *testing.T) (*Service, *fakeRepo, *windowGuard, uuid.UUID) {
	t.Helper()
	vendorID := uuid.New()
	repo := &fakeRepo{}
	guard := &windowGuard{claimed: map[string]bool{}}
	svc := NewService(repo, fakeVendors{vendorID: {ID: vendorID, IsActive: true}}, guard)
	svc.now = func() time.Time { return time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC) }
	return svc, repo, guard, vendorID
}

func TestViewerKey(t *testing.T) {
	user := uuid.New()
	assert.Equal(t, "u:"+user.String(), ViewerKey(session.Session{UserID: user}, "10.0.0.1"))

	anon := ViewerKey(session.Session{}, "10.0.0.1")
	assert.Equal(t, anon, ViewerKey(session.Session{}, "10.0.0.1"))
	assert.NotEqual(t, anon, ViewerKey(session.Session{}, "10.0.0.2"))
	assert.NotContains(t, anon, "10.0.0.1")
}

func TestRecord_GuardSuppressesRepeats(t *testing.T) {
	svc, repo, guard, vendorID := newService(t)
	ctx := context.Background()

	counted, err := svc.Record(ctx, session.Session{}, vendorID, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, counted)

	counted, err = svc.Record(ctx, session.Session{}, vendorID, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, counted)
	assert.Len(t, repo.rows, 1)

	var buf bytes.Buffer
	l := zerolog.New(&buf)
	guard.err = errors.New("redis down")
	counted, err = svc.Record(logger.WithRequestID(logger.WithContext(ctx, &l), "req-7"), session.Session{}, vendorID, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, counted)
	assert.Len(t, repo.rows, 2)
	assert.Contains(t, buf.String(), "view guard unavailable")
	assert.Contains(t, buf.String(), `"request_id":"req-7"`)
}

func TestRecord_OwnerAndMissingVendor(t *testing.T) {
	svc, repo, _, vendorID := newService(t)
	owner := session.Session{UserID: uuid.New(), Role: session.RoleVendor, VendorIDs: []uuid.UUID{vendorID}}

	counted, err := svc.Record(context.Background(), owner, vendorID, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, counted)
	assert.Empty(t, repo.rows)

	_, err = svc.Record(context.Background(), session.Session{}, uuid.New(), "10.0.0.1")
	assert.ErrorIs(t, err, ErrVendorNotFound)
}

func TestCounts_UniquePerViewerPerDay(t *testing.T) {
	svc, repo, _, vendorID := newService(t)
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	repo.rows = []*View{
		{VendorID: vendorID, ViewerKey: "a:1", ViewedOn: day},
		{VendorID: vendorID, ViewerKey: "a:1", ViewedOn: day},
		{VendorID: vendorID, ViewerKey: "a:1", ViewedOn: day.AddDate(0, 0, -1)},
		{VendorID: vendorID, ViewerKey: "u:2", ViewedOn: day},
		{VendorID: vendorID, ViewerKey: "u:2", ViewedOn: day.AddDate(0, 0, -40)},
	}
	admin := session.Session{UserID: uuid.New(), Role: session.RoleAdmin}

	all, err := svc.Counts(context.Background(), admin, vendorID, 0)
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 5, Unique: 4}, all)

	recent, err := svc.Counts(context.Background(), admin, vendorID, 30)
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 4, Unique: 3}, recent)

	_, err = svc.Counts(context.Background(), session.Session{UserID: uuid.New(), Role: session.RoleViewer}, vendorID, 0)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestRemoteAddr(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	r.RemoteAddr = "192.0.2.7:5123"
	assert.Equal(t, "192.0.2.7", remoteAddr(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", remoteAddr(r))
}
