package admin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/vendora-api/internal/domain/auth"
	"github.com/vendora/vendora-api/internal/domain/booking"
	"github.com/vendora/vendora-api/internal/domain/vendor"
	"github.com/vendora/vendora-api/internal/pkg/session"
)

type fakeRepo struct {
	apps        map[uuid.UUID]*Application
	invitations map[string]*Invitation
	audit       []*AuditLog
	inviteErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{apps: map[uuid.UUID]*Application{}, invitations: map[string]*Invitation{}}
}

func (f *fakeRepo) CreateApplication(_ context.Context, a *Application) error {
	for _, existing := range f.apps {
		if existing.Email == a.Email && existing.Status == ApplicationPending {
			return ErrDuplicateApplication
		}
	}
	a.CreatedAt = time.Now()
	cp := *a
	f.apps[a.ID] = &cp
	return nil
}

func (f *fakeRepo) GetApplication(_ context.Context, id uuid.UUID) (*Application, error) {
	a, ok := f.apps[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeRepo) ListApplications(_ context.Context, status ApplicationStatus, _, _ int) ([]*Application, int, error) {
	var out []*Application
	for _, a := range f.apps {
		if status == "" || a.Status == status {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) ReviewApplication(_ context.Context, a *Application) error {
	stored := f.apps[a.ID]
	if stored == nil || stored.Status != ApplicationPending {
		return ErrApplicationNotPending
	}
	cp := *a
	f.apps[a.ID] = &cp
	return nil
}

func (f *fakeRepo) CountApplications(_ context.Context, status ApplicationStatus) (int, error) {
	n := 0
	for _, a := range f.apps {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CreateInvitation(_ context.Context, inv *Invitation) error {
	if f.inviteErr != nil {
		return f.inviteErr
	}
	cp := *inv
	f.invitations[inv.Token] = &cp
	return nil
}

func (f *fakeRepo) GetInvitationByToken(_ context.Context, token string) (*Invitation, error) {
	inv, ok := f.invitations[token]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeRepo) AcceptInvitation(_ context.Context, id, userID uuid.UUID) error {
	for _, inv := range f.invitations {
		if inv.ID == id && !inv.AcceptedBy.Valid {
			inv.AcceptedBy = uuid.NullUUID{UUID: userID, Valid: true}
			return nil
		}
	}
	return ErrInvitationNotFound
}

func (f *fakeRepo) ReleaseInvitation(_ context.Context, id uuid.UUID) error {
	for _, inv := range f.invitations {
		if inv.ID == id {
			inv.AcceptedBy = uuid.NullUUID{}
		}
	}
	return nil
}

func (f *fakeRepo) CreateAuditLog(_ context.Context, l *AuditLog) error {
	f.audit = append(f.audit, l)
	return nil
}

func (f *fakeRepo) ListAuditLogs(_ context.Context, _ AuditFilter) ([]*AuditLog, int, error) {
	return f.audit, len(f.audit), nil
}

type fakeVendors struct {
	vendors  map[uuid.UUID]*vendor.Vendor
	owners   map[uuid.UUID]uuid.UUID
	ownerErr error
}

func newFakeVendors() *fakeVendors {
	return &fakeVendors{vendors: map[uuid.UUID]*vendor.Vendor{}, owners: map[uuid.UUID]uuid.UUID{}}
}

func (f *fakeVendors) Create(_ context.Context, v *vendor.Vendor) error {
	f.vendors[v.ID] = v
	return nil
}

func (f *fakeVendors) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.vendors, id)
	return nil
}

func (f *fakeVendors) SetOwner(_ context.Context, vendorID, userID uuid.UUID) error {
	if f.ownerErr != nil {
		return f.ownerErr
	}
	f.owners[vendorID] = userID
	return nil
}

func (f *fakeVendors) Count(context.Context) (int, error) { return len(f.vendors), nil }

type fakeRequests struct{ expired int }

func (f *fakeRequests) CountByStatus(context.Context) (map[booking.Status]int, error) {
	return map[booking.Status]int{booking.StatusPending: 3, booking.StatusConfirmed: 1}, nil
}

func (f *fakeRequests) ExpireStale(_ context.Context, sess session.Session) (int, error) {
	if !sess.IsAdmin() {
		return 0, errors.New("not admin")
	}
	return f.expired, nil
}

type fakeUsers struct{}

func (fakeUsers) CountByRole(context.Context) (map[session.Role]int, error) {
	return map[session.Role]int{session.RoleViewer: 10, session.RoleVendor: 2}, nil
}

type sentMail struct{ kind, to, detail string }

type fakeMailer struct{ sent []sentMail }

func (m *fakeMailer) SendOnboardingApproved(to, _, _, inviteURL string) {
	m.sent = append(m.sent, sentMail{"approved", to, inviteURL})
}

func (m *fakeMailer) SendOnboardingRejected(to, _, _, reason string) {
	m.sent = append(m.sent, sentMail{"rejected", to, reason})
}

type fixture struct {
	svc     *Service
	repo    *fakeRepo
	vendors *fakeVendors
	mailer  *fakeMailer
	admin   session.Session
}

func newFixture() *fixture {
	f := &fixture{
		repo:    newFakeRepo(),
		vendors: newFakeVendors(),
		mailer:  &fakeMailer{},
		admin:   session.Session{UserID: uuid.New(), Role: session.RoleAdmin},
	}
	f.svc = NewService(f.repo, f.vendors, &fakeRequests{expired: 2}, fakeUsers{}, 48*time.Hour)
	f.svc.SetMailer(f.mailer, "https://vendora.test/")
	return f
}

func (f *fixture) apply(t *testing.T) *Application {
	t.Helper()
	a, err := f.svc.Apply(context.Background(), &ApplyRequest{
		BusinessName: "Bloom Florals",
		ContactName:  "Dana",
		Email:        " Dana@Bloom.test ",
		Category:     "Florist",
		City:         "Austin",
	})
	require.NoError(t, err)
	return a
}

func TestApply_NormalizesAndRejectsDuplicates(t *testing.T) {
	f := newFixture()
	a := f.apply(t)
	assert.Equal(t, "dana@bloom.test", a.Email)
	assert.Equal(t, "florist", a.Category)
	assert.Equal(t, ApplicationPending, a.Status)

	_, err := f.svc.Apply(context.Background(), &ApplyRequest{BusinessName: "Bloom", ContactName: "Dana", Email: "dana@bloom.test", Category: "x", City: "y"})
	assert.ErrorIs(t, err, ErrDuplicateApplication)
}

func TestApprove_CreatesVendorAndInvitation(t *testing.T) {
	f := newFixture()
	a := f.apply(t)

	approved, inv, err := f.svc.Approve(context.Background(), f.admin, a.ID)
	require.NoError(t, err)
	assert.Equal(t, ApplicationApproved, approved.Status)
	assert.Equal(t, inv.VendorID, approved.VendorID.UUID)
	assert.Regexp(t, `^[0-9a-f]{64}$`, inv.Token)

	v := f.vendors.vendors[inv.VendorID]
	require.NotNil(t, v)
	assert.False(t, v.OwnerID.Valid)
	assert.Equal(t, "Bloom Florals", v.Name)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "approved", f.mailer.sent[0].kind)
	assert.Equal(t, "https://vendora.test/register?invitation="+inv.Token, f.mailer.sent[0].detail)
	require.Len(t, f.repo.audit, 1)
	assert.Equal(t, "application.approve", f.repo.audit[0].Action)

	_, _, err = f.svc.Approve(context.Background(), f.admin, a.ID)
	assert.ErrorIs(t, err, ErrApplicationNotPending)
}

func TestApprove_RemovesVendorWhenInvitationFails(t *testing.T) {
	f := newFixture()
	a := f.apply(t)
	f.repo.inviteErr = errors.New("db down")

	_, _, err := f.svc.Approve(context.Background(), f.admin, a.ID)
	require.Error(t, err)
	assert.Empty(t, f.vendors.vendors)
	assert.Empty(t, f.mailer.sent)
	assert.Equal(t, ApplicationPending, f.repo.apps[a.ID].Status)
}

func TestApprove_AdminOnly(t *testing.T) {
	f := newFixture()
	a := f.apply(t)

	_, _, err := f.svc.Approve(context.Background(), session.Session{UserID: uuid.New(), Role: session.RoleVendor}, a.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, _, err = f.svc.Approve(context.Background(), f.admin, uuid.New())
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestReject_SendsReason(t *testing.T) {
	f := newFixture()
	a := f.apply(t)

	rejected, err := f.svc.Reject(context.Background(), f.admin, a.ID, "Outside our service area")
	require.NoError(t, err)
	assert.Equal(t, ApplicationRejected, rejected.Status)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, sentMail{"rejected", "dana@bloom.test", "Outside our service area"}, f.mailer.sent[0])
}

func TestRedeem(t *testing.T) {
	f := newFixture()
	a := f.apply(t)
	_, inv, err := f.svc.Approve(context.Background(), f.admin, a.ID)
	require.NoError(t, err)
	userID := uuid.New()

	vendorID, err := f.svc.Redeem(context.Background(), inv.Token, userID)
	require.NoError(t, err)
	assert.Equal(t, inv.VendorID, vendorID)
	assert.Equal(t, userID, f.vendors.owners[vendorID])

	_, err = f.svc.Redeem(context.Background(), inv.Token, uuid.New())
	assert.ErrorIs(t, err, auth.ErrInvalidInvitation)

	_, err = f.svc.Redeem(context.Background(), "unknown", uuid.New())
	assert.ErrorIs(t, err, auth.ErrInvalidInvitation)
}

func TestRedeem_ExpiredAndRollback(t *testing.T) {
	f := newFixture()
	a := f.apply(t)
	_, inv, err := f.svc.Approve(context.Background(), f.admin, a.ID)
	require.NoError(t, err)

	f.vendors.ownerErr = errors.New("db down")
	_, err = f.svc.Redeem(context.Background(), inv.Token, uuid.New())
	require.Error(t, err)
	assert.False(t, f.repo.invitations[inv.Token].AcceptedBy.Valid)

	f.vendors.ownerErr = nil
	f.svc.now = func() time.Time { return time.Now().Add(72 * time.Hour) }
	_, err = f.svc.Redeem(context.Background(), inv.Token, uuid.New())
	assert.ErrorIs(t, err, auth.ErrInvalidInvitation)
}

func TestStatsAndExpire(t *testing.T) {
	f := newFixture()
	f.apply(t)

	stats, err := f.svc.Stats(context.Background(), f.admin)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Requests["pending"])
	assert.Equal(t, 0, stats.Requests["expired"])
	assert.Len(t, stats.Requests, len(booking.AllStatuses))
	assert.Equal(t, 10, stats.Users["viewer"])
	assert.Equal(t, 1, stats.PendingApplications)

	n, err := f.svc.ExpireStale(context.Background(), f.admin)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = f.svc.Stats(context.Background(), session.Session{UserID: uuid.New(), Role: session.RoleViewer})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestHandler_ApproveConflict(t *testing.T) {
	f := newFixture()
	a := f.apply(t)
	_, err := f.svc.Reject(context.Background(), f.admin, a.ID, "Duplicate listing")
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(session.WithContext(req.Context(), f.admin)))
		})
	})
	r.Mount("/", NewHandler(f.svc).Routes())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/applications/"+a.ID.String()+"/approve", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/applications/"+a.ID.String()+"/reject", strings.NewReader(`{"reason":""}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
