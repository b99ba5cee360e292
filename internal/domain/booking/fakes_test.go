package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vendora/vendora-api/internal/domain/availability"
	"github.com/vendora/vendora-api/internal/domain/user"
	"github.com/vendora/vendora-api/internal/domain/vendor"
)

type fakeRepo struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*Request
	order     []uuid.UUID
	updates   int
	updateErr error
	clock     time.Time

	// snapshot, when set, is served by the next GetByID for its id.
	snapshot *Request
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[uuid.UUID]*Request{}, clock: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func clone(r *Request) *Request {
	c := *r
	c.Dates = append([]string{}, r.Dates...)
	return &c
}

func (f *fakeRepo) Create(_ context.Context, req *Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = f.clock.Add(time.Minute)
	req.Version = 1
	req.CreatedAt = f.clock
	req.UpdatedAt = f.clock
	f.byID[req.ID] = clone(req)
	f.order = append(f.order, req.ID)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapshot != nil && f.snapshot.ID == id {
		r := f.snapshot
		f.snapshot = nil
		return r, nil
	}
	r, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return clone(r), nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, upd StatusUpdate) (*Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	r, ok := f.byID[upd.ID]
	if !ok || r.Version != upd.ExpectedVersion || r.Status != upd.From {
		return nil, ErrStaleVersion
	}
	f.updates++
	r.Status = upd.To
	r.Version++
	if upd.CounterDetails != nil {
		r.CounterOfferDetails.String, r.CounterOfferDetails.Valid = *upd.CounterDetails, true
	}
	if upd.CounterPrice != nil {
		r.CounterOfferPrice.Float64, r.CounterOfferPrice.Valid = *upd.CounterPrice, true
	}
	return clone(r), nil
}

func (f *fakeRepo) list(match func(*Request) bool, filter ListFilter) []*Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Request
	for i := len(f.order) - 1; i >= 0; i-- {
		r := f.byID[f.order[i]]
		if !match(r) {
			continue
		}
		if len(filter.Statuses) > 0 {
			keep := false
			for _, s := range filter.Statuses {
				keep = keep || r.Status == s
			}
			if !keep {
				continue
			}
		}
		out = append(out, clone(r))
	}
	return out
}

func (f *fakeRepo) ListByVendor(_ context.Context, vendorID uuid.UUID, filter ListFilter) ([]*Request, error) {
	return f.list(func(r *Request) bool { return r.VendorID == vendorID }, filter), nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID uuid.UUID, filter ListFilter) ([]*Request, error) {
	return f.list(func(r *Request) bool { return r.UserID == userID }, filter), nil
}

func (f *fakeRepo) ListExpirable(_ context.Context, today string) ([]*Request, error) {
	return f.list(func(r *Request) bool {
		return (r.Status == StatusPending || r.Status == StatusCountered) && r.FirstDate() != "" && r.FirstDate() < today
	}, ListFilter{}), nil
}

func (f *fakeRepo) BookedDates(context.Context, uuid.UUID, string, string) (map[string]int, error) {
	return map[string]int{}, nil
}

func (f *fakeRepo) CountByStatus(context.Context) (map[Status]int, error) {
	out := map[Status]int{}
	for _, r := range f.byID {
		out[r.Status]++
	}
	return out, nil
}

func (f *fakeRepo) HasConfirmed(_ context.Context, vendorID, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.byID {
		if r.VendorID == vendorID && r.UserID == userID && r.Status == StatusConfirmed {
			return true, nil
		}
	}
	return false, nil
}

type fakeVendors struct {
	vendors  map[uuid.UUID]*vendor.Vendor
	packages map[uuid.UUID]*vendor.Package
	err      error
}

func (f *fakeVendors) GetByID(_ context.Context, id uuid.UUID) (*vendor.Vendor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vendors[id], nil
}

func (f *fakeVendors) GetPackage(_ context.Context, id uuid.UUID) (*vendor.Package, error) {
	return f.packages[id], nil
}

type fakeUsers map[uuid.UUID]*user.User

func (f fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	return f[id], nil
}

type fakeDates map[string]availability.DayStatus

func (f fakeDates) Resolve(_ context.Context, _ uuid.UUID, dates []string) (map[string]availability.DayStatus, error) {
	out := map[string]availability.DayStatus{}
	for _, d := range dates {
		if st, ok := f[d]; ok {
			out[d] = st
		} else {
			out[d] = availability.DayAvailable
		}
	}
	return out, nil
}

type postedMessage struct {
	recipient uuid.UUID
	request   uuid.UUID
	body      string
}

type fakeMessages struct {
	mu       sync.Mutex
	posted   []postedMessage
	markedBy []string
	postErr  error
}

func (f *fakeMessages) PostSystem(_ context.Context, recipientID, requestID uuid.UUID, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return f.postErr
	}
	f.posted = append(f.posted, postedMessage{recipientID, requestID, body})
	return nil
}

func (f *fakeMessages) MarkReadByMarker(_ context.Context, _, _ uuid.UUID, marker string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedBy = append(f.markedBy, marker)
	return 1, nil
}

type published struct {
	userID uuid.UUID
	event  string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (f *fakePublisher) Publish(_ context.Context, userID uuid.UUID, event string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{userID, event})
	return nil
}

type fakeMailer struct {
	mu        sync.Mutex
	submitted []string
	updated   []string
}

func (f *fakeMailer) SendRequestSubmitted(to, _, _, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, to)
}

func (f *fakeMailer) SendRequestUpdated(to, _, _, status, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, to+":"+status)
}

var errBackend = errors.New("connection refused")
