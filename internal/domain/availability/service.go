package availability

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vendora/vendora-api/internal/domain/vendor"
	"github.com/vendora/vendora-api/internal/pkg/session"
)

// Occupancy counts confirmed bookings per ISO date in [from, to].
type Occupancy interface {
	BookedDates(ctx context.Context, vendorID uuid.UUID, from, to string) (map[string]int, error)
}

// VendorLookup is the slice of the vendor repository this service needs.
type VendorLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error)
}

// Service merges settings, blocked dates and bookings into calendars.
type Service struct {
	repo      Repository
	vendors   VendorLookup
	occupancy Occupancy
}

func NewService(repo Repository, vendors VendorLookup, occupancy Occupancy) *Service {
	return &Service{repo: repo, vendors: vendors, occupancy: occupancy}
}

func (s *Service) ensureVendor(ctx context.Context, vendorID uuid.UUID) error {
	v, err := s.vendors.GetByID(ctx, vendorID)
	if err != nil {
		return err
	}
	if v == nil {
		return ErrVendorNotFound
	}
	return nil
}

func (s *Service) settings(ctx context.Context, vendorID uuid.UUID) (*Settings, bool, error) {
	st, err := s.repo.GetSettings(ctx, vendorID)
	if err != nil {
		return nil, false, fmt.Errorf("load availability settings: %w", err)
	}
	if st == nil {
		return DefaultSettings(vendorID), false, nil
	}
	return st, true, nil
}

func (s *Service) blockedSet(ctx context.Context, vendorID uuid.UUID, from, to string) (map[string]bool, error) {
	items, err := s.repo.ListBlocked(ctx, vendorID, from, to)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(items))
	for _, b := range items {
		out[b.ISODate()] = true
	}
	return out, nil
}

// GetCalendar builds the month calendar for vendorID. month is YYYY-MM.
func (s *Service) GetCalendar(ctx context.Context, vendorID uuid.UUID, month string) (*Month, error) {
	m, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}
	if err := s.ensureVendor(ctx, vendorID); err != nil {
		return nil, err
	}
	return s.buildMonth(ctx, vendorID, m)
}

func (s *Service) buildMonth(ctx context.Context, vendorID uuid.UUID, month time.Time) (*Month, error) {
	from, to := MonthBounds(month)

	settings, _, err := s.settings(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	blocked, err := s.blockedSet(ctx, vendorID, from, to)
	if err != nil {
		return nil, err
	}
	bookings, err := s.occupancy.BookedDates(ctx, vendorID, from, to)
	if err != nil {
		return nil, err
	}

	cal := BuildMonth(month, settings, blocked, bookings)
	return &cal, nil
}

// Resolve returns the status of each ISO date for vendorID using the same
// precedence as the calendar.
func (s *Service) Resolve(ctx context.Context, vendorID uuid.UUID, dates []string) (map[string]DayStatus, error) {
	out := make(map[string]DayStatus, len(dates))
	if len(dates) == 0 {
		return out, nil
	}

	parsed := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		t, err := time.Parse(DateLayout, d)
		if err != nil {
			return nil, ErrInvalidDate
		}
		parsed = append(parsed, t)
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Before(parsed[j]) })
	from, to := parsed[0].Format(DateLayout), parsed[len(parsed)-1].Format(DateLayout)

	settings, _, err := s.settings(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	blocked, err := s.blockedSet(ctx, vendorID, from, to)
	if err != nil {
		return nil, err
	}
	bookings, err := s.occupancy.BookedDates(ctx, vendorID, from, to)
	if err != nil {
		return nil, err
	}

	in := Inputs{DaysOff: settings.DaysOff, Blocked: blocked, Bookings: bookings}
	for _, t := range parsed {
		out[t.Format(DateLayout)] = in.Resolve(t)
	}
	return out, nil
}

// Plan applies one toggle to a client-held selection against the month on screen.
func (s *Service) Plan(ctx context.Context, vendorID uuid.UUID, req *PlanRequest) (*PlanResponse, error) {
	cal, err := s.GetCalendar(ctx, vendorID, req.Month)
	if err != nil {
		return nil, err
	}

	p := NewPlanner(*cal, req.Selected...)
	changed := false
	if req.Toggle != "" {
		changed = p.Toggle(req.Toggle)
	}
	return &PlanResponse{Calendar: p.Month(), Selected: p.Selected(), Changed: changed}, nil
}

// GetSettings returns the vendor's settings, or the all-available default.
func (s *Service) GetSettings(ctx context.Context, vendorID uuid.UUID) (*Settings, bool, error) {
	if err := s.ensureVendor(ctx, vendorID); err != nil {
		return nil, false, err
	}
	return s.settings(ctx, vendorID)
}

func (s *Service) UpdateSettings(ctx context.Context, sess session.Session, vendorID uuid.UUID, req *SettingsRequest) (*Settings, error) {
	if !sess.IsAdmin() && !sess.OwnsVendor(vendorID) {
		return nil, ErrNotVendorOwner
	}
	if err := s.ensureVendor(ctx, vendorID); err != nil {
		return nil, err
	}

	daysOff := DaysOff{}
	for day, off := range req.DaysOff {
		day = strings.ToLower(strings.TrimSpace(day))
		if !validWeekday(day) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidWeekday, day)
		}
		if off {
			daysOff[day] = true
		}
	}

	st := &Settings{VendorID: vendorID, DaysOff: daysOff}
	if req.SlotsPerDay != nil {
		st.SlotsPerDay = sql.NullInt64{Int64: int64(*req.SlotsPerDay), Valid: true}
	}
	if err := s.repo.UpsertSettings(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func validWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

func (s *Service) ListBlocked(ctx context.Context, vendorID uuid.UUID, from, to string) ([]*BlockedDate, error) {
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, d); err != nil {
			return nil, ErrInvalidDate
		}
	}
	if err := s.ensureVendor(ctx, vendorID); err != nil {
		return nil, err
	}
	return s.repo.ListBlocked(ctx, vendorID, from, to)
}

func (s *Service) BlockDate(ctx context.Context, sess session.Session, vendorID uuid.UUID, req *BlockRequest) (*BlockedDate, error) {
	if !sess.IsAdmin() && !sess.OwnsVendor(vendorID) {
		return nil, ErrNotVendorOwner
	}
	date, err := time.Parse(DateLayout, req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if err := s.ensureVendor(ctx, vendorID); err != nil {
		return nil, err
	}

	b := &BlockedDate{
		ID:       uuid.New(),
		VendorID: vendorID,
		Date:     date,
		Reason:   sql.NullString{String: strings.TrimSpace(req.Reason), Valid: strings.TrimSpace(req.Reason) != ""},
	}
	if err := s.repo.AddBlocked(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) UnblockDate(ctx context.Context, sess session.Session, vendorID uuid.UUID, date string) error {
	if !sess.IsAdmin() && !sess.OwnsVendor(vendorID) {
		return ErrNotVendorOwner
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return ErrInvalidDate
	}
	return s.repo.RemoveBlocked(ctx, vendorID, date)
}
