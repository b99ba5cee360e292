package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vendora/vendora-api/internal/domain/availability"
	"github.com/vendora/vendora-api/internal/domain/user"
	"github.com/vendora/vendora-api/internal/domain/vendor"
	"github.com/vendora/vendora-api/internal/pkg/logger"
	"github.com/vendora/vendora-api/internal/pkg/metrics"
	"github.com/vendora/vendora-api/internal/pkg/session"
)

// VendorLookup is the slice of the vendor repository bookings read.
type VendorLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error)
	GetPackage(ctx context.Context, id uuid.UUID) (*vendor.Package, error)
}

// UserLookup resolves email recipients.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// DateChecker resolves calendar statuses for requested dates.
type DateChecker interface {
	Resolve(ctx context.Context, vendorID uuid.UUID, dates []string) (map[string]availability.DayStatus, error)
}

// MessagePoster writes system messages into a viewer's inbox.
type MessagePoster interface {
	PostSystem(ctx context.Context, recipientID, requestID uuid.UUID, body string) error
	MarkReadByMarker(ctx context.Context, recipientID, requestID uuid.UUID, marker string) (int64, error)
}

// Publisher pushes realtime events to a connected user.
type Publisher interface {
	Publish(ctx context.Context, userID uuid.UUID, event string, payload interface{}) error
}

// Mailer queues transactional booking emails.
type Mailer interface {
	SendRequestSubmitted(to, vendorName, firstDate, requestURL string)
	SendRequestUpdated(to, toName, vendorName, status, requestURL string)
}

const (
	EventSubmitted = "booking.submitted"
	EventUpdated   = "booking.updated"
)

// Service runs the booking request lifecycle.
type Service struct {
	repo     Repository
	vendors  VendorLookup
	users    UserLookup
	dates    DateChecker
	maxDates int

	messages    MessagePoster
	publisher   Publisher
	mailer      Mailer
	metrics     *metrics.Metrics
	frontendURL string

	now      func() time.Time
	async    func(func())
	inflight sync.WaitGroup
}

func NewService(repo Repository, vendors VendorLookup, users UserLookup, dates DateChecker, maxDates int) *Service {
	if maxDates <= 0 {
		maxDates = 31
	}
	return &Service{
		repo:     repo,
		vendors:  vendors,
		users:    users,
		dates:    dates,
		maxDates: maxDates,
		now:      time.Now,
		async:    func(f func()) { go f() },
	}
}

func (s *Service) SetMessages(m MessagePoster) { s.messages = m }

func (s *Service) SetPublisher(p Publisher) { s.publisher = p }

// SetMailer enables email notifications. Links point at frontendURL.
func (s *Service) SetMailer(m Mailer, frontendURL string) {
	s.mailer = m
	s.frontendURL = strings.TrimRight(frontendURL, "/")
}

func (s *Service) SetMetrics(m *metrics.Metrics) { s.metrics = m }

// Wait blocks until every notification started so far has finished.
func (s *Service) Wait() { s.inflight.Wait() }

func (s *Service) today() string {
	return s.now().UTC().Format(DateLayout)
}

// normalizeDates trims, deduplicates and validates requested dates,
// keeping submission order.
func (s *Service) normalizeDates(raw []string) ([]string, error) {
	const op = "submit"
	today := s.today()
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))

	for _, d := range raw {
		d = strings.TrimSpace(d)
		if seen[d] {
			continue
		}
		seen[d] = true
		if _, err := time.Parse(DateLayout, d); err != nil {
			return nil, validationError(op, ErrInvalidDate, map[string]string{"dates": fmt.Sprintf("%q is not a YYYY-MM-DD date", d)})
		}
		if d < today {
			return nil, validationError(op, ErrPastDate, map[string]string{"dates": d + " is in the past"})
		}
		out = append(out, d)
	}

	if len(out) == 0 {
		return nil, validationError(op, ErrNoDates, map[string]string{"dates": "Pick at least one date"})
	}
	if len(out) > s.maxDates {
		return nil, validationError(op, ErrTooManyDates,
			map[string]string{"dates": fmt.Sprintf("At most %d dates per request", s.maxDates)})
	}
	return out, nil
}

// Submit creates a pending request for the caller.
func (s *Service) Submit(ctx context.Context, sess session.Session, in *SubmitRequest) (*Request, error) {
	const op = "submit"
	if sess.IsZero() || sess.UserID == uuid.Nil {
		return nil, authorizationError(op, ErrNotParty)
	}
	if sess.OwnsVendor(in.VendorID) {
		return nil, authorizationError(op, ErrOwnVendor)
	}

	dates, err := s.normalizeDates(in.Dates)
	if err != nil {
		return nil, err
	}

	v, err := s.vendors.GetByID(ctx, in.VendorID)
	if err != nil {
		return nil, remoteError(op, err)
	}
	if v == nil || !v.IsActive {
		return nil, notFoundError(op, ErrVendorNotFound)
	}

	var pkg *vendor.Package
	if in.PackageID != nil {
		pkg, err = s.vendors.GetPackage(ctx, *in.PackageID)
		if err != nil {
			return nil, remoteError(op, err)
		}
		if pkg == nil || pkg.VendorID != v.ID || !pkg.IsActive {
			return nil, validationError(op, ErrPackageMismatch, map[string]string{"package_id": "Package is not offered by this vendor"})
		}
	}

	statuses, err := s.dates.Resolve(ctx, v.ID, dates)
	if err != nil {
		return nil, remoteError(op, err)
	}
	for _, d := range dates {
		if st := statuses[d]; st != "" && !st.Selectable() {
			return nil, validationError(op, ErrDateUnavailable, map[string]string{"dates": fmt.Sprintf("%s is %s", d, st)})
		}
	}

	req := &Request{
		ID:               uuid.New(),
		VendorID:         v.ID,
		UserID:           sess.UserID,
		Notes:            nullString(strings.TrimSpace(in.Notes)),
		RequestedChanges: nullString(strings.TrimSpace(in.RequestedChanges)),
		Phone:            nullString(strings.TrimSpace(in.Phone)),
		Status:           StatusPending,
		Dates:            dates,
		VendorName:       v.Name,
	}
	if pkg != nil {
		req.PackageID = uuid.NullUUID{UUID: pkg.ID, Valid: true}
		req.Package = summarize(pkg)
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, remoteError(op, err)
	}

	s.notifySubmitted(ctx, req, v)
	return req, nil
}

func summarize(p *vendor.Package) *PackageSummary {
	sum := &PackageSummary{ID: p.ID, Name: p.Name, PricingType: string(p.PricingType)}
	if p.Price.Valid {
		v := p.Price.Float64
		sum.Price = &v
	}
	if p.PricePerPerson.Valid {
		v := p.PricePerPerson.Float64
		sum.PricePerPerson = &v
	}
	return sum
}

func (s *Service) load(ctx context.Context, op string, id uuid.UUID) (*Request, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, remoteError(op, err)
	}
	if req == nil {
		return nil, notFoundError(op, ErrRequestNotFound)
	}
	return req, nil
}

// actorFor picks the role the caller plays for action on req. When the
// caller holds several roles the first one allowed to apply action wins.
func actorFor(sess session.Session, req *Request, action Action) (Actor, error) {
	var candidates []Actor
	if sess.OwnsVendor(req.VendorID) {
		candidates = append(candidates, ActorVendor)
	}
	if sess.UserID != uuid.Nil && req.IsRequester(sess.UserID) {
		candidates = append(candidates, ActorViewer)
	}
	if sess.IsAdmin() {
		candidates = append(candidates, ActorSystem)
	}
	if len(candidates) == 0 {
		return "", authorizationError("respond", ErrNotParty)
	}
	for _, a := range candidates {
		if Allowed(a, action) {
			return a, nil
		}
	}
	return candidates[0], nil
}

// Respond applies one action to a request on behalf of the caller.
//
// Re-applying an action whose target is the current status returns the
// request unchanged without writing. Writes are guarded by the version
// the caller last saw, when it sends one, and always by the stored one.
func (s *Service) Respond(ctx context.Context, sess session.Session, id uuid.UUID, cmd Command) (*Request, error) {
	const op = "respond"
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if sess.IsZero() {
		return nil, authorizationError(op, ErrNotParty)
	}

	req, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}

	actor, err := actorFor(sess, req, cmd.Action)
	if err != nil {
		return nil, err
	}

	dec, err := Next(req.Status, actor, cmd.Action)
	if err != nil {
		var be *Error
		if errors.As(err, &be) {
			be.Op = op
		}
		return nil, err
	}
	if dec.Noop {
		return req, nil
	}

	if cmd.Version != nil && *cmd.Version != req.Version {
		return nil, conflictError(op)
	}
	if cmd.Action == ActionExpire {
		if first := req.FirstDate(); first == "" || first >= s.today() {
			return nil, validationError(op, ErrNotExpired, nil)
		}
	}

	upd := StatusUpdate{ID: req.ID, From: dec.From, To: dec.To, ExpectedVersion: req.Version}
	if cmd.Action == ActionCounter {
		details := strings.TrimSpace(cmd.CounterDetails)
		upd.CounterDetails = &details
		upd.CounterPrice = cmd.CounterPrice
	}

	updated, err := s.repo.UpdateStatus(ctx, upd)
	if err != nil {
		if errors.Is(err, ErrStaleVersion) {
			return s.settleRace(ctx, op, req.ID, dec.To)
		}
		return nil, remoteError(op, err)
	}
	if updated == nil {
		return nil, notFoundError(op, ErrRequestNotFound)
	}

	s.metrics.TransitionApplied(string(cmd.Action), string(dec.From), string(dec.To))
	logger.FromContext(ctx).Info().
		Str("request_id", updated.ID.String()).
		Str("action", string(cmd.Action)).
		Str("from", string(dec.From)).
		Str("to", string(dec.To)).
		Msg("Booking request transitioned")

	s.applyMessageEffects(ctx, updated, actor, dec)
	s.notifyUpdated(ctx, updated, actor)
	return updated, nil
}

// settleRace resolves a lost version race. A concurrent writer that already
// moved the request to target makes this call a no-op; anything else is a conflict.
func (s *Service) settleRace(ctx context.Context, op string, id uuid.UUID, target Status) (*Request, error) {
	current, err := s.load(ctx, op, id)
	if err != nil {
		return nil, conflictError(op)
	}
	if current.Status == target {
		return current, nil
	}
	return nil, conflictError(op)
}

// applyMessageEffects keeps the viewer's inbox in step with the request.
// Failures are logged and never undo the transition.
func (s *Service) applyMessageEffects(ctx context.Context, req *Request, actor Actor, dec Decision) {
	if s.messages == nil {
		return
	}
	log := logger.FromContext(ctx)

	switch {
	case dec.To == StatusAccepted && actor == ActorVendor:
		vendorName := req.VendorName
		if vendorName == "" {
			vendorName = "the vendor"
		}
		body := fmt.Sprintf("Your %s by %s. Please arrange payment to secure your dates.", MarkerPhrase, vendorName)
		if err := s.messages.PostSystem(ctx, req.UserID, req.ID, body); err != nil {
			log.Warn().Err(err).Str("request_id", req.ID.String()).Msg("Failed to post acceptance message")
		}
	case dec.To == StatusSettledOffline:
		n, err := s.messages.MarkReadByMarker(ctx, req.UserID, req.ID, MarkerPhrase)
		if err != nil {
			log.Warn().Err(err).Str("request_id", req.ID.String()).Msg("Failed to mark acceptance messages read")
			return
		}
		log.Debug().Int64("marked", n).Str("request_id", req.ID.String()).Msg("Acceptance messages marked read")
	}
}

// Get returns a request visible to the caller.
func (s *Service) Get(ctx context.Context, sess session.Session, id uuid.UUID) (*Request, error) {
	const op = "get"
	req, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if !sess.IsAdmin() && !sess.OwnsVendor(req.VendorID) && !(sess.UserID != uuid.Nil && req.IsRequester(sess.UserID)) {
		return nil, authorizationError(op, ErrNotParty)
	}
	return req, nil
}

// ListForVendor returns the vendor's requests ordered by first date.
func (s *Service) ListForVendor(ctx context.Context, sess session.Session, vendorID uuid.UUID, filter ListFilter) ([]*Request, error) {
	const op = "list_vendor"
	if !sess.IsAdmin() && !sess.OwnsVendor(vendorID) {
		return nil, authorizationError(op, ErrNotParty)
	}
	reqs, err := s.repo.ListByVendor(ctx, vendorID, filter)
	if err != nil {
		return nil, remoteError(op, err)
	}
	SortByFirstDate(reqs)
	return reqs, nil
}

// ListForViewer returns the caller's own requests ordered by first date.
func (s *Service) ListForViewer(ctx context.Context, sess session.Session, filter ListFilter) ([]*Request, error) {
	const op = "list_viewer"
	if sess.IsZero() || sess.UserID == uuid.Nil {
		return nil, authorizationError(op, ErrNotParty)
	}
	reqs, err := s.repo.ListByUser(ctx, sess.UserID, filter)
	if err != nil {
		return nil, remoteError(op, err)
	}
	SortByFirstDate(reqs)
	return reqs, nil
}

// ExpireStale expires open requests whose first date has passed.
// Individual failures are logged; the count of expired requests is returned.
func (s *Service) ExpireStale(ctx context.Context, sess session.Session) (int, error) {
	const op = "expire"
	if !sess.IsAdmin() {
		return 0, authorizationError(op, ErrActionNotPermitted)
	}

	reqs, err := s.repo.ListExpirable(ctx, s.today())
	if err != nil {
		return 0, remoteError(op, err)
	}

	expired := 0
	for _, req := range reqs {
		if _, err := s.Respond(ctx, sess, req.ID, Command{Action: ActionExpire}); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("request_id", req.ID.String()).Msg("Failed to expire request")
			continue
		}
		expired++
	}
	return expired, nil
}

// CountByStatus reports request totals for dashboards.
func (s *Service) CountByStatus(ctx context.Context) (map[Status]int, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, remoteError("count", err)
	}
	return counts, nil
}
