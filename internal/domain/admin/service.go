package admin

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vendora/vendora-api/internal/domain/auth"
	"github.com/vendora/vendora-api/internal/domain/booking"
	"github.com/vendora/vendora-api/internal/domain/vendor"
	"github.com/vendora/vendora-api/internal/pkg/compensation"
	"github.com/vendora/vendora-api/internal/pkg/jwt"
	"github.com/vendora/vendora-api/internal/pkg/metrics"
	"github.com/vendora/vendora-api/internal/pkg/session"
)

// VendorStore creates, removes and binds vendors on behalf of onboarding.
type VendorStore interface {
	Create(ctx context.Context, v *vendor.Vendor) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetOwner(ctx context.Context, vendorID, userID uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

// Requests exposes booking request maintenance to the dashboard.
type Requests interface {
	CountByStatus(ctx context.Context) (map[booking.Status]int, error)
	ExpireStale(ctx context.Context, sess session.Session) (int, error)
}

// UserCounter counts accounts per role.
type UserCounter interface {
	CountByRole(ctx context.Context) (map[session.Role]int, error)
}

// Mailer queues onboarding emails.
type Mailer interface {
	SendOnboardingApproved(to, contactName, businessName, inviteURL string)
	SendOnboardingRejected(to, contactName, businessName, reason string)
}

// Service handles onboarding, invitations and the admin dashboard.
type Service struct {
	repo          Repository
	vendors       VendorStore
	requests      Requests
	users         UserCounter
	mailer        Mailer
	metrics       *metrics.Metrics
	frontendURL   string
	invitationTTL time.Duration
	now           func() time.Time
}

// NewService creates admin service
func NewService(repo Repository, vendors VendorStore, requests Requests, users UserCounter, invitationTTL time.Duration) *Service {
	if invitationTTL <= 0 {
		invitationTTL = 7 * 24 * time.Hour
	}
	return &Service{
		repo:          repo,
		vendors:       vendors,
		requests:      requests,
		users:         users,
		invitationTTL: invitationTTL,
		now:           time.Now,
	}
}

func (s *Service) SetMailer(m Mailer, frontendURL string) {
	s.mailer = m
	s.frontendURL = strings.TrimRight(frontendURL, "/")
}

func (s *Service) SetMetrics(m *metrics.Metrics) { s.metrics = m }

func nullable(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Service) audit(ctx context.Context, sess session.Session, action, entityType string, entityID uuid.UUID, reason string) {
	entry := &AuditLog{
		ID:         uuid.New(),
		AdminID:    uuid.NullUUID{UUID: sess.UserID, Valid: sess.UserID != uuid.Nil},
		Action:     action,
		EntityType: entityType,
		EntityID:   uuid.NullUUID{UUID: entityID, Valid: entityID != uuid.Nil},
		Reason:     nullable(reason),
		CreatedAt:  s.now(),
	}
	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to write audit log")
	}
}

// --- Onboarding ---

// Apply records a public onboarding application.
func (s *Service) Apply(ctx context.Context, req *ApplyRequest) (*Application, error) {
	a := &Application{
		ID:           uuid.New(),
		BusinessName: strings.TrimSpace(req.BusinessName),
		ContactName:  strings.TrimSpace(req.ContactName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        nullable(req.Phone),
		Category:     strings.ToLower(strings.TrimSpace(req.Category)),
		City:         strings.TrimSpace(req.City),
		Description:  nullable(req.Description),
		Status:       ApplicationPending,
	}
	if err := s.repo.CreateApplication(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) ListApplications(ctx context.Context, sess session.Session, status ApplicationStatus, limit, offset int) ([]*Application, int, error) {
	if !sess.IsAdmin() {
		return nil, 0, ErrPermissionDenied
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListApplications(ctx, status, limit, offset)
}

func (s *Service) pendingApplication(ctx context.Context, sess session.Session, id uuid.UUID) (*Application, error) {
	if !sess.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	a, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrApplicationNotFound
	}
	if a.Status != ApplicationPending {
		return nil, ErrApplicationNotPending
	}
	return a, nil
}

// Approve creates an unowned vendor from the application and issues an
// invitation for the applicant. If the invitation or review cannot be stored
// the vendor is removed again.
func (s *Service) Approve(ctx context.Context, sess session.Session, id uuid.UUID) (*Application, *Invitation, error) {
	a, err := s.pendingApplication(ctx, sess, id)
	if err != nil {
		return nil, nil, err
	}

	token, err := jwt.GenerateOpaqueToken()
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	v := &vendor.Vendor{
		ID:          uuid.New(),
		Name:        a.BusinessName,
		Category:    a.Category,
		City:        a.City,
		Description: a.Description,
		Email:       sql.NullString{String: a.Email, Valid: true},
		Phone:       a.Phone,
		IsActive:    true,
	}
	inv := &Invitation{
		ID:            uuid.New(),
		Token:         token,
		VendorID:      v.ID,
		ApplicationID: uuid.NullUUID{UUID: a.ID, Valid: true},
		Email:         a.Email,
		ExpiresAt:     now.Add(s.invitationTTL),
		VendorName:    v.Name,
	}

	createVendor := func(ctx context.Context) error {
		return s.vendors.Create(ctx, v)
	}
	removeVendor := func(ctx context.Context) error {
		s.metrics.RollbackApplied("onboarding_approve")
		log.Warn().Str("application_id", a.ID.String()).Msg("Removing vendor after failed approval")
		return s.vendors.Delete(ctx, v.ID)
	}
	issue := func(ctx context.Context) error {
		if err := s.repo.CreateInvitation(ctx, inv); err != nil {
			return err
		}
		a.Status = ApplicationApproved
		a.VendorID = uuid.NullUUID{UUID: v.ID, Valid: true}
		a.ReviewedBy = uuid.NullUUID{UUID: sess.UserID, Valid: sess.UserID != uuid.Nil}
		a.ReviewedAt = sql.NullTime{Time: now, Valid: true}
		return s.repo.ReviewApplication(ctx, a)
	}

	if err := compensation.Run(ctx, createVendor, removeVendor, issue); err != nil {
		a.Status = ApplicationPending
		return nil, nil, err
	}

	s.audit(ctx, sess, "application.approve", "application", a.ID, "")
	if s.mailer != nil {
		s.mailer.SendOnboardingApproved(a.Email, a.ContactName, a.BusinessName, s.InviteURL(inv.Token))
	}
	return a, inv, nil
}

// Reject closes a pending application with a reason sent to the applicant.
func (s *Service) Reject(ctx context.Context, sess session.Session, id uuid.UUID, reason string) (*Application, error) {
	a, err := s.pendingApplication(ctx, sess, id)
	if err != nil {
		return nil, err
	}

	a.Status = ApplicationRejected
	a.RejectionReason = nullable(reason)
	a.ReviewedBy = uuid.NullUUID{UUID: sess.UserID, Valid: sess.UserID != uuid.Nil}
	a.ReviewedAt = sql.NullTime{Time: s.now(), Valid: true}
	if err := s.repo.ReviewApplication(ctx, a); err != nil {
		return nil, err
	}

	s.audit(ctx, sess, "application.reject", "application", a.ID, reason)
	if s.mailer != nil {
		s.mailer.SendOnboardingRejected(a.Email, a.ContactName, a.BusinessName, a.RejectionReason.String)
	}
	return a, nil
}

// InviteURL is the registration link carrying token.
func (s *Service) InviteURL(token string) string {
	return s.frontendURL + "/register?invitation=" + token
}

// --- Invitations ---

// GetInvitation returns the invitation for token.
func (s *Service) GetInvitation(ctx context.Context, token string) (*Invitation, error) {
	inv, err := s.repo.GetInvitationByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInvitationNotFound
	}
	return inv, nil
}

// Redeem binds the invited vendor to a newly registered user.
func (s *Service) Redeem(ctx context.Context, token string, userID uuid.UUID) (uuid.UUID, error) {
	inv, err := s.repo.GetInvitationByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return uuid.Nil, err
	}
	if inv == nil || !inv.Usable(s.now()) {
		return uuid.Nil, auth.ErrInvalidInvitation
	}

	claim := func(ctx context.Context) error {
		if err := s.repo.AcceptInvitation(ctx, inv.ID, userID); err != nil {
			if errors.Is(err, ErrInvitationNotFound) {
				return auth.ErrInvalidInvitation
			}
			return err
		}
		return nil
	}
	release := func(ctx context.Context) error {
		s.metrics.RollbackApplied("invitation_redeem")
		return s.repo.ReleaseInvitation(ctx, inv.ID)
	}
	bind := func(ctx context.Context) error {
		return s.vendors.SetOwner(ctx, inv.VendorID, userID)
	}
	if err := compensation.Run(ctx, claim, release, bind); err != nil {
		return uuid.Nil, err
	}
	return inv.VendorID, nil
}

// --- Dashboard ---

func (s *Service) Stats(ctx context.Context, sess session.Session) (*Stats, error) {
	if !sess.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	byStatus, err := s.requests.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byRole, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	vendors, err := s.vendors.Count(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.CountApplications(ctx, ApplicationPending)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Requests:            make(map[string]int, len(booking.AllStatuses)),
		Users:               make(map[string]int, len(byRole)),
		Vendors:             vendors,
		PendingApplications: pending,
	}
	for _, st := range booking.AllStatuses {
		stats.Requests[string(st)] = byStatus[st]
	}
	for role, n := range byRole {
		stats.Users[string(role)] = n
	}
	return stats, nil
}

// ExpireStale moves unanswered requests whose first date has passed to expired.
func (s *Service) ExpireStale(ctx context.Context, sess session.Session) (int, error) {
	if !sess.IsAdmin() {
		return 0, ErrPermissionDenied
	}
	n, err := s.requests.ExpireStale(ctx, sess)
	if err != nil {
		return 0, err
	}
	s.audit(ctx, sess, "requests.expire", "booking_request", uuid.Nil, "")
	return n, nil
}

func (s *Service) AuditLogs(ctx context.Context, sess session.Session, filter AuditFilter) ([]*AuditLog, int, error) {
	if !sess.IsAdmin() {
		return nil, 0, ErrPermissionDenied
	}
	return s.repo.ListAuditLogs(ctx, filter)
}
