package rating

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/vendora/vendora-api/internal/domain/vendor"
	"github.com/vendora/vendora-api/internal/pkg/logger"
	"github.com/vendora/vendora-api/internal/pkg/session"
)

// VendorLookup loads the rated vendor.
type VendorLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error)
}

// Eligibility reports whether a user holds a confirmed booking with a vendor.
type Eligibility interface {
	HasConfirmed(ctx context.Context, vendorID, userID uuid.UUID) (bool, error)
}

type Service struct {
	repo     Repository
	vendors  VendorLookup
	eligible Eligibility
	cache    SummaryCache
}

// NewService creates a rating service. cache may be nil.
func NewService(repo Repository, vendors VendorLookup, eligible Eligibility, cache SummaryCache) *Service {
	return &Service{repo: repo, vendors: vendors, eligible: eligible, cache: cache}
}

func (s *Service) vendorExists(ctx context.Context, vendorID uuid.UUID) (*vendor.Vendor, error) {
	v, err := s.vendors.GetByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrVendorNotFound
	}
	return v, nil
}

// Create stores a rating for a vendor the caller has booked and confirmed.
func (s *Service) Create(ctx context.Context, sess session.Session, vendorID uuid.UUID, req CreateRequest) (*Rating, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidScore
	}
	v, err := s.vendorExists(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if sess.OwnsVendor(v.ID) || (v.OwnerID.Valid && v.OwnerID.UUID == sess.UserID) {
		return nil, ErrOwnVendor
	}

	ok, err := s.eligible.HasConfirmed(ctx, vendorID, sess.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotEligible
	}

	comment := strings.TrimSpace(req.Comment)
	rt := &Rating{
		ID:       uuid.New(),
		VendorID: vendorID,
		UserID:   sess.UserID,
		Score:    req.Rating,
		Comment:  sql.NullString{String: comment, Valid: comment != ""},
	}
	if err := s.repo.Create(ctx, rt); err != nil {
		return nil, err
	}

	s.refresh(ctx, vendorID)
	return rt, nil
}

// Delete removes a rating. Only its author or an admin may do so.
func (s *Service) Delete(ctx context.Context, sess session.Session, id uuid.UUID) error {
	rt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rt == nil {
		return ErrRatingNotFound
	}
	if rt.UserID != sess.UserID && !sess.IsAdmin() {
		return ErrNotRatingAuthor
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.refresh(ctx, rt.VendorID)
	return nil
}

func (s *Service) List(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]*Rating, error) {
	if _, err := s.vendorExists(ctx, vendorID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByVendor(ctx, vendorID, limit, offset)
}

// Summary returns mean, count and distribution, served from cache when possible.
func (s *Service) Summary(ctx context.Context, vendorID uuid.UUID) (*Summary, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, vendorID)
		if err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("vendor_id", vendorID.String()).Msg("rating summary cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	summary, err := s.compute(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, summary); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("vendor_id", vendorID.String()).Msg("rating summary cache write failed")
		}
	}
	return summary, nil
}

func (s *Service) compute(ctx context.Context, vendorID uuid.UUID) (*Summary, error) {
	dist, err := s.repo.Distribution(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	return Summarize(vendorID, dist), nil
}

// refresh recomputes the cached summary after a write. Failures are only logged.
func (s *Service) refresh(ctx context.Context, vendorID uuid.UUID) {
	if s.cache == nil {
		return
	}
	summary, err := s.compute(ctx, vendorID)
	if err == nil {
		err = s.cache.Set(ctx, summary)
	}
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("vendor_id", vendorID.String()).Msg("rating summary refresh failed")
		if err := s.cache.Invalidate(ctx, vendorID); err != nil {
			logger.FromContext(ctx).Error().Err(err).Str("vendor_id", vendorID.String()).Msg("rating summary invalidate failed")
		}
	}
}
