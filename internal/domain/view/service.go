package view

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/vendora/vendora-api/internal/domain/vendor"
	"github.com/vendora/vendora-api/internal/pkg/logger"
	"github.com/vendora/vendora-api/internal/pkg/session"
)

type VendorLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error)
}

type Service struct {
	repo    Repository
	vendors VendorLookup
	guard   Guard
	now     func() time.Time
}

func NewService(repo Repository, vendors VendorLookup, guard Guard) *Service {
	return &Service{repo: repo, vendors: vendors, guard: guard, now: time.Now}
}

// ViewerKey identifies a viewer for deduplication. Signed-in users are keyed
// by id, anonymous visitors by a hash of their address.
func ViewerKey(sess session.Session, remoteAddr string) string {
	if sess.UserID != uuid.Nil {
		return "u:" + sess.UserID.String()
	}
	sum := sha256.Sum256([]byte(remoteAddr))
	return "a:" + hex.EncodeToString(sum[:16])
}

// Record logs a view of vendorID. It reports whether a row was written.
// Owners looking at their own listing and repeats inside the guard window are skipped.
func (s *Service) Record(ctx context.Context, sess session.Session, vendorID uuid.UUID, remoteAddr string) (bool, error) {
	v, err := s.vendors.GetByID(ctx, vendorID)
	if err != nil {
		return false, err
	}
	if v == nil || !v.IsActive {
		return false, ErrVendorNotFound
	}
	if sess.OwnsVendor(vendorID) {
		return false, nil
	}

	key := ViewerKey(sess, remoteAddr)
	if s.guard != nil {
		ok, err := s.guard.Allow(ctx, vendorID, key)
		if err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("vendor_id", vendorID.String()).Msg("view guard unavailable")
		} else if !ok {
			return false, nil
		}
	}

	now := s.now().UTC()
	entry := &View{
		ID:        uuid.New(),
		VendorID:  vendorID,
		ViewerKey: key,
		ViewedOn:  time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
	if sess.UserID != uuid.Nil {
		entry.UserID = uuid.NullUUID{UUID: sess.UserID, Valid: true}
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return false, err
	}
	return true, nil
}

// Counts returns view statistics for the last days days (all time when days <= 0).
func (s *Service) Counts(ctx context.Context, sess session.Session, vendorID uuid.UUID, days int) (Counts, error) {
	v, err := s.vendors.GetByID(ctx, vendorID)
	if err != nil {
		return Counts{}, err
	}
	if v == nil {
		return Counts{}, ErrVendorNotFound
	}
	if !sess.IsAdmin() && !sess.OwnsVendor(vendorID) {
		return Counts{}, ErrNotOwner
	}
	if days > 366 {
		return Counts{}, ErrInvalidRange
	}

	var from time.Time
	if days > 0 {
		from = s.now().UTC().AddDate(0, 0, -(days - 1)).Truncate(24 * time.Hour)
	}
	return s.repo.Count(ctx, vendorID, from, time.Time{})
}
