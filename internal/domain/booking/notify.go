package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vendora/vendora-api/internal/domain/vendor"
	"github.com/vendora/vendora-api/internal/pkg/errorhandler"
	"github.com/vendora/vendora-api/internal/pkg/logger"
)

func (s *Service) requestURL(id uuid.UUID) string {
	return fmt.Sprintf("%s/requests/%s", s.frontendURL, id)
}

// background runs f detached from the request, keeping its logger.
func (s *Service) background(ctx context.Context, f func(ctx context.Context)) {
	bg := logger.WithContext(context.Background(), logger.FromContext(ctx))
	s.inflight.Add(1)
	s.async(func() {
		defer s.inflight.Done()
		f(bg)
	})
}

func (s *Service) notifySubmitted(ctx context.Context, req *Request, v *vendor.Vendor) {
	if s.publisher == nil && s.mailer == nil {
		return
	}
	item := ToItem(Classify(req))

	s.background(ctx, func(ctx context.Context) {
		if s.publisher != nil && v.OwnerID.Valid {
			if err := s.publisher.Publish(ctx, v.OwnerID.UUID, EventSubmitted, item); err != nil {
				errorhandler.LogBackgroundError(ctx, "publish_booking_submitted", err)
			}
		}
		if s.mailer != nil {
			if to := s.vendorEmail(ctx, v); to != "" {
				s.mailer.SendRequestSubmitted(to, v.Name, req.FirstDate(), s.requestURL(req.ID))
			}
		}
	})
}

// notifyUpdated tells both parties about a transition. Email goes to the
// party that did not act.
func (s *Service) notifyUpdated(ctx context.Context, req *Request, actor Actor) {
	if s.publisher == nil && s.mailer == nil {
		return
	}
	item := ToItem(Classify(req))

	s.background(ctx, func(ctx context.Context) {
		v, err := s.vendors.GetByID(ctx, req.VendorID)
		if err != nil || v == nil {
			errorhandler.LogBackgroundError(ctx, "load_vendor_for_notification", err)
			return
		}

		if s.publisher != nil {
			recipients := []uuid.UUID{req.UserID}
			if v.OwnerID.Valid {
				recipients = append(recipients, v.OwnerID.UUID)
			}
			for _, id := range recipients {
				if err := s.publisher.Publish(ctx, id, EventUpdated, item); err != nil {
					errorhandler.LogBackgroundError(ctx, "publish_booking_updated", err)
				}
			}
		}

		if s.mailer == nil {
			return
		}
		if actor == ActorVendor || actor == ActorSystem {
			u, err := s.users.GetByID(ctx, req.UserID)
			if err != nil || u == nil {
				errorhandler.LogBackgroundError(ctx, "load_viewer_for_notification", err)
				return
			}
			s.mailer.SendRequestUpdated(u.Email, u.FullName, v.Name, string(req.Status), s.requestURL(req.ID))
			return
		}
		if to := s.vendorEmail(ctx, v); to != "" {
			s.mailer.SendRequestUpdated(to, v.Name, v.Name, string(req.Status), s.requestURL(req.ID))
		}
	})
}

// vendorEmail prefers the listing's contact address over the owner's login.
func (s *Service) vendorEmail(ctx context.Context, v *vendor.Vendor) string {
	if v.Email.Valid && v.Email.String != "" {
		return v.Email.String
	}
	if !v.OwnerID.Valid {
		return ""
	}
	u, err := s.users.GetByID(ctx, v.OwnerID.UUID)
	if err != nil || u == nil {
		return ""
	}
	return u.Email
}
