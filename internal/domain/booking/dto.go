package booking

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SubmitRequest is the body of POST /requests.
type SubmitRequest struct {
	VendorID         uuid.UUID  `json:"vendor_id" validate:"required"`
	PackageID        *uuid.UUID `json:"package_id"`
	Dates            []string   `json:"dates" validate:"required,min=1,dive,iso_date"`
	Notes            string     `json:"notes" validate:"max=2000"`
	RequestedChanges string     `json:"requested_changes" validate:"max=2000"`
	Phone            string     `json:"phone" validate:"max=32"`
}

// RespondRequest is the body of POST /requests/{id}/respond.
type RespondRequest struct {
	Action         Action   `json:"action" validate:"required,booking_action"`
	CounterDetails string   `json:"counter_offer_details"`
	CounterPrice   *float64 `json:"counter_offer_price"`
	Version        *int     `json:"version"`
}

// Command is a validated RespondRequest.
type Command struct {
	Action         Action
	CounterDetails string
	CounterPrice   *float64
	Version        *int
}

func (r RespondRequest) Command() Command {
	return Command{
		Action:         r.Action,
		CounterDetails: r.CounterDetails,
		CounterPrice:   r.CounterPrice,
		Version:        r.Version,
	}
}

// MaxCounterPrice is the exclusive upper bound of a counter-offer price.
// counter_offer_price is NUMERIC(12, 2).
const MaxCounterPrice = 1e10

// Validate checks the command before anything is read or written.
func (c Command) Validate() error {
	switch c.Action {
	case ActionAccept, ActionDecline, ActionCounter, ActionConfirmPayment,
		ActionSettleOffline, ActionConfirmSettlement, ActionCancel, ActionExpire:
	default:
		return validationError("respond", ErrUnknownAction, map[string]string{"action": "Unknown booking action"})
	}
	if c.Action != ActionCounter {
		return nil
	}
	if strings.TrimSpace(c.CounterDetails) == "" {
		return validationError("respond", ErrEmptyCounterDetails,
			map[string]string{"counter_offer_details": "Describe the counter-offer"})
	}
	if c.CounterPrice == nil {
		return nil
	}
	price := *c.CounterPrice
	if price < 0 {
		return validationError("respond", ErrNegativePrice,
			map[string]string{"counter_offer_price": "Price must be zero or greater"})
	}
	if math.IsNaN(price) || price >= MaxCounterPrice {
		return validationError("respond", ErrPriceOutOfRange,
			map[string]string{"counter_offer_price": "Price is too large"})
	}
	if cents := price * 100; math.Abs(cents-math.Round(cents)) > 1e-6 {
		return validationError("respond", ErrPriceOutOfRange,
			map[string]string{"counter_offer_price": "Price may have at most two decimals"})
	}
	return nil
}

// ListFilter narrows request listings.
type ListFilter struct {
	Statuses []Status
}

// ItemResponse is the wire shape of one classified request.
type ItemResponse struct {
	Kind                string          `json:"kind"`
	ID                  uuid.UUID       `json:"id"`
	VendorID            uuid.UUID       `json:"vendor_id"`
	VendorName          string          `json:"vendor_name,omitempty"`
	UserID              uuid.UUID       `json:"user_id"`
	Status              Status          `json:"status"`
	Dates               []string        `json:"dates"`
	FirstDate           string          `json:"first_date,omitempty"`
	Package             *PackageSummary `json:"package,omitempty"`
	Notes               string          `json:"notes,omitempty"`
	RequestedChanges    string          `json:"requested_changes,omitempty"`
	Phone               string          `json:"phone,omitempty"`
	CounterOfferDetails string          `json:"counter_offer_details,omitempty"`
	CounterOfferPrice   *float64        `json:"counter_offer_price,omitempty"`
	SettledOffline      bool            `json:"settled_offline,omitempty"`
	Version             int             `json:"version"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ToItem renders a variant. The request's dates are kept in submission order.
func ToItem(v Variant) ItemResponse {
	r := v.Base()
	item := ItemResponse{
		Kind:             v.Kind(),
		ID:               r.ID,
		VendorID:         r.VendorID,
		VendorName:       r.VendorName,
		UserID:           r.UserID,
		Status:           r.Status,
		Dates:            append([]string{}, r.Dates...),
		FirstDate:        r.FirstDate(),
		Package:          r.Package,
		Notes:            r.Notes.String,
		RequestedChanges: r.RequestedChanges.String,
		Phone:            r.Phone.String,
		Version:          r.Version,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	switch t := v.(type) {
	case CounteredRequest:
		item.CounterOfferDetails = t.Details
		item.CounterOfferPrice = t.Price
	case PendingPaymentRequest:
		item.SettledOffline = t.SettledOffline
		item.CounterOfferDetails = r.CounterOfferDetails.String
		item.CounterOfferPrice = t.AgreedPrice
	case ConfirmedBooking:
		item.CounterOfferPrice = t.AgreedPrice
	}
	return item
}

// ToItems classifies and renders a listing.
func ToItems(reqs []*Request) []ItemResponse {
	out := make([]ItemResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, ToItem(Classify(r)))
	}
	return out
}
