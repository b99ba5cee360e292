package booking

// Variant is a request classified by where it stands in the negotiation.
// Each concrete type carries only the fields meaningful in that stage.
type Variant interface {
	Kind() string
	Base() *Request
}

// PendingRequest awaits the vendor's first answer.
type PendingRequest struct {
	*Request
}

// CounteredRequest carries the vendor's counter-offer for the viewer.
type CounteredRequest struct {
	*Request
	Details string
	Price   *float64
}

// PendingPaymentRequest was accepted and awaits payment or settlement
// confirmation. SettledOffline is true once the viewer reported paying
// the vendor directly.
type PendingPaymentRequest struct {
	*Request
	SettledOffline bool
	AgreedPrice    *float64
}

// ConfirmedBooking occupies its dates on the vendor calendar.
type ConfirmedBooking struct {
	*Request
	EventDates  []string
	AgreedPrice *float64
}

// ClosedRequest ended without a booking.
type ClosedRequest struct {
	*Request
	Outcome Status
}

func (PendingRequest) Kind() string        { return "pending_request" }
func (CounteredRequest) Kind() string      { return "countered_request" }
func (PendingPaymentRequest) Kind() string { return "pending_payment" }
func (ConfirmedBooking) Kind() string      { return "confirmed_booking" }
func (ClosedRequest) Kind() string         { return "closed_request" }

func (v PendingRequest) Base() *Request        { return v.Request }
func (v CounteredRequest) Base() *Request      { return v.Request }
func (v PendingPaymentRequest) Base() *Request { return v.Request }
func (v ConfirmedBooking) Base() *Request      { return v.Request }
func (v ClosedRequest) Base() *Request         { return v.Request }

// Classify maps r onto its variant.
func Classify(r *Request) Variant {
	switch r.Status {
	case StatusPending:
		return PendingRequest{Request: r}
	case StatusCountered:
		return CounteredRequest{
			Request: r,
			Details: r.CounterOfferDetails.String,
			Price:   ptrFloat(r.CounterOfferPrice),
		}
	case StatusAccepted, StatusSettledOffline:
		return PendingPaymentRequest{
			Request:        r,
			SettledOffline: r.Status == StatusSettledOffline,
			AgreedPrice:    ptrFloat(r.CounterOfferPrice),
		}
	case StatusConfirmed:
		return ConfirmedBooking{
			Request:     r,
			EventDates:  r.SortedDates(),
			AgreedPrice: ptrFloat(r.CounterOfferPrice),
		}
	default:
		return ClosedRequest{Request: r, Outcome: r.Status}
	}
}
