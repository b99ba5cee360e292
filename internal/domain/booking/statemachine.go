package booking

import "fmt"

// Status of a booking request. The set is closed; ParseStatus rejects anything else.
type Status string

const (
	StatusPending        Status = "pending"
	StatusAccepted       Status = "accepted"
	StatusDeclined       Status = "declined"
	StatusCountered      Status = "countered"
	StatusConfirmed      Status = "confirmed"
	StatusSettledOffline Status = "settled_offline"
	StatusCancelled      Status = "cancelled"
	StatusExpired        Status = "expired"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{
	StatusPending,
	StatusAccepted,
	StatusDeclined,
	StatusCountered,
	StatusConfirmed,
	StatusSettledOffline,
	StatusCancelled,
	StatusExpired,
}

func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown booking status %q", s)
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// IsTerminal reports whether no further transition may leave s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDeclined, StatusConfirmed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// OccupiesCalendar reports whether a request in s marks its dates booked.
func (s Status) OccupiesCalendar() bool {
	return s == StatusConfirmed || s == StatusSettledOffline
}

// Actor is the party applying an action.
type Actor string

const (
	ActorVendor Actor = "vendor"
	ActorViewer Actor = "viewer"
	ActorSystem Actor = "system"
)

// Action is an operation on a booking request.
type Action string

const (
	ActionAccept            Action = "accept"
	ActionDecline           Action = "decline"
	ActionCounter           Action = "counter"
	ActionConfirmPayment    Action = "confirm_payment"
	ActionSettleOffline     Action = "settle_offline"
	ActionConfirmSettlement Action = "confirm_settlement"
	ActionCancel            Action = "cancel"
	ActionExpire            Action = "expire"
)

type edge struct {
	from   Status
	actor  Actor
	action Action
}

var transitions = map[edge]Status{
	{StatusPending, ActorVendor, ActionAccept}:                   StatusAccepted,
	{StatusPending, ActorVendor, ActionDecline}:                  StatusDeclined,
	{StatusPending, ActorVendor, ActionCounter}:                  StatusCountered,
	{StatusAccepted, ActorVendor, ActionConfirmPayment}:          StatusConfirmed,
	{StatusAccepted, ActorViewer, ActionSettleOffline}:           StatusSettledOffline,
	{StatusSettledOffline, ActorVendor, ActionConfirmSettlement}: StatusConfirmed,
	{StatusCountered, ActorViewer, ActionAccept}:                 StatusAccepted,
	{StatusCountered, ActorViewer, ActionSettleOffline}:          StatusSettledOffline,
	{StatusPending, ActorViewer, ActionCancel}:                   StatusCancelled,
	{StatusCountered, ActorViewer, ActionCancel}:                 StatusCancelled,
	{StatusAccepted, ActorViewer, ActionCancel}:                  StatusCancelled,
	{StatusPending, ActorSystem, ActionExpire}:                   StatusExpired,
	{StatusCountered, ActorSystem, ActionExpire}:                 StatusExpired,
}

// Target returns the status an action leads to for actor, independent of
// the starting state. ok is false when actor may never apply action.
func Target(actor Actor, action Action) (Status, bool) {
	for e, to := range transitions {
		if e.actor == actor && e.action == action {
			return to, true
		}
	}
	return "", false
}

// Allowed reports whether actor may ever apply action.
func Allowed(actor Actor, action Action) bool {
	_, ok := Target(actor, action)
	return ok
}

// Decision is the outcome of Next.
type Decision struct {
	From Status
	To   Status
	Noop bool
}

// Next resolves an action against the current status.
//
// Applying an action whose target equals the current status is a no-op,
// so a doubled submit never applies twice. Every other pair outside the
// table, including any action on a terminal status, is a transition error.
func Next(current Status, actor Actor, action Action) (Decision, error) {
	if !current.Valid() {
		return Decision{}, newError(KindValidation, "next", fmt.Sprintf("unknown status %q", current), ErrUnknownStatus)
	}

	target, ok := Target(actor, action)
	if !ok {
		return Decision{}, newError(KindAuthorization, "next",
			fmt.Sprintf("%s may not %s", actor, action), ErrActionNotPermitted)
	}
	if target == current {
		return Decision{From: current, To: current, Noop: true}, nil
	}

	to, ok := transitions[edge{current, actor, action}]
	if !ok {
		return Decision{}, &Error{
			Kind: KindTransition,
			Op:   "next",
			Msg:  fmt.Sprintf("cannot %s a request that is %s", action, current),
			Err:  ErrInvalidTransition,
			From: current,
		}
	}
	return Decision{From: current, To: to}, nil
}
