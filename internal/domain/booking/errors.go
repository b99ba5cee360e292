package booking

import (
	"errors"
	"fmt"
)

var (
	ErrRequestNotFound     = errors.New("booking request not found")
	ErrVendorNotFound      = errors.New("vendor not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrActionNotPermitted  = errors.New("action not permitted for this party")
	ErrNotParty            = errors.New("caller is not a party to this request")
	ErrStaleVersion        = errors.New("request was modified concurrently")
	ErrEmptyCounterDetails = errors.New("counter-offer details are required")
	ErrNegativePrice       = errors.New("counter-offer price must not be negative")
	ErrPriceOutOfRange     = errors.New("counter-offer price is out of range")
	ErrNoDates             = errors.New("at least one date is required")
	ErrTooManyDates        = errors.New("too many dates requested")
	ErrInvalidDate         = errors.New("date must be formatted as YYYY-MM-DD")
	ErrPastDate            = errors.New("date is in the past")
	ErrDateUnavailable     = errors.New("date is not available")
	ErrUnknownAction       = errors.New("unknown action")
	ErrUnknownStatus       = errors.New("unknown status")
	ErrPackageMismatch     = errors.New("package does not belong to vendor")
	ErrQueueItemMissing    = errors.New("request is not in the queue")
	ErrNotExpired          = errors.New("request dates have not passed yet")
	ErrOwnVendor           = errors.New("vendors cannot request their own services")
)

// Kind classifies a failure for callers that must react differently to each.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindTransition    Kind = "transition"
	KindRemote        Kind = "remote"
	KindAuthorization Kind = "authorization"
	KindConflict      Kind = "conflict"
	KindNotFound      Kind = "not_found"
)

// Error is returned by every booking operation.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error

	// From is set on transition errors.
	From Status
	// Fields carries per-field validation messages.
	Fields map[string]string
}

func newError(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg == "" {
		return fmt.Sprintf("booking %s: %v", e.Op, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("booking %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("booking %s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether repeating the same call may succeed.
func (e *Error) Retryable() bool {
	return e.Kind == KindRemote || e.Kind == KindConflict
}

// KindOf extracts the Kind of err, or "" for foreign errors.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

// IsRetryable reports whether err is a retryable booking error.
func IsRetryable(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Retryable()
}

func validationError(op string, err error, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: err, Fields: fields}
}

func remoteError(op string, err error) *Error {
	return &Error{Kind: KindRemote, Op: op, Msg: "backing store unavailable", Err: err}
}

func notFoundError(op string, err error) *Error {
	return &Error{Kind: KindNotFound, Op: op, Err: err}
}

func authorizationError(op string, err error) *Error {
	return &Error{Kind: KindAuthorization, Op: op, Err: err}
}

func conflictError(op string) *Error {
	return &Error{Kind: KindConflict, Op: op, Msg: "refresh and try again", Err: ErrStaleVersion}
}
