package availability

import "errors"

var (
	ErrVendorNotFound  = errors.New("vendor not found")
	ErrNotVendorOwner  = errors.New("only the vendor owner can change availability")
	ErrInvalidMonth    = errors.New("month must be formatted as YYYY-MM")
	ErrInvalidDate     = errors.New("date must be formatted as YYYY-MM-DD")
	ErrAlreadyBlocked  = errors.New("date is already blocked")
	ErrBlockedNotFound = errors.New("blocked date not found")
	ErrInvalidWeekday  = errors.New("unknown weekday")
)
