package view

import "errors"

var (
	ErrVendorNotFound = errors.New("vendor not found")
	ErrNotOwner       = errors.New("only the vendor owner can see view statistics")
	ErrInvalidRange   = errors.New("invalid date range")
)
