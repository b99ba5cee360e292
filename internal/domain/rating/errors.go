package rating

import "errors"

var (
	ErrVendorNotFound  = errors.New("vendor not found")
	ErrAlreadyRated    = errors.New("you have already rated this vendor")
	ErrNotEligible     = errors.New("only customers with a confirmed booking can rate")
	ErrOwnVendor       = errors.New("cannot rate your own vendor")
	ErrInvalidScore    = errors.New("rating must be between 1 and 5")
	ErrRatingNotFound  = errors.New("rating not found")
	ErrNotRatingAuthor = errors.New("only the author can remove a rating")
)
