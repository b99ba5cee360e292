package admin

import "errors"

var (
	ErrPermissionDenied      = errors.New("permission denied")
	ErrApplicationNotFound   = errors.New("application not found")
	ErrApplicationNotPending = errors.New("application has already been reviewed")
	ErrInvitationNotFound    = errors.New("invitation not found")
	ErrDuplicateApplication  = errors.New("an application for this email is already pending")
)
