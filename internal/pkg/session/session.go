// Package session carries the authenticated caller through service calls.
//
// A Session is built by the auth middleware for every request, refreshed when
// the client trades a refresh token at /auth/refresh and discarded at
// /auth/logout. Services receive it as an explicit argument.
package session

import (
	"context"

	"github.com/google/uuid"
)

// Role of an authenticated account.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
)

// Session identifies the caller of an operation.
type Session struct {
	UserID    uuid.UUID
	Role      Role
	VendorIDs []uuid.UUID
}

// System is used by background jobs such as request expiry.
var System = Session{Role: RoleAdmin}

func (s Session) IsZero() bool { return s.UserID == uuid.Nil && s.Role == "" }

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

// OwnsVendor reports whether the caller manages vendorID.
func (s Session) OwnsVendor(vendorID uuid.UUID) bool {
	for _, id := range s.VendorIDs {
		if id == vendorID {
			return true
		}
	}
	return false
}

type ctxKey struct{}

func WithContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request session, or a zero Session for anonymous calls.
func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(ctxKey{}).(Session)
	return s
}
