package admin

import (
	"time"
)

// ApplyRequest for POST /onboarding/applications
type ApplyRequest struct {
	BusinessName string `json:"business_name" validate:"required,min=2,max=200"`
	ContactName  string `json:"contact_name" validate:"required,min=2,max=200"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"omitempty,max=40"`
	Category     string `json:"category" validate:"required,max=60"`
	City         string `json:"city" validate:"required,max=100"`
	Description  string `json:"description" validate:"max=4000"`
}

// RejectRequest for POST /admin/applications/{id}/reject
type RejectRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=1000"`
}

type ApplicationResponse struct {
	ID              string  `json:"id"`
	BusinessName    string  `json:"business_name"`
	ContactName     string  `json:"contact_name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone,omitempty"`
	Category        string  `json:"category"`
	City            string  `json:"city"`
	Description     string  `json:"description,omitempty"`
	Status          string  `json:"status"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
	VendorID        *string `json:"vendor_id,omitempty"`
	ReviewedAt      *string `json:"reviewed_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

func ApplicationResponseFrom(a *Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:              a.ID.String(),
		BusinessName:    a.BusinessName,
		ContactName:     a.ContactName,
		Email:           a.Email,
		Phone:           a.Phone.String,
		Category:        a.Category,
		City:            a.City,
		Description:     a.Description.String,
		Status:          string(a.Status),
		RejectionReason: a.RejectionReason.String,
		CreatedAt:       a.CreatedAt.Format(time.RFC3339),
	}
	if a.VendorID.Valid {
		s := a.VendorID.UUID.String()
		resp.VendorID = &s
	}
	if a.ReviewedAt.Valid {
		s := a.ReviewedAt.Time.Format(time.RFC3339)
		resp.ReviewedAt = &s
	}
	return resp
}

// ApprovalResponse is returned when an application is approved.
type ApprovalResponse struct {
	Application ApplicationResponse `json:"application"`
	VendorID    string              `json:"vendor_id"`
	InviteURL   string              `json:"invite_url"`
	ExpiresAt   string              `json:"expires_at"`
}

// InvitationResponse is the public view of an invitation token.
type InvitationResponse struct {
	VendorID   string `json:"vendor_id"`
	VendorName string `json:"vendor_name"`
	Email      string `json:"email"`
	ExpiresAt  string `json:"expires_at"`
	Usable     bool   `json:"usable"`
}

type ExpireResponse struct {
	Expired int `json:"expired"`
}
