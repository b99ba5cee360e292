package admin

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus of a vendor onboarding application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Application is a business asking to be listed as a vendor.
type Application struct {
	ID              uuid.UUID         `db:"id"`
	BusinessName    string            `db:"business_name"`
	ContactName     string            `db:"contact_name"`
	Email           string            `db:"email"`
	Phone           sql.NullString    `db:"phone"`
	Category        string            `db:"category"`
	City            string            `db:"city"`
	Description     sql.NullString    `db:"description"`
	Status          ApplicationStatus `db:"status"`
	RejectionReason sql.NullString    `db:"rejection_reason"`
	VendorID        uuid.NullUUID     `db:"vendor_id"`
	ReviewedBy      uuid.NullUUID     `db:"reviewed_by"`
	ReviewedAt      sql.NullTime      `db:"reviewed_at"`
	CreatedAt       time.Time         `db:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at"`
}

// Invitation lets the applicant claim the vendor created on approval.
type Invitation struct {
	ID            uuid.UUID     `db:"id"`
	Token         string        `db:"token"`
	VendorID      uuid.UUID     `db:"vendor_id"`
	ApplicationID uuid.NullUUID `db:"application_id"`
	Email         string        `db:"email"`
	ExpiresAt     time.Time     `db:"expires_at"`
	AcceptedBy    uuid.NullUUID `db:"accepted_by"`
	AcceptedAt    sql.NullTime  `db:"accepted_at"`
	CreatedAt     time.Time     `db:"created_at"`

	VendorName string `db:"vendor_name"`
}

// Usable reports whether the invitation can still be redeemed at now.
func (i *Invitation) Usable(now time.Time) bool {
	return !i.AcceptedBy.Valid && now.Before(i.ExpiresAt)
}

// AuditLog records an admin action.
type AuditLog struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	AdminID    uuid.NullUUID  `db:"admin_id" json:"admin_id,omitempty"`
	Action     string         `db:"action" json:"action"`
	EntityType string         `db:"entity_type" json:"entity_type"`
	EntityID   uuid.NullUUID  `db:"entity_id" json:"entity_id,omitempty"`
	Reason     sql.NullString `db:"reason" json:"reason,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// AuditFilter narrows ListAuditLogs.
type AuditFilter struct {
	Action     string
	EntityType string
	Limit      int
	Offset     int
}

// Stats is the admin dashboard summary.
type Stats struct {
	Requests            map[string]int `json:"requests"`
	Users               map[string]int `json:"users"`
	Vendors             int            `json:"vendors"`
	PendingApplications int            `json:"pending_applications"`
}
