package admin

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vendora/vendora-api/internal/pkg/psql"
)

// Repository defines admin data access
type Repository interface {
	// Onboarding applications
	CreateApplication(ctx context.Context, a *Application) error
	GetApplication(ctx context.Context, id uuid.UUID) (*Application, error)
	ListApplications(ctx context.Context, status ApplicationStatus, limit, offset int) ([]*Application, int, error)
	ReviewApplication(ctx context.Context, a *Application) error
	CountApplications(ctx context.Context, status ApplicationStatus) (int, error)

	// Invitations
	CreateInvitation(ctx context.Context, inv *Invitation) error
	GetInvitationByToken(ctx context.Context, token string) (*Invitation, error)
	AcceptInvitation(ctx context.Context, id, userID uuid.UUID) error
	ReleaseInvitation(ctx context.Context, id uuid.UUID) error

	// Audit logs
	CreateAuditLog(ctx context.Context, log *AuditLog) error
	ListAuditLogs(ctx context.Context, filter AuditFilter) ([]*AuditLog, int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates admin repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Applications

func (r *repository) CreateApplication(ctx context.Context, a *Application) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO vendor_onboarding_applications
			(id, business_name, contact_name, email, phone, category, city, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		a.ID, a.BusinessName, a.ContactName, a.Email, a.Phone, a.Category, a.City, a.Description, a.Status,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateApplication
		}
		return err
	}
	return nil
}

func (r *repository) GetApplication(ctx context.Context, id uuid.UUID) (*Application, error) {
	var a Application
	err := r.db.GetContext(ctx, &a, `SELECT * FROM vendor_onboarding_applications WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) ListApplications(ctx context.Context, status ApplicationStatus, limit, offset int) ([]*Application, int, error) {
	where := squirrel.And{}
	if status != "" {
		where = append(where, squirrel.Eq{"status": status})
	}

	query, args, err := psql.Select("*").
		From("vendor_onboarding_applications").
		Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	var apps []*Application
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("vendor_onboarding_applications").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// ReviewApplication stores the review outcome of a pending application.
func (r *repository) ReviewApplication(ctx context.Context, a *Application) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE vendor_onboarding_applications
		SET status = $2, rejection_reason = $3, vendor_id = $4, reviewed_by = $5, reviewed_at = $6, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`,
		a.ID, a.Status, a.RejectionReason, a.VendorID, a.ReviewedBy, a.ReviewedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrApplicationNotPending
	}
	return nil
}

func (r *repository) CountApplications(ctx context.Context, status ApplicationStatus) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM vendor_onboarding_applications WHERE status = $1`, status)
	return n, err
}

// Invitations

func (r *repository) CreateInvitation(ctx context.Context, inv *Invitation) error {
	return r.db.QueryRowxContext(ctx, `
		INSERT INTO vendor_invitations (id, token, vendor_id, application_id, email, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		inv.ID, inv.Token, inv.VendorID, inv.ApplicationID, inv.Email, inv.ExpiresAt,
	).Scan(&inv.CreatedAt)
}

func (r *repository) GetInvitationByToken(ctx context.Context, token string) (*Invitation, error) {
	var inv Invitation
	err := r.db.GetContext(ctx, &inv, `
		SELECT i.*, v.name AS vendor_name
		FROM vendor_invitations i
		JOIN vendors v ON v.id = i.vendor_id
		WHERE i.token = $1`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// AcceptInvitation claims an unused, unexpired invitation for userID.
func (r *repository) AcceptInvitation(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE vendor_invitations
		SET accepted_by = $2, accepted_at = NOW()
		WHERE id = $1 AND accepted_by IS NULL AND expires_at > NOW()`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvitationNotFound
	}
	return nil
}

// ReleaseInvitation undoes AcceptInvitation.
func (r *repository) ReleaseInvitation(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE vendor_invitations SET accepted_by = NULL, accepted_at = NULL WHERE id = $1`, id)
	return err
}

// Audit logs

func (r *repository) CreateAuditLog(ctx context.Context, log *AuditLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_audit_logs (id, admin_id, action, entity_type, entity_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		log.ID, log.AdminID, log.Action, log.EntityType, log.EntityID, log.Reason, log.CreatedAt,
	)
	return err
}

func (r *repository) ListAuditLogs(ctx context.Context, filter AuditFilter) ([]*AuditLog, int, error) {
	where := squirrel.And{}
	if filter.Action != "" {
		where = append(where, squirrel.Eq{"action": filter.Action})
	}
	if filter.EntityType != "" {
		where = append(where, squirrel.Eq{"entity_type": filter.EntityType})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query, args, err := psql.Select("*").
		From("admin_audit_logs").
		Where(where).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	var logs []*AuditLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("admin_audit_logs").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
