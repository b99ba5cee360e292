package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vendora/vendora-api/internal/pkg/psql"
)

// Repository defines availability persistence.
type Repository interface {
	GetSettings(ctx context.Context, vendorID uuid.UUID) (*Settings, error)
	UpsertSettings(ctx context.Context, s *Settings) error
	ListBlocked(ctx context.Context, vendorID uuid.UUID, from, to string) ([]*BlockedDate, error)
	AddBlocked(ctx context.Context, b *BlockedDate) error
	RemoveBlocked(ctx context.Context, vendorID uuid.UUID, date string) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// GetSettings returns nil when the vendor never saved settings.
func (r *repository) GetSettings(ctx context.Context, vendorID uuid.UUID) (*Settings, error) {
	var s Settings
	err := r.db.GetContext(ctx, &s, `
		SELECT vendor_id, days_off, slots_per_day, updated_at
		FROM vendor_availability
		WHERE vendor_id = $1`, vendorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) UpsertSettings(ctx context.Context, s *Settings) error {
	return r.db.QueryRowxContext(ctx, `
		INSERT INTO vendor_availability (vendor_id, days_off, slots_per_day, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (vendor_id) DO UPDATE
		SET days_off = EXCLUDED.days_off, slots_per_day = EXCLUDED.slots_per_day, updated_at = NOW()
		RETURNING updated_at`,
		s.VendorID, s.DaysOff, s.SlotsPerDay,
	).Scan(&s.UpdatedAt)
}

// ListBlocked returns blocked dates in [from, to]. Empty bounds are open.
func (r *repository) ListBlocked(ctx context.Context, vendorID uuid.UUID, from, to string) ([]*BlockedDate, error) {
	q := psql.Select("id", "vendor_id", "blocked_date", "reason", "created_at").
		From("vendor_blocked_dates").
		Where(squirrel.Eq{"vendor_id": vendorID}).
		OrderBy("blocked_date")
	if from != "" {
		q = q.Where(squirrel.GtOrEq{"blocked_date": from})
	}
	if to != "" {
		q = q.Where(squirrel.LtOrEq{"blocked_date": to})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var out []*BlockedDate
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list blocked dates: %w", err)
	}
	return out, nil
}

func (r *repository) AddBlocked(ctx context.Context, b *BlockedDate) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO vendor_blocked_dates (id, vendor_id, blocked_date, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		b.ID, b.VendorID, b.ISODate(), b.Reason,
	).Scan(&b.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyBlocked
		}
		return err
	}
	return nil
}

func (r *repository) RemoveBlocked(ctx context.Context, vendorID uuid.UUID, date string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM vendor_blocked_dates WHERE vendor_id = $1 AND blocked_date = $2`, vendorID, date)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBlockedNotFound
	}
	return nil
}
