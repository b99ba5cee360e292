package view

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vendora/vendora-api/internal/pkg/psql"
)

type Repository interface {
	Insert(ctx context.Context, v *View) error
	Count(ctx context.Context, vendorID uuid.UUID, from, to time.Time) (Counts, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, v *View) error {
	return r.db.QueryRowxContext(ctx, `
		INSERT INTO vendor_views (id, vendor_id, user_id, viewer_key, viewed_on)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		v.ID, v.VendorID, v.UserID, v.ViewerKey, v.ViewedOn,
	).Scan(&v.CreatedAt)
}

// Count returns total rows and distinct (viewer, day) pairs. Zero bounds are open.
func (r *repository) Count(ctx context.Context, vendorID uuid.UUID, from, to time.Time) (Counts, error) {
	qb := psql.Select("COUNT(*) AS total", "COUNT(DISTINCT (viewer_key, viewed_on)) AS unique_views").
		From("vendor_views").
		Where(sq.Eq{"vendor_id": vendorID})
	if !from.IsZero() {
		qb = qb.Where(sq.GtOrEq{"viewed_on": from})
	}
	if !to.IsZero() {
		qb = qb.Where(sq.LtOrEq{"viewed_on": to})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return Counts{}, err
	}

	var c Counts
	err = r.db.GetContext(ctx, &c, query, args...)
	return c, err
}
