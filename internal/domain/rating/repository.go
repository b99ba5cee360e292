package rating

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository handles rating database operations
type Repository interface {
	Create(ctx context.Context, r *Rating) error
	GetByID(ctx context.Context, id uuid.UUID) (*Rating, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]*Rating, error)
	Distribution(ctx context.Context, vendorID uuid.UUID) (map[int]int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create inserts a rating. A second rating by the same user is ErrAlreadyRated.
func (r *repository) Create(ctx context.Context, rt *Rating) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO vendor_ratings (id, vendor_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		rt.ID, rt.VendorID, rt.UserID, rt.Score, rt.Comment,
	).Scan(&rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyRated
		}
		return err
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Rating, error) {
	var rt Rating
	err := r.db.GetContext(ctx, &rt, `
		SELECT vr.id, vr.vendor_id, vr.user_id, vr.rating, vr.comment, vr.created_at, vr.updated_at,
		       COALESCE(u.full_name, '') AS reviewer_name
		FROM vendor_ratings vr
		LEFT JOIN users u ON u.id = vr.user_id
		WHERE vr.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// ListByVendor returns ratings newest first.
func (r *repository) ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]*Rating, error) {
	var out []*Rating
	err := r.db.SelectContext(ctx, &out, `
		SELECT vr.id, vr.vendor_id, vr.user_id, vr.rating, vr.comment, vr.created_at, vr.updated_at,
		       COALESCE(u.full_name, '') AS reviewer_name
		FROM vendor_ratings vr
		LEFT JOIN users u ON u.id = vr.user_id
		WHERE vr.vendor_id = $1
		ORDER BY vr.created_at DESC
		LIMIT $2 OFFSET $3`, vendorID, limit, offset)
	return out, err
}

// Distribution counts ratings per score.
func (r *repository) Distribution(ctx context.Context, vendorID uuid.UUID) (map[int]int, error) {
	type bucket struct {
		Rating int `db:"rating"`
		Count  int `db:"count"`
	}
	var rows []bucket
	err := r.db.SelectContext(ctx, &rows, `
		SELECT rating, COUNT(*) AS count
		FROM vendor_ratings
		WHERE vendor_id = $1
		GROUP BY rating`, vendorID)
	if err != nil {
		return nil, err
	}

	dist := make(map[int]int, 5)
	for _, b := range rows {
		dist[b.Rating] = b.Count
	}
	return dist, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM vendor_ratings WHERE id = $1`, id)
	return err
}
