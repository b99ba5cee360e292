package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vendora/vendora-api/internal/pkg/database"
	"github.com/vendora/vendora-api/internal/pkg/psql"
)

// StatusUpdate is a version-guarded status write.
type StatusUpdate struct {
	ID              uuid.UUID
	From            Status
	To              Status
	ExpectedVersion int
	CounterDetails  *string
	CounterPrice    *float64
}

// Repository defines booking request persistence.
type Repository interface {
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	UpdateStatus(ctx context.Context, upd StatusUpdate) (*Request, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, filter ListFilter) ([]*Request, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Request, error)
	ListExpirable(ctx context.Context, today string) ([]*Request, error)
	BookedDates(ctx context.Context, vendorID uuid.UUID, from, to string) (map[string]int, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
	HasConfirmed(ctx context.Context, vendorID, userID uuid.UUID) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// requestRow is a request joined with its vendor and package.
type requestRow struct {
	Request
	VendorName        sql.NullString  `db:"vendor_name"`
	PkgName           sql.NullString  `db:"pkg_name"`
	PkgPricingType    sql.NullString  `db:"pkg_pricing_type"`
	PkgPrice          sql.NullFloat64 `db:"pkg_price"`
	PkgPricePerPerson sql.NullFloat64 `db:"pkg_price_per_person"`
}

func (row *requestRow) toRequest() *Request {
	r := row.Request
	r.VendorName = row.VendorName.String
	if r.PackageID.Valid && row.PkgName.Valid {
		r.Package = &PackageSummary{
			ID:             r.PackageID.UUID,
			Name:           row.PkgName.String,
			PricingType:    row.PkgPricingType.String,
			Price:          ptrFloat(row.PkgPrice),
			PricePerPerson: ptrFloat(row.PkgPricePerPerson),
		}
	}
	return &r
}

func selectRequests() squirrel.SelectBuilder {
	return psql.Select(
		"br.id", "br.vendor_id", "br.user_id", "br.package_id", "br.notes", "br.requested_changes",
		"br.phone", "br.status", "br.counter_offer_details", "br.counter_offer_price", "br.version",
		"br.created_at", "br.updated_at",
		"v.name AS vendor_name",
		"p.name AS pkg_name", "p.pricing_type AS pkg_pricing_type",
		"p.price AS pkg_price", "p.price_per_person AS pkg_price_per_person",
	).
		From("booking_requests br").
		LeftJoin("vendors v ON v.id = br.vendor_id").
		LeftJoin("vendor_packages p ON p.id = br.package_id")
}

// Create inserts the request and its dates in one transaction.
func (r *repository) Create(ctx context.Context, req *Request) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO booking_requests (id, vendor_id, user_id, package_id, notes, requested_changes, phone, status, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)
			RETURNING version, created_at, updated_at`,
			req.ID, req.VendorID, req.UserID, req.PackageID, req.Notes, req.RequestedChanges, req.Phone, req.Status,
		).Scan(&req.Version, &req.CreatedAt, &req.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert booking request: %w", err)
		}

		if len(req.Dates) == 0 {
			return nil
		}
		ins := psql.Insert("booking_request_dates").Columns("request_id", "event_date")
		for _, d := range req.Dates {
			ins = ins.Values(req.ID, d)
		}
		query, args, err := ins.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert booking request dates: %w", err)
		}
		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	query, args, err := selectRequests().Where(squirrel.Eq{"br.id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	var row requestRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	req := row.toRequest()
	if err := r.attachDates(ctx, []*Request{req}); err != nil {
		return nil, err
	}
	return req, nil
}

// UpdateStatus writes the new status only if the row still carries the
// expected version and status. Zero affected rows is ErrStaleVersion.
func (r *repository) UpdateStatus(ctx context.Context, upd StatusUpdate) (*Request, error) {
	q := psql.Update("booking_requests").
		Set("status", upd.To).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": upd.ID, "version": upd.ExpectedVersion, "status": upd.From})
	if upd.CounterDetails != nil {
		q = q.Set("counter_offer_details", *upd.CounterDetails)
	}
	if upd.CounterPrice != nil {
		q = q.Set("counter_offer_price", *upd.CounterPrice)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrStaleVersion
	}
	return r.GetByID(ctx, upd.ID)
}

func (r *repository) list(ctx context.Context, where squirrel.Sqlizer, filter ListFilter) ([]*Request, error) {
	q := selectRequests().Where(where).OrderBy("br.created_at DESC")
	if len(filter.Statuses) > 0 {
		q = q.Where(squirrel.Eq{"br.status": filter.Statuses})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []requestRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	out := make([]*Request, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toRequest())
	}
	if err := r.attachDates(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) ListByVendor(ctx context.Context, vendorID uuid.UUID, filter ListFilter) ([]*Request, error) {
	return r.list(ctx, squirrel.Eq{"br.vendor_id": vendorID}, filter)
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Request, error) {
	return r.list(ctx, squirrel.Eq{"br.user_id": userID}, filter)
}

// ListExpirable returns open requests whose first date is before today.
func (r *repository) ListExpirable(ctx context.Context, today string) ([]*Request, error) {
	where := squirrel.And{
		squirrel.Eq{"br.status": []Status{StatusPending, StatusCountered}},
		squirrel.Expr(`(SELECT MIN(d.event_date) FROM booking_request_dates d WHERE d.request_id = br.id) < ?::date`, today),
	}
	return r.list(ctx, where, ListFilter{})
}

// attachDates loads dates for reqs in one query, keeping insertion order.
func (r *repository) attachDates(ctx context.Context, reqs []*Request) error {
	if len(reqs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(reqs))
	byID := make(map[uuid.UUID]*Request, len(reqs))
	for _, req := range reqs {
		ids = append(ids, req.ID.String())
		byID[req.ID] = req
		req.Dates = []string{}
	}

	rows, err := r.db.QueryxContext(ctx, `
		SELECT request_id, event_date
		FROM booking_request_dates
		WHERE request_id = ANY($1::uuid[])
		ORDER BY id`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load booking dates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var d time.Time
		if err := rows.Scan(&id, &d); err != nil {
			return err
		}
		if req, ok := byID[id]; ok {
			req.Dates = append(req.Dates, d.Format(DateLayout))
		}
	}
	return rows.Err()
}

// BookedDates counts occupying requests per date in [from, to].
func (r *repository) BookedDates(ctx context.Context, vendorID uuid.UUID, from, to string) (map[string]int, error) {
	occupying := make([]Status, 0, 2)
	for _, s := range AllStatuses {
		if s.OccupiesCalendar() {
			occupying = append(occupying, s)
		}
	}

	query, args, err := psql.Select("d.event_date", "COUNT(*)").
		From("booking_request_dates d").
		Join("booking_requests br ON br.id = d.request_id").
		Where(squirrel.Eq{"br.vendor_id": vendorID, "br.status": occupying}).
		Where(squirrel.Expr("d.event_date BETWEEN ?::date AND ?::date", from, to)).
		GroupBy("d.event_date").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var d time.Time
		var n int
		if err := rows.Scan(&d, &n); err != nil {
			return nil, err
		}
		out[d.Format(DateLayout)] = n
	}
	return out, rows.Err()
}

func (r *repository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT status, COUNT(*) FROM booking_requests GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[Status]int, len(AllStatuses))
	for _, s := range AllStatuses {
		out[s] = 0
	}
	for rows.Next() {
		var s Status
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}

// HasConfirmed reports whether userID holds a confirmed request with vendorID.
func (r *repository) HasConfirmed(ctx context.Context, vendorID, userID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok, `
		SELECT EXISTS(
			SELECT 1 FROM booking_requests
			WHERE vendor_id = $1 AND user_id = $2 AND status = $3
		)`, vendorID, userID, StatusConfirmed)
	return ok, err
}
