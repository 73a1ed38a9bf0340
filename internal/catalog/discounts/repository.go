package discounts

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetdesk/fleetdesk/internal/platform/db"
	"github.com/fleetdesk/fleetdesk/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Discount, int, error)
	Get(ctx context.Context, id int64) (Discount, error)
	ActiveBaseDiscount(ctx context.Context) (Discount, error)
	Create(ctx context.Context, d Discount) (Discount, error)
	Update(ctx context.Context, id int64, d Discount) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const discountColumns = `id, code, discount_type, percent, amount, is_base_discount, is_active, valid_from, valid_to, created_at, updated_at`

func scanDiscount(row pgx.Row) (Discount, error) {
	var d Discount
	var percent, amount pgtype.Numeric
	var validFrom, validTo pgtype.Date
	err := row.Scan(&d.ID, &d.Code, &d.DiscountType, &percent, &amount, &d.IsBaseDiscount, &d.IsActive, &validFrom, &validTo, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return Discount{}, err
	}
	if d.Percent, err = db.DecimalFromNumeric(percent); err != nil {
		return Discount{}, err
	}
	if d.Amount, err = db.DecimalFromNumeric(amount); err != nil {
		return Discount{}, err
	}
	if validFrom.Valid {
		t := validFrom.Time
		d.ValidFrom = &t
	}
	if validTo.Valid {
		t := validTo.Time
		d.ValidTo = &t
	}
	return d, nil
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Discount, int, error) {
	query := `SELECT ` + discountColumns + ` FROM discounts WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM discounts WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		clause := ` AND code ILIKE $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY id ASC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, filters.Offset())
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Discount
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Discount, error) {
	row := r.db.QueryRow(ctx, `SELECT `+discountColumns+` FROM discounts WHERE id = $1`, id)
	d, err := scanDiscount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Discount{}, shared.ErrNotFound
	}
	return d, err
}

// ActiveBaseDiscount returns the active base discount. When several rows
// qualify the lowest id wins, keeping pricing deterministic.
func (r *repository) ActiveBaseDiscount(ctx context.Context) (Discount, error) {
	const query = `
		SELECT ` + discountColumns + `
		FROM discounts
		WHERE is_base_discount = TRUE AND is_active = TRUE
		ORDER BY id ASC
		LIMIT 1`
	d, err := scanDiscount(r.db.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return Discount{}, shared.ErrNotFound
	}
	return d, err
}

func (r *repository) Create(ctx context.Context, d Discount) (Discount, error) {
	const query = `
		INSERT INTO discounts (code, discount_type, percent, amount, is_base_discount, is_active, valid_from, valid_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query,
		d.Code, d.DiscountType,
		db.NumericFromDecimal(d.Percent), db.NumericFromDecimal(d.Amount),
		d.IsBaseDiscount, d.IsActive,
		dateParam(d.ValidFrom), dateParam(d.ValidTo), now,
	).Scan(&d.ID)
	if err != nil {
		return Discount{}, err
	}
	d.CreatedAt = now
	d.UpdatedAt = now
	return d, nil
}

func (r *repository) Update(ctx context.Context, id int64, d Discount) error {
	const query = `
		UPDATE discounts
		SET code = $1, discount_type = $2, percent = $3, amount = $4,
		    is_base_discount = $5, is_active = $6, valid_from = $7, valid_to = $8, updated_at = $9
		WHERE id = $10`
	tag, err := r.db.Exec(ctx, query,
		d.Code, d.DiscountType,
		db.NumericFromDecimal(d.Percent), db.NumericFromDecimal(d.Amount),
		d.IsBaseDiscount, d.IsActive,
		dateParam(d.ValidFrom), dateParam(d.ValidTo), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM discounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func dateParam(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}
