package drivers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetdesk/fleetdesk/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Driver, int, error)
	Get(ctx context.Context, id int64) (Driver, error)
	GetByName(ctx context.Context, name string) (Driver, error)
	Create(ctx context.Context, d Driver) (Driver, error)
	Update(ctx context.Context, id int64, d Driver) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const driverColumns = `id, name, phone, email, license_number, created_at, updated_at`

func scanDriver(row pgx.Row) (Driver, error) {
	var d Driver
	err := row.Scan(&d.ID, &d.Name, &d.Phone, &d.Email, &d.LicenseNumber, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Driver, int, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM drivers WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		clause := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR phone ILIKE $` + strconv.Itoa(argCount) + ` OR license_number ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ASC`
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

	var out []Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Driver, error) {
	row := r.db.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, id)
	d, err := scanDriver(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Driver{}, shared.ErrNotFound
	}
	return d, err
}

func (r *repository) GetByName(ctx context.Context, name string) (Driver, error) {
	row := r.db.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers WHERE lower(name) = lower($1)`, name)
	d, err := scanDriver(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Driver{}, shared.ErrNotFound
	}
	return d, err
}

func (r *repository) Create(ctx context.Context, d Driver) (Driver, error) {
	const query = `
		INSERT INTO drivers (name, phone, email, license_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query, d.Name, d.Phone, d.Email, d.LicenseNumber, now).Scan(&d.ID)
	if err != nil {
		return Driver{}, err
	}
	d.CreatedAt = now
	d.UpdatedAt = now
	return d, nil
}

func (r *repository) Update(ctx context.Context, id int64, d Driver) error {
	const query = `
		UPDATE drivers
		SET name = $1, phone = $2, email = $3, license_number = $4, updated_at = $5
		WHERE id = $6`
	tag, err := r.db.Exec(ctx, query, d.Name, d.Phone, d.Email, d.LicenseNumber, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
