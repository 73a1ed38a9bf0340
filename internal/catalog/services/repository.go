package services

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
	List(ctx context.Context, filters shared.ListFilters) ([]Service, int, error)
	Get(ctx context.Context, id int64) (Service, error)
	GetByName(ctx context.Context, name string) (Service, error)
	Create(ctx context.Context, svc Service) (Service, error)
	Update(ctx context.Context, id int64, svc Service) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const serviceColumns = `id, name, description, base_price, status, created_at, updated_at`

func scanService(row pgx.Row) (Service, error) {
	var svc Service
	var basePrice pgtype.Numeric
	if err := row.Scan(&svc.ID, &svc.Name, &svc.Description, &basePrice, &svc.Status, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
		return Service{}, err
	}
	price, err := db.DecimalFromNumeric(basePrice)
	if err != nil {
		return Service{}, err
	}
	svc.BasePrice = price
	return svc, nil
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Service, int, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM services WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		clause := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR description ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.Status != nil {
		argCount++
		clause := ` AND status = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.Status)
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

	var out []Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, svc)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Service, error) {
	row := r.db.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
	svc, err := scanService(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Service{}, shared.ErrNotFound
	}
	return svc, err
}

func (r *repository) GetByName(ctx context.Context, name string) (Service, error) {
	row := r.db.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE lower(name) = lower($1)`, name)
	svc, err := scanService(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Service{}, shared.ErrNotFound
	}
	return svc, err
}

func (r *repository) Create(ctx context.Context, svc Service) (Service, error) {
	const query = `
		INSERT INTO services (name, description, base_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query, svc.Name, svc.Description, db.NumericFromDecimal(svc.BasePrice), svc.Status, now).Scan(&svc.ID)
	if err != nil {
		return Service{}, err
	}
	svc.CreatedAt = now
	svc.UpdatedAt = now
	return svc, nil
}

func (r *repository) Update(ctx context.Context, id int64, svc Service) error {
	const query = `
		UPDATE services
		SET name = $1, description = $2, base_price = $3, status = $4, updated_at = $5
		WHERE id = $6`
	tag, err := r.db.Exec(ctx, query, svc.Name, svc.Description, db.NumericFromDecimal(svc.BasePrice), svc.Status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
