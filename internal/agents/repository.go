package agents

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
	List(ctx context.Context, filters shared.ListFilters) ([]Agent, int, error)
	Get(ctx context.Context, id int64) (Agent, error)
	GetByName(ctx context.Context, name string) (Agent, error)
	Create(ctx context.Context, a Agent) (Agent, error)
	Update(ctx context.Context, id int64, a Agent) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const agentColumns = `id, name, email, mobile, type, status, agent_discount_percent, created_at, updated_at`

func scanAgent(row pgx.Row) (Agent, error) {
	var a Agent
	var percent pgtype.Numeric
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Mobile, &a.Type, &a.Status, &percent, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Agent{}, err
	}
	p, err := db.DecimalFromNumeric(percent)
	if err != nil {
		return Agent{}, err
	}
	a.DiscountPercent = p
	return a, nil
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Agent, int, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM agents WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		clause := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR email ILIKE $` + strconv.Itoa(argCount) + `)`
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

	var out []Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Agent, error) {
	row := r.db.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = $1`, id)
	a, err := scanAgent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, shared.ErrNotFound
	}
	return a, err
}

func (r *repository) GetByName(ctx context.Context, name string) (Agent, error) {
	row := r.db.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE lower(name) = lower($1)`, name)
	a, err := scanAgent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, shared.ErrNotFound
	}
	return a, err
}

func (r *repository) Create(ctx context.Context, a Agent) (Agent, error) {
	const query = `
		INSERT INTO agents (name, email, mobile, type, status, agent_discount_percent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query, a.Name, a.Email, a.Mobile, a.Type, a.Status, db.NumericFromDecimal(a.DiscountPercent), now).Scan(&a.ID)
	if err != nil {
		return Agent{}, err
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	return a, nil
}

func (r *repository) Update(ctx context.Context, id int64, a Agent) error {
	const query = `
		UPDATE agents
		SET name = $1, email = $2, mobile = $3, type = $4, status = $5, agent_discount_percent = $6, updated_at = $7
		WHERE id = $8`
	tag, err := r.db.Exec(ctx, query, a.Name, a.Email, a.Mobile, a.Type, a.Status, db.NumericFromDecimal(a.DiscountPercent), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM agents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
