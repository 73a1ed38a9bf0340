package billing

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk/internal/platform/db"
	"github.com/fleetdesk/fleetdesk/internal/shared"
)

// Repository is the persistence surface of the billing engine. The fake in
// the tests implements the same interface.
type Repository interface {
	GetJob(ctx context.Context, jobID int64) (JobInfo, error)
	ServiceBasePrice(ctx context.Context, serviceID int64) (decimal.Decimal, error)
	AgentDiscountPercent(ctx context.Context, agentID int64) (decimal.Decimal, error)
	ActiveBaseDiscountPercent(ctx context.Context) (decimal.Decimal, error)
	SaveJobPricing(ctx context.Context, jobID int64, snap PricingSnapshot) error
	CreateInvoice(ctx context.Context, b Billing, snap PricingSnapshot) (Billing, error)
	List(ctx context.Context, filters shared.ListFilters) ([]Billing, int, error)
	Get(ctx context.Context, id int64) (Billing, error)
	UpdatePayment(ctx context.Context, id int64, status string, paymentDate *time.Time, method string) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) GetJob(ctx context.Context, jobID int64) (JobInfo, error) {
	const query = `
		SELECT id, customer_name, customer_email, service_id, agent_id, invoice_number
		FROM jobs WHERE id = $1`
	var info JobInfo
	var serviceID, agentID pgtype.Int8
	err := r.db.QueryRow(ctx, query, jobID).Scan(
		&info.ID, &info.CustomerName, &info.CustomerEmail, &serviceID, &agentID, &info.InvoiceNumber,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return JobInfo{}, shared.ErrNotFound
	}
	if err != nil {
		return JobInfo{}, err
	}
	if serviceID.Valid {
		v := serviceID.Int64
		info.ServiceID = &v
	}
	if agentID.Valid {
		v := agentID.Int64
		info.AgentID = &v
	}
	return info, nil
}

func (r *repository) ServiceBasePrice(ctx context.Context, serviceID int64) (decimal.Decimal, error) {
	var price pgtype.Numeric
	err := r.db.QueryRow(ctx, `SELECT base_price FROM services WHERE id = $1`, serviceID).Scan(&price)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, shared.ErrNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return db.DecimalFromNumeric(price)
}

func (r *repository) AgentDiscountPercent(ctx context.Context, agentID int64) (decimal.Decimal, error) {
	var percent pgtype.Numeric
	err := r.db.QueryRow(ctx, `SELECT agent_discount_percent FROM agents WHERE id = $1`, agentID).Scan(&percent)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, shared.ErrNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return db.DecimalFromNumeric(percent)
}

// ActiveBaseDiscountPercent picks the active base discount, lowest id first.
func (r *repository) ActiveBaseDiscountPercent(ctx context.Context) (decimal.Decimal, error) {
	const query = `
		SELECT percent FROM discounts
		WHERE is_base_discount = TRUE AND is_active = TRUE
		ORDER BY id ASC
		LIMIT 1`
	var percent pgtype.Numeric
	err := r.db.QueryRow(ctx, query).Scan(&percent)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, shared.ErrNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return db.DecimalFromNumeric(percent)
}

// SaveJobPricing writes the cached pricing snapshot in one transaction.
func (r *repository) SaveJobPricing(ctx context.Context, jobID int64, snap PricingSnapshot) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		const query = `
			UPDATE jobs SET
				base_price = $1, base_discount_percent = $2, agent_discount_percent = $3,
				additional_discount_percent = $4, additional_charges = $5, final_price = $6,
				updated_at = $7
			WHERE id = $8`
		tag, err := tx.Exec(ctx, query,
			db.NumericFromDecimal(snap.BasePrice),
			db.NumericFromDecimal(snap.BaseDiscountPercent),
			db.NumericFromDecimal(snap.AgentDiscountPercent),
			db.NumericFromDecimal(snap.AdditionalDiscountPercent),
			db.NumericFromDecimal(snap.AdditionalCharges),
			db.NumericFromDecimal(snap.FinalPrice),
			time.Now().UTC(), jobID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CreateInvoice inserts the billing row and, in the same transaction, stamps
// the job's invoice number and overwrites its cached pricing snapshot with
// the one the invoice was built from. A unique violation on invoice_number
// surfaces unwrapped so the engine can regenerate and retry.
func (r *repository) CreateInvoice(ctx context.Context, b Billing, snap PricingSnapshot) (Billing, error) {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		const insert = `
			INSERT INTO billings (
				job_id, invoice_number, invoice_date, due_date, base_price,
				base_discount_amount, agent_discount_amount, additional_discount_amount,
				additional_charges, subtotal, tax_amount, total_amount,
				payment_status, payment_method, notes, terms_conditions, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
			RETURNING id`
		now := time.Now().UTC()
		if err := tx.QueryRow(ctx, insert,
			b.JobID, b.InvoiceNumber, b.InvoiceDate, b.DueDate,
			db.NumericFromDecimal(b.BasePrice),
			db.NumericFromDecimal(b.BaseDiscountAmount),
			db.NumericFromDecimal(b.AgentDiscountAmount),
			db.NumericFromDecimal(b.AdditionalDiscountAmount),
			db.NumericFromDecimal(b.AdditionalCharges),
			db.NumericFromDecimal(b.Subtotal),
			db.NumericFromDecimal(b.TaxAmount),
			db.NumericFromDecimal(b.TotalAmount),
			b.PaymentStatus, b.PaymentMethod, b.Notes, b.TermsConditions, now,
		).Scan(&b.ID); err != nil {
			return err
		}
		b.CreatedAt = now
		b.UpdatedAt = now

		const stamp = `
			UPDATE jobs SET
				invoice_number = $1,
				base_price = $2, base_discount_percent = $3, agent_discount_percent = $4,
				additional_discount_percent = $5, additional_charges = $6, final_price = $7,
				updated_at = $8
			WHERE id = $9`
		tag, err := tx.Exec(ctx, stamp,
			b.InvoiceNumber,
			db.NumericFromDecimal(snap.BasePrice),
			db.NumericFromDecimal(snap.BaseDiscountPercent),
			db.NumericFromDecimal(snap.AgentDiscountPercent),
			db.NumericFromDecimal(snap.AdditionalDiscountPercent),
			db.NumericFromDecimal(snap.AdditionalCharges),
			db.NumericFromDecimal(snap.FinalPrice),
			now, b.JobID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return Billing{}, err
	}
	return b, nil
}

const billingColumns = `id, job_id, invoice_number, invoice_date, due_date, base_price,
	base_discount_amount, agent_discount_amount, additional_discount_amount,
	additional_charges, subtotal, tax_amount, total_amount,
	payment_status, payment_date, payment_method, notes, terms_conditions, created_at, updated_at`

func scanBilling(row pgx.Row) (Billing, error) {
	var b Billing
	var basePrice, baseAmt, agentAmt, addlAmt, charges, subtotal, tax, total pgtype.Numeric
	var paymentDate pgtype.Timestamptz
	err := row.Scan(
		&b.ID, &b.JobID, &b.InvoiceNumber, &b.InvoiceDate, &b.DueDate, &basePrice,
		&baseAmt, &agentAmt, &addlAmt,
		&charges, &subtotal, &tax, &total,
		&b.PaymentStatus, &paymentDate, &b.PaymentMethod, &b.Notes, &b.TermsConditions, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return Billing{}, err
	}
	if b.BasePrice, err = db.DecimalFromNumeric(basePrice); err != nil {
		return Billing{}, err
	}
	if b.BaseDiscountAmount, err = db.DecimalFromNumeric(baseAmt); err != nil {
		return Billing{}, err
	}
	if b.AgentDiscountAmount, err = db.DecimalFromNumeric(agentAmt); err != nil {
		return Billing{}, err
	}
	if b.AdditionalDiscountAmount, err = db.DecimalFromNumeric(addlAmt); err != nil {
		return Billing{}, err
	}
	if b.AdditionalCharges, err = db.DecimalFromNumeric(charges); err != nil {
		return Billing{}, err
	}
	if b.Subtotal, err = db.DecimalFromNumeric(subtotal); err != nil {
		return Billing{}, err
	}
	if b.TaxAmount, err = db.DecimalFromNumeric(tax); err != nil {
		return Billing{}, err
	}
	if b.TotalAmount, err = db.DecimalFromNumeric(total); err != nil {
		return Billing{}, err
	}
	if paymentDate.Valid {
		t := paymentDate.Time
		b.PaymentDate = &t
	}
	return b, nil
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Billing, int, error) {
	query := `SELECT ` + billingColumns + ` FROM billings WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM billings WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		clause := ` AND invoice_number ILIKE $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.Status != nil {
		argCount++
		clause := ` AND payment_status = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.Status)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY id DESC`
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

	var out []Billing
	for rows.Next() {
		b, err := scanBilling(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Billing, error) {
	row := r.db.QueryRow(ctx, `SELECT `+billingColumns+` FROM billings WHERE id = $1`, id)
	b, err := scanBilling(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Billing{}, shared.ErrNotFound
	}
	return b, err
}

func (r *repository) UpdatePayment(ctx context.Context, id int64, status string, paymentDate *time.Time, method string) error {
	var date pgtype.Timestamptz
	if paymentDate != nil {
		date = pgtype.Timestamptz{Time: *paymentDate, Valid: true}
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE billings SET payment_status = $1, payment_date = $2, payment_method = $3, updated_at = $4 WHERE id = $5`,
		status, date, method, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*repository)(nil)
