package jobs

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

// ListFilters extends the shared filters with job-specific criteria.
type ListFilters struct {
	shared.ListFilters
	OrderStatus   string
	PaymentStatus string
	DriverID      *int64
	AgentID       *int64
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Job, int, error)
	All(ctx context.Context) ([]Job, error)
	Get(ctx context.Context, id int64) (Job, error)
	Create(ctx context.Context, job Job) (Job, error)
	Update(ctx context.Context, id int64, job Job) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const jobColumns = `id, customer_name, customer_email, customer_mobile, customer_reference,
	passenger_name, passenger_email, passenger_mobile, type_of_service, service_id,
	pickup_date, pickup_time, pickup_location, dropoff_location, vehicle_type, vehicle_number,
	driver_contact, payment_mode, payment_status, order_status, message, remarks,
	additional_stops, reference, status, driver_id, agent_id,
	base_price, base_discount_percent, agent_discount_percent, additional_discount_percent,
	additional_charges, final_price, invoice_number, created_at, updated_at`

func scanJob(row pgx.Row) (Job, error) {
	var j Job
	var serviceID, driverID, agentID pgtype.Int8
	var basePrice, baseDisc, agentDisc, addlDisc, addlCharges, finalPrice pgtype.Numeric
	err := row.Scan(
		&j.ID, &j.CustomerName, &j.CustomerEmail, &j.CustomerMobile, &j.CustomerReference,
		&j.PassengerName, &j.PassengerEmail, &j.PassengerMobile, &j.TypeOfService, &serviceID,
		&j.PickupDate, &j.PickupTime, &j.PickupLocation, &j.DropoffLocation, &j.VehicleType, &j.VehicleNumber,
		&j.DriverContact, &j.PaymentMode, &j.PaymentStatus, &j.OrderStatus, &j.Message, &j.Remarks,
		&j.AdditionalStops, &j.Reference, &j.Status, &driverID, &agentID,
		&basePrice, &baseDisc, &agentDisc, &addlDisc,
		&addlCharges, &finalPrice, &j.InvoiceNumber, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return Job{}, err
	}
	if serviceID.Valid {
		v := serviceID.Int64
		j.ServiceID = &v
	}
	if driverID.Valid {
		v := driverID.Int64
		j.DriverID = &v
	}
	if agentID.Valid {
		v := agentID.Int64
		j.AgentID = &v
	}
	if j.BasePrice, err = db.DecimalFromNumeric(basePrice); err != nil {
		return Job{}, err
	}
	if j.BaseDiscountPercent, err = db.DecimalFromNumeric(baseDisc); err != nil {
		return Job{}, err
	}
	if j.AgentDiscountPercent, err = db.DecimalFromNumeric(agentDisc); err != nil {
		return Job{}, err
	}
	if j.AdditionalDiscountPercent, err = db.DecimalFromNumeric(addlDisc); err != nil {
		return Job{}, err
	}
	if j.AdditionalCharges, err = db.DecimalFromNumeric(addlCharges); err != nil {
		return Job{}, err
	}
	if j.FinalPrice, err = db.DecimalFromNumeric(finalPrice); err != nil {
		return Job{}, err
	}
	return j, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Job, int, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM jobs WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		n := strconv.Itoa(argCount)
		clause := ` AND (customer_name ILIKE $` + n +
			` OR passenger_name ILIKE $` + n +
			` OR pickup_location ILIKE $` + n +
			` OR dropoff_location ILIKE $` + n +
			` OR reference ILIKE $` + n +
			` OR invoice_number ILIKE $` + n + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.OrderStatus != "" {
		argCount++
		clause := ` AND order_status = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.OrderStatus)
	}
	if filters.PaymentStatus != "" {
		argCount++
		clause := ` AND payment_status = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.PaymentStatus)
	}
	if filters.DriverID != nil {
		argCount++
		clause := ` AND driver_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.DriverID)
	}
	if filters.AgentID != nil {
		argCount++
		clause := ` AND agent_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.AgentID)
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

	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, j)
	}
	return out, total, rows.Err()
}

// All returns every job ordered by id, used by the CSV export.
func (r *repository) All(ctx context.Context) ([]Job, error) {
	rows, err := r.db.Query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Job, error) {
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Job{}, shared.ErrNotFound
	}
	return j, err
}

func (r *repository) Create(ctx context.Context, job Job) (Job, error) {
	const query = `
		INSERT INTO jobs (
			customer_name, customer_email, customer_mobile, customer_reference,
			passenger_name, passenger_email, passenger_mobile, type_of_service, service_id,
			pickup_date, pickup_time, pickup_location, dropoff_location, vehicle_type, vehicle_number,
			driver_contact, payment_mode, payment_status, order_status, message, remarks,
			additional_stops, reference, status, driver_id, agent_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $27
		)
		RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query,
		job.CustomerName, job.CustomerEmail, job.CustomerMobile, job.CustomerReference,
		job.PassengerName, job.PassengerEmail, job.PassengerMobile, job.TypeOfService, int8Param(job.ServiceID),
		job.PickupDate, job.PickupTime, job.PickupLocation, job.DropoffLocation, job.VehicleType, job.VehicleNumber,
		job.DriverContact, job.PaymentMode, job.PaymentStatus, job.OrderStatus, job.Message, job.Remarks,
		job.AdditionalStops, job.Reference, job.Status, int8Param(job.DriverID), int8Param(job.AgentID), now,
	).Scan(&job.ID)
	if err != nil {
		return Job{}, err
	}
	job.CreatedAt = now
	job.UpdatedAt = now
	return job, nil
}

func (r *repository) Update(ctx context.Context, id int64, job Job) error {
	const query = `
		UPDATE jobs SET
			customer_name = $1, customer_email = $2, customer_mobile = $3, customer_reference = $4,
			passenger_name = $5, passenger_email = $6, passenger_mobile = $7, type_of_service = $8, service_id = $9,
			pickup_date = $10, pickup_time = $11, pickup_location = $12, dropoff_location = $13,
			vehicle_type = $14, vehicle_number = $15, driver_contact = $16, payment_mode = $17,
			payment_status = $18, order_status = $19, message = $20, remarks = $21,
			additional_stops = $22, reference = $23, status = $24, driver_id = $25, agent_id = $26,
			updated_at = $27
		WHERE id = $28`
	tag, err := r.db.Exec(ctx, query,
		job.CustomerName, job.CustomerEmail, job.CustomerMobile, job.CustomerReference,
		job.PassengerName, job.PassengerEmail, job.PassengerMobile, job.TypeOfService, int8Param(job.ServiceID),
		job.PickupDate, job.PickupTime, job.PickupLocation, job.DropoffLocation,
		job.VehicleType, job.VehicleNumber, job.DriverContact, job.PaymentMode,
		job.PaymentStatus, job.OrderStatus, job.Message, job.Remarks,
		job.AdditionalStops, job.Reference, job.Status, int8Param(job.DriverID), int8Param(job.AgentID),
		time.Now().UTC(), id,
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
	tag, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func int8Param(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}
