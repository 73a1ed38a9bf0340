package chat

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetdesk/fleetdesk/internal/platform/db"
)

// resultCap bounds every canned query so a chat answer stays scannable.
const resultCap = 10

// Row is one formatted result record, rendered as-is in the chat panel.
type Row = map[string]any

// DashboardCounts backs the "dashboard" summary answer.
type DashboardCounts struct {
	TotalJobs      int
	ActiveJobs     int
	CompletedJobs  int
	TotalDrivers   int
	TotalVehicles  int
	UnpaidInvoices int
}

// Store runs the canned lookups behind each chat topic.
type Store interface {
	RecentJobs(ctx context.Context) ([]Row, error)
	JobsByOrderStatus(ctx context.Context, statuses ...string) ([]Row, error)
	JobsByPaymentStatus(ctx context.Context, status string) ([]Row, error)
	Drivers(ctx context.Context, availableOnly bool) ([]Row, error)
	Vehicles(ctx context.Context, availableOnly bool) ([]Row, error)
	Agents(ctx context.Context) ([]Row, error)
	Services(ctx context.Context) ([]Row, error)
	Billings(ctx context.Context) ([]Row, error)
	PaymentCounts(ctx context.Context) (unpaid, paid int, err error)
	StatusCounts(ctx context.Context) (map[string]int, error)
	DashboardCounts(ctx context.Context) (DashboardCounts, error)
}

type store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) Store {
	return &store{pool: pool}
}

const jobRowQuery = `
	SELECT j.id, j.customer_name, j.passenger_name, j.pickup_location, j.dropoff_location,
	       j.pickup_date, j.pickup_time, j.order_status, j.payment_status, j.final_price
	FROM jobs j`

func (s *store) scanJobRows(rows pgx.Rows) ([]Row, error) {
	defer rows.Close()
	out := []Row{}
	for rows.Next() {
		var (
			id                               int64
			customer, passenger, pickup      string
			dropoff, date, timeOfDay, status string
			payment                          string
			finalPrice                       pgtype.Numeric
		)
		if err := rows.Scan(&id, &customer, &passenger, &pickup, &dropoff, &date, &timeOfDay, &status, &payment, &finalPrice); err != nil {
			return nil, err
		}
		price, err := db.DecimalFromNumeric(finalPrice)
		if err != nil {
			return nil, err
		}
		out = append(out, Row{
			"id":             id,
			"customer":       customer,
			"passenger":      passenger,
			"pickup":         pickup,
			"dropoff":        dropoff,
			"date":           date,
			"time":           timeOfDay,
			"order_status":   status,
			"payment_status": payment,
			"final_price":    price.StringFixed(2),
		})
	}
	return out, rows.Err()
}

func (s *store) RecentJobs(ctx context.Context) ([]Row, error) {
	rows, err := s.pool.Query(ctx, jobRowQuery+` ORDER BY j.id DESC LIMIT $1`, resultCap)
	if err != nil {
		return nil, fmt.Errorf("chat: recent jobs: %w", err)
	}
	return s.scanJobRows(rows)
}

func (s *store) JobsByOrderStatus(ctx context.Context, statuses ...string) ([]Row, error) {
	rows, err := s.pool.Query(ctx, jobRowQuery+` WHERE j.order_status = ANY($1) ORDER BY j.id DESC LIMIT $2`, statuses, resultCap)
	if err != nil {
		return nil, fmt.Errorf("chat: jobs by order status: %w", err)
	}
	return s.scanJobRows(rows)
}

func (s *store) JobsByPaymentStatus(ctx context.Context, status string) ([]Row, error) {
	rows, err := s.pool.Query(ctx, jobRowQuery+` WHERE j.payment_status = $1 ORDER BY j.id DESC LIMIT $2`, status, resultCap)
	if err != nil {
		return nil, fmt.Errorf("chat: jobs by payment status: %w", err)
	}
	return s.scanJobRows(rows)
}

func (s *store) Drivers(ctx context.Context, availableOnly bool) ([]Row, error) {
	query := `SELECT d.id, d.name, d.phone, d.license_number FROM drivers d`
	if availableOnly {
		// Available means not assigned to a job that is still in flight.
		query += ` WHERE d.id NOT IN (
			SELECT j.driver_id FROM jobs j
			WHERE j.driver_id IS NOT NULL AND j.order_status IN ('New', 'In Progress'))`
	}
	query += ` ORDER BY d.name ASC LIMIT $1`

	rows, err := s.pool.Query(ctx, query, resultCap)
	if err != nil {
		return nil, fmt.Errorf("chat: drivers: %w", err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var (
			id                   int64
			name, phone, license string
		)
		if err := rows.Scan(&id, &name, &phone, &license); err != nil {
			return nil, err
		}
		out = append(out, Row{"id": id, "name": name, "phone": phone, "license": license})
	}
	return out, rows.Err()
}

func (s *store) Vehicles(ctx context.Context, availableOnly bool) ([]Row, error) {
	query := `SELECT v.id, v.name, v.number, v.type, v.status FROM vehicles v`
	if availableOnly {
		query += ` WHERE v.number NOT IN (
			SELECT j.vehicle_number FROM jobs j
			WHERE j.vehicle_number <> '' AND j.order_status IN ('New', 'In Progress'))`
	}
	query += ` ORDER BY v.name ASC LIMIT $1`

	rows, err := s.pool.Query(ctx, query, resultCap)
	if err != nil {
		return nil, fmt.Errorf("chat: vehicles: %w", err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var (
			id                        int64
			name, number, typ, status string
		)
		if err := rows.Scan(&id, &name, &number, &typ, &status); err != nil {
			return nil, err
		}
		out = append(out, Row{"id": id, "name": name, "number": number, "type": typ, "status": status})
	}
	return out, rows.Err()
}

func (s *store) Agents(ctx context.Context) ([]Row, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.id, a.name, a.email, a.mobile, a.agent_discount_percent
		 FROM agents a ORDER BY a.name ASC LIMIT $1`, resultCap)
	if err != nil {
		return nil, fmt.Errorf("chat: agents: %w", err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var (
			id                  int64
			name, email, mobile string
			discount            pgtype.Numeric
		)
		if err := rows.Scan(&id, &name, &email, &mobile, &discount); err != nil {
			return nil, err
		}
		percent, err := db.DecimalFromNumeric(discount)
		if err != nil {
			return nil, err
		}
		out = append(out, Row{
			"id": id, "name": name, "email": email, "mobile": mobile,
			"discount_percent": percent.StringFixed(2),
		})
	}
	return out, rows.Err()
}

func (s *store) Services(ctx context.Context) ([]Row, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT s.id, s.name, s.base_price, s.status
		 FROM services s ORDER BY s.name ASC LIMIT $1`, resultCap)
	if err != nil {
		return nil, fmt.Errorf("chat: services: %w", err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var (
			id           int64
			name, status string
			basePrice    pgtype.Numeric
		)
		if err := rows.Scan(&id, &name, &basePrice, &status); err != nil {
			return nil, err
		}
		price, err := db.DecimalFromNumeric(basePrice)
		if err != nil {
			return nil, err
		}
		out = append(out, Row{"id": id, "name": name, "base_price": price.StringFixed(2), "status": status})
	}
	return out, rows.Err()
}

func (s *store) Billings(ctx context.Context) ([]Row, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT b.id, b.invoice_number, b.job_id, b.total_amount, b.payment_status
		 FROM billings b ORDER BY b.id DESC LIMIT $1`, resultCap)
	if err != nil {
		return nil, fmt.Errorf("chat: billings: %w", err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var (
			id, jobID       int64
			invoice, status string
			total           pgtype.Numeric
		)
		if err := rows.Scan(&id, &invoice, &jobID, &total, &status); err != nil {
			return nil, err
		}
		amount, err := db.DecimalFromNumeric(total)
		if err != nil {
			return nil, err
		}
		out = append(out, Row{
			"id": id, "invoice_number": invoice, "job_id": jobID,
			"total": amount.StringFixed(2), "payment_status": status,
		})
	}
	return out, rows.Err()
}

func (s *store) PaymentCounts(ctx context.Context) (int, int, error) {
	var unpaid, paid int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE payment_status = 'Unpaid'),
		        COUNT(*) FILTER (WHERE payment_status = 'Paid')
		 FROM jobs`).Scan(&unpaid, &paid)
	if err != nil {
		return 0, 0, fmt.Errorf("chat: payment counts: %w", err)
	}
	return unpaid, paid, nil
}

func (s *store) StatusCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT order_status, COUNT(*) FROM jobs GROUP BY order_status`)
	if err != nil {
		return nil, fmt.Errorf("chat: status counts: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (s *store) DashboardCounts(ctx context.Context) (DashboardCounts, error) {
	var c DashboardCounts
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM jobs),
			(SELECT COUNT(*) FROM jobs WHERE order_status IN ('New', 'In Progress')),
			(SELECT COUNT(*) FROM jobs WHERE order_status = 'Completed'),
			(SELECT COUNT(*) FROM drivers),
			(SELECT COUNT(*) FROM vehicles),
			(SELECT COUNT(*) FROM jobs WHERE payment_status = 'Unpaid')`).
		Scan(&c.TotalJobs, &c.ActiveJobs, &c.CompletedJobs, &c.TotalDrivers, &c.TotalVehicles, &c.UnpaidInvoices)
	if err != nil {
		return DashboardCounts{}, fmt.Errorf("chat: dashboard counts: %w", err)
	}
	return c, nil
}
