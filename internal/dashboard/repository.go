package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Counts are the operational numbers shown on the dashboard.
type Counts struct {
	UnassignedJobs   int `json:"unassigned_jobs"`
	ReadyToInvoice   int `json:"ready_to_invoice"`
	TotalVehicles    int `json:"total_vehicles"`
	AvailableDrivers int `json:"available_drivers"`
	ActiveJobs       int `json:"active_jobs"`
	CompletedToday   int `json:"completed_today"`
}

type Repository interface {
	Counts(ctx context.Context, today time.Time) (Counts, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Counts(ctx context.Context, today time.Time) (Counts, error) {
	var c Counts
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM jobs
			 WHERE driver_id IS NULL AND order_status IN ('New', 'In Progress', 'Pending')),
			(SELECT COUNT(*) FROM jobs
			 WHERE order_status = 'Completed' AND invoice_number = ''),
			(SELECT COUNT(*) FROM vehicles),
			(SELECT COUNT(*) FROM drivers d
			 WHERE d.id NOT IN (
				SELECT j.driver_id FROM jobs j
				WHERE j.driver_id IS NOT NULL AND j.order_status IN ('New', 'In Progress'))),
			(SELECT COUNT(*) FROM jobs WHERE order_status IN ('New', 'In Progress')),
			(SELECT COUNT(*) FROM jobs
			 WHERE order_status = 'Completed' AND updated_at::date = $1::date)`,
		today).
		Scan(&c.UnassignedJobs, &c.ReadyToInvoice, &c.TotalVehicles,
			&c.AvailableDrivers, &c.ActiveJobs, &c.CompletedToday)
	if err != nil {
		return Counts{}, fmt.Errorf("dashboard: counts: %w", err)
	}
	return c, nil
}
