package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk/internal/billing"
	jobmetrics "github.com/fleetdesk/fleetdesk/internal/jobs"
	"github.com/fleetdesk/fleetdesk/internal/platform/db"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// PricingRefreshJob recomputes the cached pricing snapshot of jobs so that
// rate changes on services, agents and base discounts show up without a
// manual recalculation. Invoiced jobs are never touched: their numbers are
// frozen on the billing row.
type PricingRefreshJob struct {
	Engine  *billing.Engine
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewPricingRefreshJob wires dependencies for the refresh handler.
func NewPricingRefreshJob(engine *billing.Engine, pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *PricingRefreshJob {
	return &PricingRefreshJob{Engine: engine, Pool: pool, Logger: logger, Metrics: metrics}
}

// Handle processes pricing refresh tasks.
func (j *PricingRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Engine == nil {
		return errors.New("pricing refresh: handler not configured")
	}
	var payload PricingRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Scope == "" {
		payload.Scope = "uninvoiced"
	}

	tracker := j.metrics().Track(TaskPricingRefresh)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("scope", payload.Scope))
	logger.Info("starting pricing refresh")
	start := time.Now()

	targets, err := j.fetchTargets(ctx, payload.Scope)
	if err != nil {
		resultErr = err
		logger.Error("load refresh targets", slog.Any("error", err))
		return resultErr
	}
	if len(targets) == 0 {
		logger.Info("no jobs need a pricing refresh")
		return resultErr
	}

	refreshed := 0
	for _, target := range targets {
		jobCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		_, err := j.Engine.CalculateJobPrice(jobCtx, target.jobID, billing.CalcOptions{
			AdditionalDiscountPercent: target.additionalDiscount,
			AdditionalCharges:         target.additionalCharges,
		})
		cancel()
		if err != nil {
			resultErr = err
			logger.Error("refresh job pricing", slog.Int64("job_id", target.jobID), slog.Any("error", err))
			return resultErr
		}
		refreshed++
	}

	logger.Info("completed pricing refresh",
		slog.Int("jobs", refreshed), slog.Duration("duration", time.Since(start)))
	return resultErr
}

type pricingTarget struct {
	jobID              int64
	additionalDiscount decimal.Decimal
	additionalCharges  decimal.Decimal
}

func (j *PricingRefreshJob) fetchTargets(ctx context.Context, scope string) ([]pricingTarget, error) {
	if j.Pool == nil {
		return nil, errors.New("pricing refresh: pool not configured")
	}
	query := `
		SELECT id, additional_discount_percent, additional_charges
		FROM jobs
		WHERE order_status <> 'Cancelled'`
	if scope != "all" {
		query += ` AND invoice_number = ''`
	}
	query += ` ORDER BY id ASC`

	rows, err := j.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	targets := make([]pricingTarget, 0)
	for rows.Next() {
		var (
			id               int64
			discount, charge pgtype.Numeric
		)
		if err := rows.Scan(&id, &discount, &charge); err != nil {
			return nil, err
		}
		d, err := db.DecimalFromNumeric(discount)
		if err != nil {
			return nil, err
		}
		c, err := db.DecimalFromNumeric(charge)
		if err != nil {
			return nil, err
		}
		targets = append(targets, pricingTarget{jobID: id, additionalDiscount: d, additionalCharges: c})
	}
	return targets, rows.Err()
}

func (j *PricingRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskPricingRefresh))
	}
	return slog.Default().With(slog.String("job", TaskPricingRefresh))
}

func (j *PricingRefreshJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
