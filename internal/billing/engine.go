package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk/internal/shared"
)

// invoiceAttempts bounds the regenerate-and-retry loop on invoice number
// collisions.
const invoiceAttempts = 5

// Engine runs pricing calculations and generates invoices.
type Engine struct {
	logger *slog.Logger
	repo   Repository
	now    func() time.Time
}

func NewEngine(logger *slog.Logger, repo Repository) *Engine {
	return &Engine{logger: logger, repo: repo, now: time.Now}
}

// CalcOptions are the per-run inputs of a pricing calculation.
type CalcOptions struct {
	AdditionalDiscountPercent decimal.Decimal
	AdditionalCharges         decimal.Decimal
}

// InvoiceOptions are the caller-supplied fields of a new invoice.
type InvoiceOptions struct {
	DueDate         time.Time
	Notes           string
	TermsConditions string
	TaxAmount       decimal.Decimal
}

// CalculateJobPrice resolves the job's pricing inputs, runs the breakdown
// and persists the cached snapshot on the job. Missing service or agent rows
// degrade to zero rather than failing the run.
func (e *Engine) CalculateJobPrice(ctx context.Context, jobID int64, opts CalcOptions) (Breakdown, error) {
	job, err := e.repo.GetJob(ctx, jobID)
	if err != nil {
		return Breakdown{}, err
	}

	input, degraded, err := e.resolveInputs(ctx, job, opts)
	if err != nil {
		return Breakdown{}, err
	}

	breakdown, err := ComputeBreakdown(input)
	if err != nil {
		return Breakdown{}, err
	}
	breakdown.Degraded = degraded

	snap := PricingSnapshot{
		BasePrice:                 breakdown.BasePrice,
		BaseDiscountPercent:       breakdown.BaseDiscountPercent,
		AgentDiscountPercent:      breakdown.AgentDiscountPercent,
		AdditionalDiscountPercent: breakdown.AdditionalDiscountPercent,
		AdditionalCharges:         breakdown.AdditionalCharges,
		FinalPrice:                breakdown.FinalPrice,
	}
	if err := e.repo.SaveJobPricing(ctx, jobID, snap); err != nil {
		return Breakdown{}, fmt.Errorf("billing: save pricing snapshot: %w", err)
	}
	return breakdown, nil
}

// CreateInvoice recomputes the authoritative breakdown (zero additional
// discount and charges), generates a unique invoice number and writes the
// billing row, the job stamp and the refreshed pricing snapshot in one
// transaction. The job's cached fields always match the invoice they back.
func (e *Engine) CreateInvoice(ctx context.Context, jobID int64, opts InvoiceOptions) (Billing, error) {
	job, err := e.repo.GetJob(ctx, jobID)
	if err != nil {
		return Billing{}, err
	}

	input, degraded, err := e.resolveInputs(ctx, job, CalcOptions{})
	if err != nil {
		return Billing{}, err
	}
	breakdown, err := ComputeBreakdown(input)
	if err != nil {
		return Billing{}, err
	}
	if len(degraded) > 0 {
		e.logger.Warn("invoicing with degraded pricing inputs",
			slog.Int64("job_id", jobID), slog.Any("reasons", degraded))
	}

	tax := opts.TaxAmount.RoundBank(2)
	if tax.IsNegative() {
		return Billing{}, ErrInvalidCharges
	}
	invoiceDate := e.now().UTC()
	dueDate := opts.DueDate
	if dueDate.IsZero() {
		dueDate = invoiceDate.AddDate(0, 0, 30)
	}

	billing := Billing{
		JobID:                    jobID,
		InvoiceDate:              invoiceDate,
		DueDate:                  dueDate,
		BasePrice:                breakdown.BasePrice,
		BaseDiscountAmount:       breakdown.BaseDiscountAmount,
		AgentDiscountAmount:      breakdown.AgentDiscountAmount,
		AdditionalDiscountAmount: breakdown.AdditionalDiscountAmount,
		AdditionalCharges:        breakdown.AdditionalCharges,
		Subtotal:                 breakdown.Subtotal,
		TaxAmount:                tax,
		TotalAmount:              breakdown.Subtotal.Add(breakdown.AdditionalCharges).Add(tax).RoundBank(2),
		PaymentStatus:            PaymentUnpaid,
		Notes:                    opts.Notes,
		TermsConditions:          opts.TermsConditions,
	}

	snap := PricingSnapshot{
		BasePrice:                 breakdown.BasePrice,
		BaseDiscountPercent:       breakdown.BaseDiscountPercent,
		AgentDiscountPercent:      breakdown.AgentDiscountPercent,
		AdditionalDiscountPercent: breakdown.AdditionalDiscountPercent,
		AdditionalCharges:         breakdown.AdditionalCharges,
		FinalPrice:                breakdown.FinalPrice,
	}

	for attempt := 0; attempt < invoiceAttempts; attempt++ {
		billing.InvoiceNumber = e.generateInvoiceNumber()
		created, err := e.repo.CreateInvoice(ctx, billing, snap)
		if err == nil {
			return created, nil
		}
		if isUniqueViolation(err) {
			continue
		}
		return Billing{}, fmt.Errorf("billing: create invoice: %w", err)
	}
	return Billing{}, fmt.Errorf("billing: invoice number collision after %d attempts", invoiceAttempts)
}

// ServicePrice returns the base price of a service, zero when it is missing.
func (e *Engine) ServicePrice(ctx context.Context, serviceID int64) (decimal.Decimal, error) {
	price, err := e.repo.ServiceBasePrice(ctx, serviceID)
	if errors.Is(err, shared.ErrNotFound) {
		return decimal.Zero, nil
	}
	return price, err
}

// AgentDiscount returns the agent's discount percent, zero when missing.
func (e *Engine) AgentDiscount(ctx context.Context, agentID int64) (decimal.Decimal, error) {
	percent, err := e.repo.AgentDiscountPercent(ctx, agentID)
	if errors.Is(err, shared.ErrNotFound) {
		return decimal.Zero, nil
	}
	return percent, err
}

// BaseDiscount returns the active base discount percent, zero when none is
// configured.
func (e *Engine) BaseDiscount(ctx context.Context) (decimal.Decimal, error) {
	percent, err := e.repo.ActiveBaseDiscountPercent(ctx)
	if errors.Is(err, shared.ErrNotFound) {
		return decimal.Zero, nil
	}
	return percent, err
}

// ListInvoices lists billing rows with search and paging.
func (e *Engine) ListInvoices(ctx context.Context, filters shared.ListFilters) ([]Billing, int, error) {
	return e.repo.List(ctx, filters)
}

// GetInvoice fetches one billing row.
func (e *Engine) GetInvoice(ctx context.Context, id int64) (Billing, error) {
	return e.repo.Get(ctx, id)
}

// InvoiceData assembles the invoice together with its job for rendering.
func (e *Engine) InvoiceData(ctx context.Context, billingID int64) (InvoiceData, error) {
	b, err := e.repo.Get(ctx, billingID)
	if err != nil {
		return InvoiceData{}, err
	}
	job, err := e.repo.GetJob(ctx, b.JobID)
	if err != nil {
		return InvoiceData{}, err
	}
	return InvoiceData{Billing: b, Job: job}, nil
}

// MarkPaid records payment of an invoice.
func (e *Engine) MarkPaid(ctx context.Context, id int64, paymentDate time.Time, method string) error {
	return e.repo.UpdatePayment(ctx, id, PaymentPaid, &paymentDate, method)
}

// MarkUnpaid reverts an invoice to unpaid.
func (e *Engine) MarkUnpaid(ctx context.Context, id int64) error {
	return e.repo.UpdatePayment(ctx, id, PaymentUnpaid, nil, "")
}

func (e *Engine) resolveInputs(ctx context.Context, job JobInfo, opts CalcOptions) (PricingInput, []DegradedReason, error) {
	var degraded []DegradedReason

	basePrice := decimal.Zero
	if job.ServiceID != nil {
		price, err := e.repo.ServiceBasePrice(ctx, *job.ServiceID)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			degraded = append(degraded, DegradedMissingService)
			e.logger.Warn("pricing with missing service",
				slog.Int64("job_id", job.ID), slog.Int64("service_id", *job.ServiceID))
		case err != nil:
			return PricingInput{}, nil, fmt.Errorf("billing: resolve service price: %w", err)
		default:
			basePrice = price
		}
	} else {
		degraded = append(degraded, DegradedMissingService)
		e.logger.Warn("pricing job without service", slog.Int64("job_id", job.ID))
	}

	agentPercent := decimal.Zero
	if job.AgentID != nil {
		percent, err := e.repo.AgentDiscountPercent(ctx, *job.AgentID)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			degraded = append(degraded, DegradedMissingAgent)
			e.logger.Warn("pricing with missing agent",
				slog.Int64("job_id", job.ID), slog.Int64("agent_id", *job.AgentID))
		case err != nil:
			return PricingInput{}, nil, fmt.Errorf("billing: resolve agent discount: %w", err)
		default:
			agentPercent = percent
		}
	}

	basePercent, err := e.repo.ActiveBaseDiscountPercent(ctx)
	if errors.Is(err, shared.ErrNotFound) {
		basePercent = decimal.Zero
	} else if err != nil {
		return PricingInput{}, nil, fmt.Errorf("billing: resolve base discount: %w", err)
	}

	return PricingInput{
		BasePrice:                 basePrice,
		BaseDiscountPercent:       basePercent,
		AgentDiscountPercent:      agentPercent,
		AdditionalDiscountPercent: opts.AdditionalDiscountPercent,
		AdditionalCharges:         opts.AdditionalCharges,
	}, degraded, nil
}

// generateInvoiceNumber yields INV-YYYYMMDD-XXXXXXXX where the suffix is
// eight uppercase hex characters from a random UUID.
func (e *Engine) generateInvoiceNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("INV-%s-%s", e.now().UTC().Format("20060102"), suffix)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
