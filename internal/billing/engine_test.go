package billing

import (
	"context"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/internal/shared"
	_ "github.com/fleetdesk/fleetdesk/testing"
)

var invoiceNumberPattern = regexp.MustCompile(`^INV-\d{8}-[0-9A-F]{8}$`)

type fakeDiscount struct {
	id      int64
	percent decimal.Decimal
	isBase  bool
	active  bool
}

type fakeRepo struct {
	jobs      map[int64]JobInfo
	services  map[int64]decimal.Decimal
	agents    map[int64]decimal.Decimal
	discounts []fakeDiscount
	snapshots map[int64]PricingSnapshot
	billings  []Billing
	nextID    int64

	failInserts int // inject unique violations for the first N inserts
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		jobs:      make(map[int64]JobInfo),
		services:  make(map[int64]decimal.Decimal),
		agents:    make(map[int64]decimal.Decimal),
		snapshots: make(map[int64]PricingSnapshot),
		nextID:    1,
	}
}

func (f *fakeRepo) GetJob(ctx context.Context, jobID int64) (JobInfo, error) {
	job, ok := f.jobs[jobID]
	if !ok {
		return JobInfo{}, shared.ErrNotFound
	}
	return job, nil
}

func (f *fakeRepo) ServiceBasePrice(ctx context.Context, serviceID int64) (decimal.Decimal, error) {
	price, ok := f.services[serviceID]
	if !ok {
		return decimal.Zero, shared.ErrNotFound
	}
	return price, nil
}

func (f *fakeRepo) AgentDiscountPercent(ctx context.Context, agentID int64) (decimal.Decimal, error) {
	percent, ok := f.agents[agentID]
	if !ok {
		return decimal.Zero, shared.ErrNotFound
	}
	return percent, nil
}

// ActiveBaseDiscountPercent mirrors the SQL implementation: among active
// base discounts, the lowest id wins.
func (f *fakeRepo) ActiveBaseDiscountPercent(ctx context.Context) (decimal.Decimal, error) {
	var found *fakeDiscount
	for i := range f.discounts {
		d := &f.discounts[i]
		if !d.isBase || !d.active {
			continue
		}
		if found == nil || d.id < found.id {
			found = d
		}
	}
	if found == nil {
		return decimal.Zero, shared.ErrNotFound
	}
	return found.percent, nil
}

func (f *fakeRepo) SaveJobPricing(ctx context.Context, jobID int64, snap PricingSnapshot) error {
	if _, ok := f.jobs[jobID]; !ok {
		return shared.ErrNotFound
	}
	f.snapshots[jobID] = snap
	return nil
}

func (f *fakeRepo) CreateInvoice(ctx context.Context, b Billing, snap PricingSnapshot) (Billing, error) {
	if f.failInserts > 0 {
		f.failInserts--
		return Billing{}, &pgconn.PgError{Code: "23505", ConstraintName: "billings_invoice_number_key"}
	}
	for _, existing := range f.billings {
		if existing.InvoiceNumber == b.InvoiceNumber {
			return Billing{}, &pgconn.PgError{Code: "23505", ConstraintName: "billings_invoice_number_key"}
		}
	}
	b.ID = f.nextID
	f.nextID++
	f.billings = append(f.billings, b)
	job := f.jobs[b.JobID]
	job.InvoiceNumber = b.InvoiceNumber
	f.jobs[b.JobID] = job
	f.snapshots[b.JobID] = snap
	return b, nil
}

func (f *fakeRepo) List(ctx context.Context, filters shared.ListFilters) ([]Billing, int, error) {
	return f.billings, len(f.billings), nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Billing, error) {
	for _, b := range f.billings {
		if b.ID == id {
			return b, nil
		}
	}
	return Billing{}, shared.ErrNotFound
}

func (f *fakeRepo) UpdatePayment(ctx context.Context, id int64, status string, paymentDate *time.Time, method string) error {
	for i, b := range f.billings {
		if b.ID == id {
			f.billings[i].PaymentStatus = status
			f.billings[i].PaymentDate = paymentDate
			f.billings[i].PaymentMethod = method
			return nil
		}
	}
	return shared.ErrNotFound
}

var _ Repository = (*fakeRepo)(nil)

func newTestEngine(repo Repository) *Engine {
	return NewEngine(slog.Default(), repo)
}

func scenarioRepo() *fakeRepo {
	repo := newFakeRepo()
	serviceID, agentID := int64(1), int64(1)
	repo.services[serviceID] = dec("50")
	repo.agents[agentID] = dec("5")
	repo.discounts = []fakeDiscount{{id: 1, percent: dec("10"), isBase: true, active: true}}
	repo.jobs[1] = JobInfo{ID: 1, CustomerName: "Acme Travel", ServiceID: &serviceID, AgentID: &agentID}
	return repo
}

func TestCalculateJobPriceScenario(t *testing.T) {
	repo := scenarioRepo()
	engine := newTestEngine(repo)

	breakdown, err := engine.CalculateJobPrice(context.Background(), 1, CalcOptions{})
	require.NoError(t, err)

	assert.True(t, breakdown.Subtotal.Equal(dec("42.50")), "subtotal: %s", breakdown.Subtotal)
	assert.True(t, breakdown.FinalPrice.Equal(dec("42.50")))
	assert.False(t, breakdown.IsDegraded())

	snap, ok := repo.snapshots[1]
	require.True(t, ok, "pricing snapshot must be persisted")
	assert.True(t, snap.FinalPrice.Equal(dec("42.50")))
	assert.True(t, snap.BasePrice.Equal(dec("50.00")))
}

func TestCalculateJobPriceWithCharges(t *testing.T) {
	engine := newTestEngine(scenarioRepo())

	breakdown, err := engine.CalculateJobPrice(context.Background(), 1, CalcOptions{
		AdditionalCharges: dec("7.5"),
	})
	require.NoError(t, err)
	assert.True(t, breakdown.FinalPrice.Equal(dec("50.00")), "final: %s", breakdown.FinalPrice)
}

func TestCalculateJobPriceMissingJob(t *testing.T) {
	engine := newTestEngine(newFakeRepo())
	_, err := engine.CalculateJobPrice(context.Background(), 42, CalcOptions{})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCalculateJobPriceMissingServiceDegrades(t *testing.T) {
	repo := newFakeRepo()
	serviceID := int64(99) // no such service
	repo.jobs[1] = JobInfo{ID: 1, ServiceID: &serviceID}
	engine := newTestEngine(repo)

	breakdown, err := engine.CalculateJobPrice(context.Background(), 1, CalcOptions{})
	require.NoError(t, err)
	assert.True(t, breakdown.BasePrice.IsZero())
	assert.True(t, breakdown.FinalPrice.IsZero())
	assert.Contains(t, breakdown.Degraded, DegradedMissingService)
}

func TestCalculateJobPriceMissingAgentDegrades(t *testing.T) {
	repo := newFakeRepo()
	serviceID, agentID := int64(1), int64(99)
	repo.services[serviceID] = dec("80")
	repo.jobs[1] = JobInfo{ID: 1, ServiceID: &serviceID, AgentID: &agentID}
	engine := newTestEngine(repo)

	breakdown, err := engine.CalculateJobPrice(context.Background(), 1, CalcOptions{})
	require.NoError(t, err)
	assert.True(t, breakdown.AgentDiscountAmount.IsZero())
	assert.True(t, breakdown.Subtotal.Equal(dec("80.00")))
	assert.Contains(t, breakdown.Degraded, DegradedMissingAgent)
}

func TestConvenienceReadsZeroOnMissing(t *testing.T) {
	engine := newTestEngine(newFakeRepo())
	ctx := context.Background()

	price, err := engine.ServicePrice(ctx, 1)
	require.NoError(t, err)
	assert.True(t, price.IsZero())

	percent, err := engine.AgentDiscount(ctx, 1)
	require.NoError(t, err)
	assert.True(t, percent.IsZero())

	base, err := engine.BaseDiscount(ctx)
	require.NoError(t, err)
	assert.True(t, base.IsZero())
}

func TestCreateInvoiceScenario(t *testing.T) {
	repo := scenarioRepo()
	engine := newTestEngine(repo)

	billing, err := engine.CreateInvoice(context.Background(), 1, InvoiceOptions{})
	require.NoError(t, err)

	assert.Regexp(t, invoiceNumberPattern, billing.InvoiceNumber)
	assert.True(t, billing.TotalAmount.Equal(dec("42.50")), "total: %s", billing.TotalAmount)
	assert.True(t, billing.TaxAmount.IsZero())
	assert.Equal(t, PaymentUnpaid, billing.PaymentStatus)

	// The job stamp happens in the same operation.
	job, err := repo.GetJob(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceNumber, job.InvoiceNumber)
}

func TestCreateInvoiceRefreshesJobSnapshot(t *testing.T) {
	repo := scenarioRepo()
	engine := newTestEngine(repo)
	ctx := context.Background()

	// A prior ad-hoc calculation leaves extras on the cached snapshot.
	_, err := engine.CalculateJobPrice(ctx, 1, CalcOptions{
		AdditionalDiscountPercent: dec("10"),
		AdditionalCharges:         dec("20"),
	})
	require.NoError(t, err)
	require.True(t, repo.snapshots[1].FinalPrice.Equal(dec("57.50")), "final: %s", repo.snapshots[1].FinalPrice)

	billing, err := engine.CreateInvoice(ctx, 1, InvoiceOptions{})
	require.NoError(t, err)

	// Invoicing rewrites the cached fields with the invoiced breakdown, so
	// the job never disagrees with the invoice it carries.
	snap := repo.snapshots[1]
	assert.True(t, snap.AdditionalDiscountPercent.IsZero(), "additional discount: %s", snap.AdditionalDiscountPercent)
	assert.True(t, snap.AdditionalCharges.IsZero(), "additional charges: %s", snap.AdditionalCharges)
	assert.True(t, snap.FinalPrice.Equal(billing.TotalAmount),
		"job final %s vs invoice total %s", snap.FinalPrice, billing.TotalAmount)
}

func TestBaseDiscountLowestIDWins(t *testing.T) {
	repo := scenarioRepo()
	repo.discounts = []fakeDiscount{
		{id: 7, percent: dec("25"), isBase: true, active: true},
		{id: 3, percent: dec("10"), isBase: true, active: true},
		{id: 1, percent: dec("50"), isBase: true, active: false},
		{id: 2, percent: dec("15"), isBase: false, active: true},
	}
	engine := newTestEngine(repo)
	ctx := context.Background()

	percent, err := engine.BaseDiscount(ctx)
	require.NoError(t, err)
	assert.True(t, percent.Equal(dec("10")), "percent: %s", percent)

	breakdown, err := engine.CalculateJobPrice(ctx, 1, CalcOptions{})
	require.NoError(t, err)
	assert.True(t, breakdown.BaseDiscountPercent.Equal(dec("10")))
	assert.True(t, breakdown.Subtotal.Equal(dec("42.50")), "subtotal: %s", breakdown.Subtotal)
}

func TestCreateInvoiceTwiceProducesDistinctRows(t *testing.T) {
	repo := scenarioRepo()
	engine := newTestEngine(repo)
	ctx := context.Background()

	first, err := engine.CreateInvoice(ctx, 1, InvoiceOptions{})
	require.NoError(t, err)
	second, err := engine.CreateInvoice(ctx, 1, InvoiceOptions{})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.InvoiceNumber, second.InvoiceNumber)
	assert.Len(t, repo.billings, 2)
}

func TestCreateInvoiceRetriesOnCollision(t *testing.T) {
	repo := scenarioRepo()
	repo.failInserts = 2
	engine := newTestEngine(repo)

	billing, err := engine.CreateInvoice(context.Background(), 1, InvoiceOptions{})
	require.NoError(t, err)
	assert.Regexp(t, invoiceNumberPattern, billing.InvoiceNumber)
	assert.Zero(t, repo.failInserts)
}

func TestCreateInvoiceGivesUpAfterBoundedAttempts(t *testing.T) {
	repo := scenarioRepo()
	repo.failInserts = invoiceAttempts + 1
	engine := newTestEngine(repo)

	_, err := engine.CreateInvoice(context.Background(), 1, InvoiceOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision")
}

func TestCreateInvoiceWithTax(t *testing.T) {
	repo := scenarioRepo()
	engine := newTestEngine(repo)

	billing, err := engine.CreateInvoice(context.Background(), 1, InvoiceOptions{
		TaxAmount: dec("3.40"),
	})
	require.NoError(t, err)
	assert.True(t, billing.TotalAmount.Equal(dec("45.90")), "total: %s", billing.TotalAmount)
}

func TestCreateInvoiceMissingJob(t *testing.T) {
	engine := newTestEngine(newFakeRepo())
	_, err := engine.CreateInvoice(context.Background(), 7, InvoiceOptions{})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestMarkPaidAndUnpaid(t *testing.T) {
	repo := scenarioRepo()
	engine := newTestEngine(repo)
	ctx := context.Background()

	billing, err := engine.CreateInvoice(ctx, 1, InvoiceOptions{})
	require.NoError(t, err)

	paidAt := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, engine.MarkPaid(ctx, billing.ID, paidAt, "bank transfer"))

	got, err := engine.GetInvoice(ctx, billing.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, got.PaymentStatus)
	require.NotNil(t, got.PaymentDate)
	assert.Equal(t, paidAt, *got.PaymentDate)
	assert.Equal(t, "bank transfer", got.PaymentMethod)

	require.NoError(t, engine.MarkUnpaid(ctx, billing.ID))
	got, err = engine.GetInvoice(ctx, billing.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentUnpaid, got.PaymentStatus)
	assert.Nil(t, got.PaymentDate)
}
