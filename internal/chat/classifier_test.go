package chat

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/fleetdesk/fleetdesk/testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		message string
		want    Topic
	}{
		{"show me all jobs", TopicJobs},
		{"any active jobs today?", TopicJobs},
		{"unpaid jobs", TopicJobs},
		{"list drivers", TopicDrivers},
		{"available drivers please", TopicDrivers},
		{"which vehicles are free", TopicVehicles},
		{"agents", TopicAgents},
		{"what services do we offer", TopicServices},
		{"billing", TopicBilling},
		{"show billings", TopicBilling},
		{"payment overview", TopicPayment},
		{"what's the status", TopicStatus},
		{"dashboard", TopicDashboard},
		{"give me a summary", TopicDashboard},
		{"help", TopicHelp},
		{"what can you do", TopicHelp},
		{"", TopicUnknown},
		{"tell me a joke", TopicUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.message), "message: %q", tc.message)
	}
}

func TestClassifyOrderJobsBeforePayment(t *testing.T) {
	// A message matching several topics resolves to the earliest rule.
	assert.Equal(t, TopicJobs, Classify("payment status of my jobs"))
	assert.Equal(t, TopicDrivers, Classify("driver status"))
	assert.Equal(t, TopicPayment, Classify("payment status"))
}

type fakeStore struct {
	jobsByOrder   map[string][]Row
	jobsByPayment map[string][]Row
	recent        []Row
	drivers       []Row
	available     []Row
	vehicles      []Row
	agents        []Row
	services      []Row
	billings      []Row
	unpaid, paid  int
	statusCounts  map[string]int
	dashboard     DashboardCounts
}

func (f *fakeStore) RecentJobs(ctx context.Context) ([]Row, error) { return f.recent, nil }

func (f *fakeStore) JobsByOrderStatus(ctx context.Context, statuses ...string) ([]Row, error) {
	var out []Row
	for _, status := range statuses {
		out = append(out, f.jobsByOrder[status]...)
	}
	return out, nil
}

func (f *fakeStore) JobsByPaymentStatus(ctx context.Context, status string) ([]Row, error) {
	return f.jobsByPayment[status], nil
}

func (f *fakeStore) Drivers(ctx context.Context, availableOnly bool) ([]Row, error) {
	if availableOnly {
		return f.available, nil
	}
	return f.drivers, nil
}

func (f *fakeStore) Vehicles(ctx context.Context, availableOnly bool) ([]Row, error) {
	return f.vehicles, nil
}

func (f *fakeStore) Agents(ctx context.Context) ([]Row, error)   { return f.agents, nil }
func (f *fakeStore) Services(ctx context.Context) ([]Row, error) { return f.services, nil }
func (f *fakeStore) Billings(ctx context.Context) ([]Row, error) { return f.billings, nil }

func (f *fakeStore) PaymentCounts(ctx context.Context) (int, int, error) {
	return f.unpaid, f.paid, nil
}

func (f *fakeStore) StatusCounts(ctx context.Context) (map[string]int, error) {
	return f.statusCounts, nil
}

func (f *fakeStore) DashboardCounts(ctx context.Context) (DashboardCounts, error) {
	return f.dashboard, nil
}

var _ Store = (*fakeStore)(nil)

func newTestResponder(store Store) *Responder {
	return NewResponder(slog.Default(), store)
}

func TestRespondActiveJobs(t *testing.T) {
	store := &fakeStore{jobsByOrder: map[string][]Row{
		"New":         {{"id": int64(1)}},
		"In Progress": {{"id": int64(2)}},
	}}
	resp, err := newTestResponder(store).Respond(context.Background(), "show active jobs")
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, "Found 2 active jobs.", resp.Message)
}

func TestRespondUnpaidJobs(t *testing.T) {
	store := &fakeStore{jobsByPayment: map[string][]Row{
		"Unpaid": {{"id": int64(3)}},
	}}
	resp, err := newTestResponder(store).Respond(context.Background(), "unpaid jobs")
	require.NoError(t, err)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, "Found 1 unpaid job.", resp.Message)
}

func TestRespondRecentJobsDefault(t *testing.T) {
	store := &fakeStore{recent: []Row{{"id": int64(1)}, {"id": int64(2)}}}
	resp, err := newTestResponder(store).Respond(context.Background(), "jobs")
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)
}

func TestRespondAvailableDrivers(t *testing.T) {
	store := &fakeStore{
		drivers:   []Row{{"name": "A"}, {"name": "B"}},
		available: []Row{{"name": "B"}},
	}
	resp, err := newTestResponder(store).Respond(context.Background(), "available drivers")
	require.NoError(t, err)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, "Found 1 available driver.", resp.Message)

	resp, err = newTestResponder(store).Respond(context.Background(), "drivers")
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)
}

func TestRespondEmptyResult(t *testing.T) {
	resp, err := newTestResponder(&fakeStore{}).Respond(context.Background(), "vehicles")
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
	assert.Equal(t, "No vehicles found.", resp.Message)
}

func TestRespondPaymentSummary(t *testing.T) {
	store := &fakeStore{unpaid: 4, paid: 9}
	resp, err := newTestResponder(store).Respond(context.Background(), "payment")
	require.NoError(t, err)
	assert.Nil(t, resp.Data)
	assert.Equal(t, "Payment status: 4 unpaid and 9 paid jobs.", resp.Message)
}

func TestRespondStatusSummary(t *testing.T) {
	store := &fakeStore{statusCounts: map[string]int{"Completed": 2, "New": 1}}
	resp, err := newTestResponder(store).Respond(context.Background(), "status")
	require.NoError(t, err)
	assert.Equal(t, "Job status counts: Completed: 2, New: 1.", resp.Message)
}

func TestRespondDashboardSummary(t *testing.T) {
	store := &fakeStore{dashboard: DashboardCounts{
		TotalJobs: 10, ActiveJobs: 3, CompletedJobs: 6,
		TotalDrivers: 4, TotalVehicles: 5, UnpaidInvoices: 2,
	}}
	resp, err := newTestResponder(store).Respond(context.Background(), "dashboard")
	require.NoError(t, err)
	assert.Equal(t, "Summary: 10 jobs total (3 active, 6 completed), 4 drivers, 5 vehicles, 2 unpaid jobs.", resp.Message)
}

func TestRespondFallback(t *testing.T) {
	resp, err := newTestResponder(&fakeStore{}).Respond(context.Background(), "sing me a song")
	require.NoError(t, err)
	assert.Contains(t, resp.Message, "not sure")
}
