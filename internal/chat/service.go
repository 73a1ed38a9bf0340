package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Response is one chat answer: a human line plus optional result records.
type Response struct {
	Message string `json:"response"`
	Data    []Row  `json:"data,omitempty"`
}

const helpText = "You can ask me about jobs (active, pending, completed, cancelled, unpaid, paid), " +
	"drivers, vehicles, agents, services, billing, payment status, or the dashboard summary."

const fallbackText = "I'm not sure what you're asking for. Try asking about jobs, drivers, " +
	"vehicles, agents, services, or payment status."

// Responder answers chat messages from canned store lookups.
type Responder struct {
	logger *slog.Logger
	store  Store
}

func NewResponder(logger *slog.Logger, store Store) *Responder {
	return &Responder{logger: logger, store: store}
}

// Respond classifies the message and runs the matching lookup. Sub-keywords
// inside a topic narrow the query, e.g. "active jobs" or "available drivers".
func (s *Responder) Respond(ctx context.Context, message string) (Response, error) {
	switch Classify(message) {
	case TopicJobs:
		return s.jobs(ctx, message)
	case TopicDrivers:
		return s.drivers(ctx, message)
	case TopicVehicles:
		return s.vehicles(ctx, message)
	case TopicAgents:
		return s.collection(ctx, s.store.Agents, "agent")
	case TopicServices:
		return s.collection(ctx, s.store.Services, "service")
	case TopicBilling:
		return s.collection(ctx, s.store.Billings, "invoice")
	case TopicPayment:
		return s.payment(ctx)
	case TopicStatus:
		return s.status(ctx)
	case TopicDashboard:
		return s.dashboard(ctx)
	case TopicHelp:
		return Response{Message: helpText}, nil
	default:
		return Response{Message: fallbackText}, nil
	}
}

func (s *Responder) jobs(ctx context.Context, message string) (Response, error) {
	var (
		rows  []Row
		label string
		err   error
	)
	switch {
	case hasKeyword(message, "active"):
		rows, err = s.store.JobsByOrderStatus(ctx, "New", "In Progress")
		label = "active job"
	case hasKeyword(message, "pending"):
		rows, err = s.store.JobsByOrderStatus(ctx, "Pending")
		label = "pending job"
	case hasKeyword(message, "completed"):
		rows, err = s.store.JobsByOrderStatus(ctx, "Completed")
		label = "completed job"
	case hasKeyword(message, "cancelled"):
		rows, err = s.store.JobsByOrderStatus(ctx, "Cancelled")
		label = "cancelled job"
	case hasKeyword(message, "unpaid"):
		rows, err = s.store.JobsByPaymentStatus(ctx, "Unpaid")
		label = "unpaid job"
	case hasKeyword(message, "paid"):
		rows, err = s.store.JobsByPaymentStatus(ctx, "Paid")
		label = "paid job"
	default:
		rows, err = s.store.RecentJobs(ctx)
		label = "recent job"
	}
	if err != nil {
		return Response{}, err
	}
	return listResponse(rows, label), nil
}

func (s *Responder) drivers(ctx context.Context, message string) (Response, error) {
	availableOnly := hasKeyword(message, "available")
	rows, err := s.store.Drivers(ctx, availableOnly)
	if err != nil {
		return Response{}, err
	}
	label := "driver"
	if availableOnly {
		label = "available driver"
	}
	return listResponse(rows, label), nil
}

func (s *Responder) vehicles(ctx context.Context, message string) (Response, error) {
	availableOnly := hasKeyword(message, "available")
	rows, err := s.store.Vehicles(ctx, availableOnly)
	if err != nil {
		return Response{}, err
	}
	label := "vehicle"
	if availableOnly {
		label = "available vehicle"
	}
	return listResponse(rows, label), nil
}

func (s *Responder) collection(ctx context.Context, query func(context.Context) ([]Row, error), label string) (Response, error) {
	rows, err := query(ctx)
	if err != nil {
		return Response{}, err
	}
	return listResponse(rows, label), nil
}

func (s *Responder) payment(ctx context.Context) (Response, error) {
	unpaid, paid, err := s.store.PaymentCounts(ctx)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Message: fmt.Sprintf("Payment status: %d unpaid and %d paid jobs.", unpaid, paid),
	}, nil
}

func (s *Responder) status(ctx context.Context) (Response, error) {
	counts, err := s.store.StatusCounts(ctx)
	if err != nil {
		return Response{}, err
	}
	if len(counts) == 0 {
		return Response{Message: "No jobs recorded yet."}, nil
	}
	statuses := make([]string, 0, len(counts))
	for status := range counts {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	parts := make([]string, 0, len(statuses))
	for _, status := range statuses {
		parts = append(parts, fmt.Sprintf("%s: %d", status, counts[status]))
	}
	return Response{Message: "Job status counts: " + strings.Join(parts, ", ") + "."}, nil
}

func (s *Responder) dashboard(ctx context.Context) (Response, error) {
	c, err := s.store.DashboardCounts(ctx)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Message: fmt.Sprintf(
			"Summary: %d jobs total (%d active, %d completed), %d drivers, %d vehicles, %d unpaid jobs.",
			c.TotalJobs, c.ActiveJobs, c.CompletedJobs, c.TotalDrivers, c.TotalVehicles, c.UnpaidInvoices),
	}, nil
}

func listResponse(rows []Row, label string) Response {
	if len(rows) == 0 {
		return Response{Message: fmt.Sprintf("No %ss found.", label), Data: []Row{}}
	}
	noun := label + "s"
	if len(rows) == 1 {
		noun = label
	}
	message := fmt.Sprintf("Found %d %s.", len(rows), noun)
	if len(rows) == resultCap {
		message = fmt.Sprintf("Showing the latest %d %s.", resultCap, noun)
	}
	return Response{Message: message, Data: rows}
}
