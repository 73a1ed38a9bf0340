package jobs

import (
	"context"
	"errors"
	"strings"
)

type Manager struct {
	repo Repository
}

func NewManager(repo Repository) *Manager {
	return &Manager{repo: repo}
}

func (m *Manager) List(ctx context.Context, filters ListFilters) ([]Job, int, error) {
	return m.repo.List(ctx, filters)
}

func (m *Manager) All(ctx context.Context) ([]Job, error) {
	return m.repo.All(ctx)
}

func (m *Manager) Get(ctx context.Context, id int64) (Job, error) {
	if id <= 0 {
		return Job{}, errors.New("invalid job ID")
	}
	return m.repo.Get(ctx, id)
}

func (m *Manager) Create(ctx context.Context, job Job) (Job, error) {
	if err := m.validate(job); err != nil {
		return Job{}, err
	}
	if job.PaymentStatus == "" {
		job.PaymentStatus = PaymentUnpaid
	}
	if job.OrderStatus == "" {
		job.OrderStatus = OrderPending
	}
	return m.repo.Create(ctx, job)
}

func (m *Manager) Update(ctx context.Context, id int64, job Job) error {
	if id <= 0 {
		return errors.New("invalid job ID")
	}
	if err := m.validate(job); err != nil {
		return err
	}
	return m.repo.Update(ctx, id, job)
}

func (m *Manager) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid job ID")
	}
	return m.repo.Delete(ctx, id)
}

// CreateFromMessage parses a pasted booking message and creates a job from
// the extracted fields.
func (m *Manager) CreateFromMessage(ctx context.Context, message string) (Job, map[string]string, error) {
	data := ParseMessage(message)
	var job Job
	ApplyParsed(&job, data)
	job.Message = message
	created, err := m.Create(ctx, job)
	return created, data, err
}

func (m *Manager) validate(job Job) error {
	if strings.TrimSpace(job.CustomerName) == "" && strings.TrimSpace(job.PassengerName) == "" {
		return errors.New("customer or passenger name is required")
	}
	return nil
}
