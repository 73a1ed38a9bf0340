package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
	"github.com/fleetdesk/fleetdesk/internal/shared"
)

type Manager struct {
	repo Repository
}

func NewManager(repo Repository) *Manager {
	return &Manager{repo: repo}
}

func (m *Manager) List(ctx context.Context, filters shared.ListFilters) ([]Service, int, error) {
	return m.repo.List(ctx, filters)
}

func (m *Manager) Get(ctx context.Context, id int64) (Service, error) {
	if id <= 0 {
		return Service{}, errors.New("invalid service ID")
	}
	return m.repo.Get(ctx, id)
}

func (m *Manager) Create(ctx context.Context, svc Service) (Service, error) {
	if err := m.validate(svc); err != nil {
		return Service{}, err
	}
	if _, err := m.repo.GetByName(ctx, svc.Name); err == nil {
		return Service{}, httpx.ErrDuplicate
	} else if !errors.Is(err, shared.ErrNotFound) {
		return Service{}, err
	}
	if svc.Status == "" {
		svc.Status = StatusActive
	}
	return m.repo.Create(ctx, svc)
}

func (m *Manager) Update(ctx context.Context, id int64, svc Service) error {
	if id <= 0 {
		return errors.New("invalid service ID")
	}
	if err := m.validate(svc); err != nil {
		return err
	}
	return m.repo.Update(ctx, id, svc)
}

func (m *Manager) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid service ID")
	}
	return m.repo.Delete(ctx, id)
}

// QuickAdd creates an active service from the quick-add payload.
func (m *Manager) QuickAdd(ctx context.Context, req QuickAddRequest) (Service, error) {
	price, err := decimal.NewFromString(req.BasePrice)
	if err != nil || price.IsNegative() {
		return Service{}, httpx.ErrValidation
	}
	return m.Create(ctx, Service{
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   price,
		Status:      StatusActive,
	})
}
