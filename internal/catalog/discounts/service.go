package discounts

import (
	"context"
	"errors"

	"github.com/fleetdesk/fleetdesk/internal/shared"
)

type Manager struct {
	repo Repository
}

func NewManager(repo Repository) *Manager {
	return &Manager{repo: repo}
}

func (m *Manager) List(ctx context.Context, filters shared.ListFilters) ([]Discount, int, error) {
	return m.repo.List(ctx, filters)
}

func (m *Manager) Get(ctx context.Context, id int64) (Discount, error) {
	if id <= 0 {
		return Discount{}, errors.New("invalid discount ID")
	}
	return m.repo.Get(ctx, id)
}

// ActiveBaseDiscount resolves the base discount applied to every pricing run.
func (m *Manager) ActiveBaseDiscount(ctx context.Context) (Discount, error) {
	return m.repo.ActiveBaseDiscount(ctx)
}

func (m *Manager) Create(ctx context.Context, d Discount) (Discount, error) {
	if err := m.validate(d); err != nil {
		return Discount{}, err
	}
	return m.repo.Create(ctx, d)
}

func (m *Manager) Update(ctx context.Context, id int64, d Discount) error {
	if id <= 0 {
		return errors.New("invalid discount ID")
	}
	if err := m.validate(d); err != nil {
		return err
	}
	return m.repo.Update(ctx, id, d)
}

func (m *Manager) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid discount ID")
	}
	return m.repo.Delete(ctx, id)
}
