package agents

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

func (m *Manager) List(ctx context.Context, filters shared.ListFilters) ([]Agent, int, error) {
	return m.repo.List(ctx, filters)
}

func (m *Manager) Get(ctx context.Context, id int64) (Agent, error) {
	if id <= 0 {
		return Agent{}, errors.New("invalid agent ID")
	}
	return m.repo.Get(ctx, id)
}

func (m *Manager) Create(ctx context.Context, a Agent) (Agent, error) {
	if err := m.validate(a); err != nil {
		return Agent{}, err
	}
	if _, err := m.repo.GetByName(ctx, a.Name); err == nil {
		return Agent{}, httpx.ErrDuplicate
	} else if !errors.Is(err, shared.ErrNotFound) {
		return Agent{}, err
	}
	if a.Status == "" {
		a.Status = StatusActive
	}
	return m.repo.Create(ctx, a)
}

func (m *Manager) Update(ctx context.Context, id int64, a Agent) error {
	if id <= 0 {
		return errors.New("invalid agent ID")
	}
	if err := m.validate(a); err != nil {
		return err
	}
	return m.repo.Update(ctx, id, a)
}

func (m *Manager) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid agent ID")
	}
	return m.repo.Delete(ctx, id)
}

// QuickAdd creates an active agent from the quick-add payload.
func (m *Manager) QuickAdd(ctx context.Context, req QuickAddRequest) (Agent, error) {
	percent := decimal.Zero
	if req.DiscountPercent != "" {
		p, err := decimal.NewFromString(req.DiscountPercent)
		if err != nil {
			return Agent{}, httpx.ErrValidation
		}
		percent = p
	}
	return m.Create(ctx, Agent{
		Name:            req.Name,
		Email:           req.Email,
		Mobile:          req.Mobile,
		Status:          StatusActive,
		DiscountPercent: percent,
	})
}
