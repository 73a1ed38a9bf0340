package vehicles

import (
	"context"
	"errors"
	"strings"

	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
	"github.com/fleetdesk/fleetdesk/internal/shared"
)

type Manager struct {
	repo Repository
}

func NewManager(repo Repository) *Manager {
	return &Manager{repo: repo}
}

func (m *Manager) List(ctx context.Context, filters shared.ListFilters) ([]Vehicle, int, error) {
	return m.repo.List(ctx, filters)
}

func (m *Manager) Get(ctx context.Context, id int64) (Vehicle, error) {
	if id <= 0 {
		return Vehicle{}, errors.New("invalid vehicle ID")
	}
	return m.repo.Get(ctx, id)
}

func (m *Manager) Create(ctx context.Context, v Vehicle) (Vehicle, error) {
	if strings.TrimSpace(v.Number) == "" {
		return Vehicle{}, errors.New("vehicle number is required")
	}
	if _, err := m.repo.GetByNumber(ctx, v.Number); err == nil {
		return Vehicle{}, httpx.ErrDuplicate
	} else if !errors.Is(err, shared.ErrNotFound) {
		return Vehicle{}, err
	}
	if v.Status == "" {
		v.Status = StatusAvailable
	}
	return m.repo.Create(ctx, v)
}

func (m *Manager) Update(ctx context.Context, id int64, v Vehicle) error {
	if id <= 0 {
		return errors.New("invalid vehicle ID")
	}
	if strings.TrimSpace(v.Number) == "" {
		return errors.New("vehicle number is required")
	}
	return m.repo.Update(ctx, id, v)
}

func (m *Manager) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid vehicle ID")
	}
	return m.repo.Delete(ctx, id)
}

// QuickAdd creates an available vehicle from the quick-add payload.
func (m *Manager) QuickAdd(ctx context.Context, req QuickAddRequest) (Vehicle, error) {
	return m.Create(ctx, Vehicle{
		Name:   req.Name,
		Number: req.Number,
		Type:   req.Type,
		Status: StatusAvailable,
	})
}
