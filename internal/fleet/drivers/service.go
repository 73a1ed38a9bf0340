package drivers

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

func (m *Manager) List(ctx context.Context, filters shared.ListFilters) ([]Driver, int, error) {
	return m.repo.List(ctx, filters)
}

func (m *Manager) Get(ctx context.Context, id int64) (Driver, error) {
	if id <= 0 {
		return Driver{}, errors.New("invalid driver ID")
	}
	return m.repo.Get(ctx, id)
}

func (m *Manager) Create(ctx context.Context, d Driver) (Driver, error) {
	if strings.TrimSpace(d.Name) == "" {
		return Driver{}, errors.New("driver name is required")
	}
	if _, err := m.repo.GetByName(ctx, d.Name); err == nil {
		return Driver{}, httpx.ErrDuplicate
	} else if !errors.Is(err, shared.ErrNotFound) {
		return Driver{}, err
	}
	return m.repo.Create(ctx, d)
}

func (m *Manager) Update(ctx context.Context, id int64, d Driver) error {
	if id <= 0 {
		return errors.New("invalid driver ID")
	}
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("driver name is required")
	}
	return m.repo.Update(ctx, id, d)
}

func (m *Manager) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid driver ID")
	}
	return m.repo.Delete(ctx, id)
}

// QuickAdd creates a driver from the quick-add payload.
func (m *Manager) QuickAdd(ctx context.Context, req QuickAddRequest) (Driver, error) {
	return m.Create(ctx, Driver{
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		LicenseNumber: req.LicenseNumber,
	})
}
