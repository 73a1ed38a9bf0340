package agents

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func (m *Manager) validate(a Agent) error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("agent name is required")
	}
	if a.DiscountPercent.IsNegative() || a.DiscountPercent.GreaterThan(hundred) {
		return errors.New("agent discount percent must be between 0 and 100")
	}
	if a.Status != "" && a.Status != StatusActive && a.Status != StatusInactive {
		return errors.New("status must be Active or Inactive")
	}
	return nil
}
