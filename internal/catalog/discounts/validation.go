package discounts

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func (m *Manager) validate(d Discount) error {
	if strings.TrimSpace(d.Code) == "" {
		return errors.New("discount code is required")
	}
	if d.DiscountType != TypePercentage && d.DiscountType != TypeFixed {
		return errors.New("discount type must be percentage or fixed")
	}
	if d.Percent.IsNegative() || d.Percent.GreaterThan(hundred) {
		return errors.New("percent must be between 0 and 100")
	}
	if d.Amount.IsNegative() {
		return errors.New("amount cannot be negative")
	}
	if d.ValidFrom != nil && d.ValidTo != nil && d.ValidTo.Before(*d.ValidFrom) {
		return errors.New("valid_to cannot precede valid_from")
	}
	return nil
}
