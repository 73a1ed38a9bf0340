package discounts

import (
	"time"

	"github.com/shopspring/decimal"
)

// Discount represents a configured discount rule. Base discounts apply to
// every job's pricing run; the pricing engine picks the active one.
type Discount struct {
	ID             int64           `json:"id"`
	Code           string          `json:"code"`
	DiscountType   string          `json:"discount_type"`
	Percent        decimal.Decimal `json:"percent"`
	Amount         decimal.Decimal `json:"amount"`
	IsBaseDiscount bool            `json:"is_base_discount"`
	IsActive       bool            `json:"is_active"`
	ValidFrom      *time.Time      `json:"valid_from,omitempty"`
	ValidTo        *time.Time      `json:"valid_to,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

const (
	TypePercentage = "percentage"
	TypeFixed      = "fixed"
)
