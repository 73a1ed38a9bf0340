package agents

import (
	"time"

	"github.com/shopspring/decimal"
)

// Agent represents a booking agent with a negotiated discount percentage.
type Agent struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Mobile          string          `json:"mobile"`
	Type            string          `json:"type"`
	Status          string          `json:"status"`
	DiscountPercent decimal.Decimal `json:"agent_discount_percent"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)
