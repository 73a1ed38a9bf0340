package services

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service represents a bookable transport service with its base price.
type Service struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)
