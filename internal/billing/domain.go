package billing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DegradedReason marks inputs that were substituted with zero because the
// referenced row no longer exists.
type DegradedReason string

const (
	DegradedMissingService DegradedReason = "missing_service"
	DegradedMissingAgent   DegradedReason = "missing_agent"
)

var (
	// ErrInvalidPercent is returned when a discount percentage falls
	// outside [0, 100].
	ErrInvalidPercent = errors.New("billing: discount percent out of range")
	// ErrDiscountExceedsBase is returned when combined discounts would
	// drive the subtotal negative.
	ErrDiscountExceedsBase = errors.New("billing: combined discounts exceed base price")
	// ErrInvalidCharges is returned for negative additional charges.
	ErrInvalidCharges = errors.New("billing: additional charges cannot be negative")
)

// Breakdown is the full result of one pricing run. Every amount is rounded
// half-even to two decimal places.
type Breakdown struct {
	BasePrice decimal.Decimal `json:"base_price"`

	BaseDiscountPercent       decimal.Decimal `json:"base_discount_percent"`
	AgentDiscountPercent      decimal.Decimal `json:"agent_discount_percent"`
	AdditionalDiscountPercent decimal.Decimal `json:"additional_discount_percent"`

	BaseDiscountAmount       decimal.Decimal `json:"base_discount_amount"`
	AgentDiscountAmount      decimal.Decimal `json:"agent_discount_amount"`
	AdditionalDiscountAmount decimal.Decimal `json:"additional_discount_amount"`

	AdditionalCharges decimal.Decimal `json:"additional_charges"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	FinalPrice        decimal.Decimal `json:"final_price"`

	Degraded []DegradedReason `json:"degraded,omitempty"`
}

// IsDegraded reports whether any input was substituted with zero.
func (b Breakdown) IsDegraded() bool { return len(b.Degraded) > 0 }

// Billing is a generated invoice row.
type Billing struct {
	ID            int64           `json:"id"`
	JobID         int64           `json:"job_id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	DueDate       time.Time       `json:"due_date"`
	BasePrice     decimal.Decimal `json:"base_price"`

	BaseDiscountAmount       decimal.Decimal `json:"base_discount_amount"`
	AgentDiscountAmount      decimal.Decimal `json:"agent_discount_amount"`
	AdditionalDiscountAmount decimal.Decimal `json:"additional_discount_amount"`

	AdditionalCharges decimal.Decimal `json:"additional_charges"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	TotalAmount       decimal.Decimal `json:"total_amount"`

	PaymentStatus string     `json:"payment_status"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
	PaymentMethod string     `json:"payment_method"`

	Notes           string    `json:"notes"`
	TermsConditions string    `json:"terms_conditions"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

const (
	PaymentUnpaid = "Unpaid"
	PaymentPaid   = "Paid"
)

// JobInfo is the slice of a job the billing engine works with.
type JobInfo struct {
	ID            int64
	CustomerName  string
	CustomerEmail string
	ServiceID     *int64
	AgentID       *int64
	InvoiceNumber string
}

// PricingSnapshot holds the cached pricing fields written back to the job.
type PricingSnapshot struct {
	BasePrice                 decimal.Decimal
	BaseDiscountPercent       decimal.Decimal
	AgentDiscountPercent      decimal.Decimal
	AdditionalDiscountPercent decimal.Decimal
	AdditionalCharges         decimal.Decimal
	FinalPrice                decimal.Decimal
}

// InvoiceData bundles everything a renderer needs for one invoice.
type InvoiceData struct {
	Billing Billing
	Job     JobInfo
}
