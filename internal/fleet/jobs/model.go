package jobs

import (
	"time"

	"github.com/shopspring/decimal"
)

// Job represents a booking with its cached pricing snapshot. The snapshot
// fields are written by the billing engine and may go stale until the next
// recompute.
type Job struct {
	ID                int64  `json:"id"`
	CustomerName      string `json:"customer_name"`
	CustomerEmail     string `json:"customer_email"`
	CustomerMobile    string `json:"customer_mobile"`
	CustomerReference string `json:"customer_reference"`
	PassengerName     string `json:"passenger_name"`
	PassengerEmail    string `json:"passenger_email"`
	PassengerMobile   string `json:"passenger_mobile"`
	TypeOfService     string `json:"type_of_service"`
	ServiceID         *int64 `json:"service_id,omitempty"`
	PickupDate        string `json:"pickup_date"`
	PickupTime        string `json:"pickup_time"`
	PickupLocation    string `json:"pickup_location"`
	DropoffLocation   string `json:"dropoff_location"`
	VehicleType       string `json:"vehicle_type"`
	VehicleNumber     string `json:"vehicle_number"`
	DriverContact     string `json:"driver_contact"`
	PaymentMode       string `json:"payment_mode"`
	PaymentStatus     string `json:"payment_status"`
	OrderStatus       string `json:"order_status"`
	Message           string `json:"message"`
	Remarks           string `json:"remarks"`
	AdditionalStops   string `json:"additional_stops"`
	Reference         string `json:"reference"`
	Status            string `json:"status"`
	DriverID          *int64 `json:"driver_id,omitempty"`
	AgentID           *int64 `json:"agent_id,omitempty"`

	BasePrice                 decimal.Decimal `json:"base_price"`
	BaseDiscountPercent       decimal.Decimal `json:"base_discount_percent"`
	AgentDiscountPercent      decimal.Decimal `json:"agent_discount_percent"`
	AdditionalDiscountPercent decimal.Decimal `json:"additional_discount_percent"`
	AdditionalCharges         decimal.Decimal `json:"additional_charges"`
	FinalPrice                decimal.Decimal `json:"final_price"`
	InvoiceNumber             string          `json:"invoice_number"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Order status values used across listings and the dashboard.
const (
	OrderPending   = "Pending"
	OrderActive    = "Active"
	OrderCompleted = "Completed"
	OrderCancelled = "Cancelled"
)

const (
	PaymentUnpaid = "Unpaid"
	PaymentPaid   = "Paid"
)
