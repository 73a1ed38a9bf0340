package vehicles

import "time"

// Vehicle represents a fleet vehicle identified by its registration number.
type Vehicle struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Number    string    `json:"number"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	StatusAvailable   = "Available"
	StatusOnJob       = "On Job"
	StatusMaintenance = "Maintenance"
)
