package drivers

// QuickAddRequest is the JSON payload for the quick-add endpoint.
type QuickAddRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=120"`
	Phone         string `json:"phone" validate:"omitempty,max=20"`
	Email         string `json:"email" validate:"omitempty,email"`
	LicenseNumber string `json:"license_number" validate:"omitempty,max=40"`
}
