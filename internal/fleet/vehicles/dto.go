package vehicles

// QuickAddRequest is the JSON payload for the quick-add endpoint.
type QuickAddRequest struct {
	Name   string `json:"name" validate:"omitempty,max=120"`
	Number string `json:"number" validate:"required,min=2,max=20"`
	Type   string `json:"type" validate:"omitempty,max=40"`
}
