package services

// QuickAddRequest is the JSON payload for the quick-add endpoint.
type QuickAddRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"max=500"`
	BasePrice   string `json:"base_price" validate:"required"`
}
