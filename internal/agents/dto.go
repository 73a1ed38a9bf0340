package agents

// QuickAddRequest is the JSON payload for the quick-add endpoint.
type QuickAddRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=120"`
	Email           string `json:"email" validate:"omitempty,email"`
	Mobile          string `json:"mobile" validate:"omitempty,max=20"`
	DiscountPercent string `json:"agent_discount_percent" validate:"omitempty"`
}
