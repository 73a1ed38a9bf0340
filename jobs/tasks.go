package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPricingRefresh recomputes cached pricing for jobs without an invoice.
	TaskPricingRefresh = "pricing:refresh"
)

// PricingRefreshPayload scopes one pricing refresh run.
type PricingRefreshPayload struct {
	// Scope is "uninvoiced" (default) or "all".
	Scope string `json:"scope"`
}

// NewPricingRefreshTask constructs an Asynq task.
func NewPricingRefreshTask(scope string) (*asynq.Task, error) {
	data, err := json.Marshal(PricingRefreshPayload{Scope: scope})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPricingRefresh, data), nil
}
