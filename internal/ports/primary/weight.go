package primary

import "context"

// WeightService defines the primary port for criticality weights.
type WeightService interface {
	// ListWeights returns the five factor weights.
	ListWeights(ctx context.Context) ([]*Weight, error)

	// UpdateWeights replaces the weights after validating that they sum to 1.
	// Stored criticality scores are recomputed with the new weights.
	UpdateWeights(ctx context.Context, weights map[string]float64) error
}

// Weight is a factor weight.
type Weight struct {
	Factor      string  `json:"factor"`
	Label       string  `json:"label"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}
