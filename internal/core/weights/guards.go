// Package weights contains the pure validation rules for evaluation weights.
package weights

import (
	"fmt"
	"math"

	"github.com/example/auditplus/internal/core/scoring"
)

// SumTolerance is how far the weight total may drift from 1.0.
const SumTolerance = 0.01

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	Total   float64
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// ValidateWeights evaluates whether a weight set may be saved.
// Rules:
// - Every factor must be present
// - Each weight must be within [0,1]
// - The total must be within SumTolerance of 1.0
func ValidateWeights(w scoring.Weights) GuardResult {
	total := 0.0
	for _, f := range scoring.AllFactors() {
		v, ok := w[f]
		if !ok {
			return GuardResult{Allowed: false, Reason: fmt.Sprintf("missing weight for %s", f)}
		}
		if v < 0 || v > 1 {
			return GuardResult{Allowed: false, Reason: fmt.Sprintf("weight for %s must be between 0 and 1 (got %.2f)", f, v)}
		}
		total += v
	}

	for f := range w {
		if !isKnown(f) {
			return GuardResult{Allowed: false, Reason: fmt.Sprintf("unknown factor %s", f)}
		}
	}

	if math.Abs(total-1.0) >= SumTolerance {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("weights must sum to 1.00 (current total: %.2f)", total),
			Total:   total,
		}
	}

	return GuardResult{Allowed: true, Total: total}
}

func isKnown(f scoring.Factor) bool {
	for _, known := range scoring.AllFactors() {
		if known == f {
			return true
		}
	}
	return false
}
