package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/example/auditplus/internal/core/access"
	"github.com/example/auditplus/internal/core/scoring"
	"github.com/example/auditplus/internal/core/weights"
	"github.com/example/auditplus/internal/ctxutil"
	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/ports/secondary"
)

// WeightServiceImpl implements the WeightService interface.
type WeightServiceImpl struct {
	weightRepo     secondary.WeightRepository
	evaluationRepo secondary.EvaluationRepository
	activity       *Activity
}

// NewWeightService creates a new WeightService with injected dependencies.
func NewWeightService(
	weightRepo secondary.WeightRepository,
	evaluationRepo secondary.EvaluationRepository,
	activity *Activity,
) *WeightServiceImpl {
	return &WeightServiceImpl{
		weightRepo:     weightRepo,
		evaluationRepo: evaluationRepo,
		activity:       activity,
	}
}

// ListWeights returns the current weights in factor order.
func (s *WeightServiceImpl) ListWeights(ctx context.Context) ([]*primary.Weight, error) {
	records, err := s.weightRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list weights: %w", err)
	}

	result := make([]*primary.Weight, len(records))
	for i, r := range records {
		result[i] = &primary.Weight{
			Factor:      r.Factor,
			Label:       r.Label,
			Weight:      r.Weight,
			Description: r.Description,
			UpdatedAt:   r.UpdatedAt,
		}
	}
	return result, nil
}

// UpdateWeights replaces the whole weight set and rescores every stored evaluation.
func (s *WeightServiceImpl) UpdateWeights(ctx context.Context, values map[string]float64) error {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor); err != nil {
		return err
	}

	w := make(scoring.Weights, len(values))
	for factor, v := range values {
		w[scoring.Factor(factor)] = v
	}
	if result := weights.ValidateWeights(w); !result.Allowed {
		return invalid(result.Reason)
	}

	if err := s.weightRepo.UpdateAll(ctx, values); err != nil {
		return fmt.Errorf("failed to update weights: %w", err)
	}

	rescored, err := s.rescore(ctx, w)
	if err != nil {
		return err
	}

	s.activity.Record(ctx, actionUpdate, moduleWeights, "%s (%d evaluaciones recalculadas)", formatWeights(w), rescored)
	return nil
}

// rescore recomputes the stored criticality of every evaluation with w.
func (s *WeightServiceImpl) rescore(ctx context.Context, w scoring.Weights) (int, error) {
	evaluations, err := s.evaluationRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list evaluations: %w", err)
	}
	for _, e := range evaluations {
		score := scoring.CalculateCriticality(recordToScoring(e), w)
		if err := s.evaluationRepo.UpdateCriticality(ctx, e.ProjectID, score); err != nil {
			return 0, fmt.Errorf("failed to update criticality of %s: %w", e.ProjectID, err)
		}
	}
	return len(evaluations), nil
}

// loadWeights reads the stored weight set.
func loadWeights(ctx context.Context, repo secondary.WeightRepository) (scoring.Weights, error) {
	records, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load weights: %w", err)
	}
	w := make(scoring.Weights, len(records))
	for _, r := range records {
		w[scoring.Factor(r.Factor)] = r.Weight
	}
	return w, nil
}

func recordToScoring(e *secondary.EvaluationRecord) scoring.Evaluation {
	return scoring.Evaluation{
		RiskLevel:          e.RiskLevel,
		MonthsSinceAudit:   e.MonthsSinceAudit,
		FindingsLastAudit:  e.FindingsLastAudit,
		FindingsResolved:   e.FindingsResolved,
		RotationCycleMonth: e.RotationCycle,
	}
}

func formatWeights(w scoring.Weights) string {
	parts := make([]string, 0, len(w))
	for f, v := range w {
		parts = append(parts, fmt.Sprintf("%s=%.2f", f, v))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

// Ensure WeightServiceImpl implements the interface
var _ primary.WeightService = (*WeightServiceImpl)(nil)
