package app

import (
	"context"
	"fmt"

	"github.com/example/auditplus/internal/core/scoring"
	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/ports/secondary"
)

// overdueSweeper is the part of FindingService the dashboard needs.
type overdueSweeper interface {
	SweepOverdue(ctx context.Context) (int64, error)
}

// DashboardServiceImpl implements the DashboardService interface.
type DashboardServiceImpl struct {
	sweeper         overdueSweeper
	evaluations     primary.EvaluationService
	findingRepo     secondary.FindingRepository
	planProjectRepo secondary.PlanProjectRepository
	universeRepo    secondary.UniverseRepository
}

// NewDashboardService creates a new DashboardService with injected dependencies.
func NewDashboardService(
	sweeper overdueSweeper,
	evaluations primary.EvaluationService,
	findingRepo secondary.FindingRepository,
	planProjectRepo secondary.PlanProjectRepository,
	universeRepo secondary.UniverseRepository,
) *DashboardServiceImpl {
	return &DashboardServiceImpl{
		sweeper:         sweeper,
		evaluations:     evaluations,
		findingRepo:     findingRepo,
		planProjectRepo: planProjectRepo,
		universeRepo:    universeRepo,
	}
}

// Summary sweeps overdue findings, then counts findings and plan-projects.
// An empty planID summarizes every plan.
func (s *DashboardServiceImpl) Summary(ctx context.Context, planID string) (*primary.DashboardSummary, error) {
	swept, err := s.sweeper.SweepOverdue(ctx)
	if err != nil {
		return nil, err
	}

	summary := &primary.DashboardSummary{
		PlanID:           planID,
		OverdueSwept:     swept,
		ProjectsByStatus: make(map[string]int),
	}

	filters := secondary.FindingFilters{PlanID: planID}
	if summary.FindingsByStatus, err = s.findingRepo.CountBy(ctx, "status", filters); err != nil {
		return nil, fmt.Errorf("failed to count findings by status: %w", err)
	}
	if summary.FindingsByRisk, err = s.findingRepo.CountBy(ctx, "risk_level", filters); err != nil {
		return nil, fmt.Errorf("failed to count findings by risk: %w", err)
	}
	if summary.FindingsByArea, err = s.findingRepo.CountBy(ctx, "area", filters); err != nil {
		return nil, fmt.Errorf("failed to count findings by area: %w", err)
	}
	for _, n := range summary.FindingsByStatus {
		summary.TotalFindings += n
	}

	projects, err := s.planProjectRepo.List(ctx, secondary.PlanProjectFilters{PlanID: planID})
	if err != nil {
		return nil, fmt.Errorf("failed to list plan-projects: %w", err)
	}
	for _, p := range projects {
		summary.ProjectsByStatus[p.Status]++
	}

	universe, err := s.universeRepo.ListProjects(ctx, secondary.UniverseFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list universe projects: %w", err)
	}
	summary.UniverseProjects = len(universe)

	ranking, err := s.evaluations.ListEvaluations(ctx)
	if err != nil {
		return nil, err
	}
	for _, ev := range ranking {
		if scoring.RiskLevel(ev.CriticalityLevel).Rank() >= scoring.RiskHigh.Rank() {
			summary.CriticalProjects++
		}
	}

	return summary, nil
}

// Ensure DashboardServiceImpl implements the interface
var _ primary.DashboardService = (*DashboardServiceImpl)(nil)
