package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/auditplus/internal/ports/primary"
)

// EvaluationAdapter prints the criticality ranking and the dashboard.
type EvaluationAdapter struct {
	evaluations primary.EvaluationService
	dashboard   primary.DashboardService
	out         io.Writer
}

// NewEvaluationAdapter creates a new EvaluationAdapter with the given services.
func NewEvaluationAdapter(evaluations primary.EvaluationService, dashboard primary.DashboardService, out io.Writer) *EvaluationAdapter {
	return &EvaluationAdapter{evaluations: evaluations, dashboard: dashboard, out: out}
}

// Ranking lists every universe project by descending criticality.
func (a *EvaluationAdapter) Ranking(ctx context.Context) error {
	list, err := a.evaluations.ListEvaluations(ctx)
	if err != nil {
		return fmt.Errorf("failed to list evaluations: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No projects in the universe")
		return nil
	}

	tw := newTable(a.out)
	fmt.Fprintln(tw, "#\tCODE\tRISK\tMONTHS\tFINDINGS\tRESOLVED\tCYCLE\tLAST AUDIT\tSCORE\tLEVEL")
	for i, e := range list {
		marker := ""
		if !e.Stored {
			marker = "*"
		}
		fmt.Fprintf(tw, "%d\t%s%s\t%d\t%d\t%d\t%d\t%d\t%s\t%.2f\t%s\n",
			i+1, e.ProjectCode, marker, e.RiskLevel, e.MonthsSinceAudit, e.FindingsLastAudit,
			e.FindingsResolved, e.RotationCycle, e.LastAuditStatus, e.Criticality, levelColor(e.CriticalityLevel))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "\n* not yet evaluated, default values shown")
	return nil
}

// Save stores an evaluation and prints the resulting criticality.
func (a *EvaluationAdapter) Save(ctx context.Context, req primary.SaveEvaluationRequest) error {
	e, err := a.evaluations.SaveEvaluation(ctx, req)
	if err != nil {
		return err
	}
	success(a.out, "Evaluated %s: criticality %.2f (%s)", e.ProjectCode, e.Criticality, levelColor(e.CriticalityLevel))
	return nil
}

// Sync derives audit history from plans.
func (a *EvaluationAdapter) Sync(ctx context.Context) error {
	n, err := a.evaluations.SyncFromPlans(ctx)
	if err != nil {
		return err
	}
	success(a.out, "Synchronized %d project(s) from plans", n)
	return nil
}

// Dashboard prints the summary counts, optionally for one plan.
func (a *EvaluationAdapter) Dashboard(ctx context.Context, planID string) error {
	s, err := a.dashboard.Summary(ctx, planID)
	if err != nil {
		return fmt.Errorf("failed to build dashboard: %w", err)
	}

	scope := "all plans"
	if s.PlanID != "" {
		scope = s.PlanID
	}
	fmt.Fprintf(a.out, "\nDashboard (%s)\n", scope)
	fmt.Fprintf(a.out, "Universe projects: %d (%d critical)\n", s.UniverseProjects, s.CriticalProjects)
	fmt.Fprintf(a.out, "Findings:          %d\n", s.TotalFindings)
	if s.OverdueSwept > 0 {
		fmt.Fprintf(a.out, "Newly overdue:     %d\n", s.OverdueSwept)
	}

	for _, group := range []struct {
		title  string
		counts map[string]int
	}{
		{"Findings by status", s.FindingsByStatus},
		{"Findings by risk", s.FindingsByRisk},
		{"Findings by area", s.FindingsByArea},
		{"Projects by status", s.ProjectsByStatus},
	} {
		if len(group.counts) == 0 {
			continue
		}
		fmt.Fprintf(a.out, "\n%s:\n", group.title)
		printCounts(a.out, group.counts)
	}
	fmt.Fprintln(a.out)
	return nil
}
