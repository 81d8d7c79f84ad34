package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/example/auditplus/internal/ports/primary"
)

// PlanAdapter translates plan and plan-project commands into PlanService calls.
type PlanAdapter struct {
	service primary.PlanService
	out     io.Writer
}

// NewPlanAdapter creates a new PlanAdapter with the given service.
func NewPlanAdapter(service primary.PlanService, out io.Writer) *PlanAdapter {
	return &PlanAdapter{service: service, out: out}
}

// Create creates a plan.
func (a *PlanAdapter) Create(ctx context.Context, req primary.CreatePlanRequest) error {
	plan, err := a.service.CreatePlan(ctx, req)
	if err != nil {
		return err
	}
	success(a.out, "Created plan %s: %s (%d)", plan.ID, plan.Name, plan.Year)
	return nil
}

// List lists plans.
func (a *PlanAdapter) List(ctx context.Context, filters primary.PlanFilters) error {
	plans, err := a.service.ListPlans(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list plans: %w", err)
	}
	if len(plans) == 0 {
		fmt.Fprintln(a.out, "No plans found")
		return nil
	}

	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tCODE\tYEAR\tPROJECTS\tSTATUS\tNAME")
	for _, p := range plans {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n", p.ID, p.Code, p.Year, p.ProjectCount, p.Status, p.Name)
	}
	return tw.Flush()
}

// Show prints a plan with its plan-projects.
func (a *PlanAdapter) Show(ctx context.Context, planID string) error {
	detail, err := a.service.GetPlan(ctx, planID)
	if err != nil {
		return fmt.Errorf("failed to get plan: %w", err)
	}

	p := detail.Plan
	fmt.Fprintf(a.out, "\nPlan: %s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(a.out, "Code:     %s\n", p.Code)
	fmt.Fprintf(a.out, "Year:     %d\n", p.Year)
	fmt.Fprintf(a.out, "Status:   %s\n", p.Status)
	fmt.Fprintf(a.out, "Findings: %d\n", detail.FindingCount)

	if len(detail.ProjectStatus) > 0 {
		statuses := make([]string, 0, len(detail.ProjectStatus))
		for s := range detail.ProjectStatus {
			statuses = append(statuses, s)
		}
		sort.Strings(statuses)
		fmt.Fprint(a.out, "Projects:")
		for _, s := range statuses {
			fmt.Fprintf(a.out, " %s=%d", s, detail.ProjectStatus[s])
		}
		fmt.Fprintln(a.out)
	}

	if len(detail.Projects) == 0 {
		fmt.Fprintln(a.out, "\nNo projects in plan")
		fmt.Fprintln(a.out)
		return nil
	}
	fmt.Fprintln(a.out)
	if err := a.projectTable(detail.Projects); err != nil {
		return err
	}
	fmt.Fprintln(a.out)
	return nil
}

// Copy deep-copies universe projects into a plan.
func (a *PlanAdapter) Copy(ctx context.Context, planID string, projectIDs []string) error {
	resp, err := a.service.CopyProjectsToPlan(ctx, primary.CopyProjectsRequest{
		PlanID:     planID,
		ProjectIDs: projectIDs,
	})
	if err != nil {
		return err
	}
	success(a.out, "Copied %d project(s) into %s (%d sections, %d subsections)",
		len(resp.PlanProjectIDs), planID, resp.Sections, resp.Subsections)
	for _, id := range resp.Skipped {
		fmt.Fprintf(a.out, "  skipped %s: already in plan\n", id)
	}
	return nil
}

// ListProjects lists plan-projects.
func (a *PlanAdapter) ListProjects(ctx context.Context, filters primary.PlanProjectFilters) error {
	projects, err := a.service.ListPlanProjects(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list plan projects: %w", err)
	}
	if len(projects) == 0 {
		fmt.Fprintln(a.out, "No plan projects found")
		return nil
	}
	return a.projectTable(projects)
}

func (a *PlanAdapter) projectTable(projects []*primary.PlanProject) error {
	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tCODE\tPLANNED\tSUPERVISOR\tAUDITOR\tSTATUS\tNAME")
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Code, orDash(p.PlannedStart), orDash(p.SupervisorID), orDash(p.FieldAuditorID),
			statusColor(p.Status), p.Name)
	}
	return tw.Flush()
}

// ShowProject prints a plan-project with its copied tree.
func (a *PlanAdapter) ShowProject(ctx context.Context, planProjectID string) error {
	detail, err := a.service.GetPlanProject(ctx, planProjectID)
	if err != nil {
		return fmt.Errorf("failed to get plan project: %w", err)
	}

	p := detail.Project
	fmt.Fprintf(a.out, "\nPlan project: %s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(a.out, "Code:       %s\n", p.Code)
	fmt.Fprintf(a.out, "Plan:       %s\n", p.PlanID)
	fmt.Fprintf(a.out, "Origin:     %s\n", p.OriginProjectID)
	fmt.Fprintf(a.out, "Status:     %s\n", statusColor(p.Status))
	fmt.Fprintf(a.out, "Planned:    %s → %s\n", orDash(p.PlannedStart), orDash(p.PlannedEnd))
	if p.ActualStart != "" {
		fmt.Fprintf(a.out, "Actual:     %s → %s\n", p.ActualStart, orDash(p.ActualEnd))
	}
	fmt.Fprintf(a.out, "Supervisor: %s\n", orDash(p.SupervisorID))
	fmt.Fprintf(a.out, "Auditor:    %s\n", orDash(p.FieldAuditorID))
	fmt.Fprintf(a.out, "Findings:   %d (%d accepted)\n", detail.TotalFindings, detail.AcceptedFindings)

	if len(detail.Sections) > 0 {
		fmt.Fprintln(a.out, "\nSections:")
		for _, s := range detail.Sections {
			fmt.Fprintf(a.out, "  %d. %s %s [%s]\n", s.Order, s.Code, s.Name, s.ID)
			for _, sub := range s.Subsections {
				fmt.Fprintf(a.out, "     %d. %s %s [%s]\n", sub.Order, sub.Code, sub.Name, sub.ID)
			}
		}
	}
	fmt.Fprintln(a.out)
	return nil
}

// Transition runs start, complete or reopen on a plan-project.
func (a *PlanAdapter) Transition(ctx context.Context, action, planProjectID string) error {
	var (
		project *primary.PlanProject
		err     error
	)
	switch action {
	case "start":
		project, err = a.service.StartProject(ctx, planProjectID)
	case "complete":
		project, err = a.service.CompleteProject(ctx, planProjectID)
	case "reopen":
		project, err = a.service.ReopenProject(ctx, planProjectID)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	if err != nil {
		return err
	}
	success(a.out, "Plan project %s is now %s", project.ID, statusColor(project.Status))
	return nil
}
