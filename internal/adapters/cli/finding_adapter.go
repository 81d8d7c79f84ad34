package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/example/auditplus/internal/ports/primary"
)

// FindingAdapter translates finding commands into FindingService calls.
type FindingAdapter struct {
	service primary.FindingService
	out     io.Writer
}

// NewFindingAdapter creates a new FindingAdapter with the given service.
func NewFindingAdapter(service primary.FindingService, out io.Writer) *FindingAdapter {
	return &FindingAdapter{service: service, out: out}
}

// Create raises a finding.
func (a *FindingAdapter) Create(ctx context.Context, req primary.CreateFindingRequest) error {
	f, err := a.service.CreateFinding(ctx, req)
	if err != nil {
		return err
	}
	success(a.out, "Created finding %s (%s): risk %s", f.ID, f.Code, levelColor(f.RiskLevel))
	return nil
}

// List lists findings matching the filters.
func (a *FindingAdapter) List(ctx context.Context, filters primary.FindingFilters) error {
	findings, err := a.service.ListFindings(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list findings: %w", err)
	}
	return a.table(findings)
}

// Mine lists the acting user's open findings.
func (a *FindingAdapter) Mine(ctx context.Context) error {
	findings, err := a.service.MyFindings(ctx)
	if err != nil {
		return fmt.Errorf("failed to list findings: %w", err)
	}
	return a.table(findings)
}

func (a *FindingAdapter) table(findings []*primary.Finding) error {
	if len(findings) == 0 {
		fmt.Fprintln(a.out, "No findings found")
		return nil
	}
	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tCODE\tPROJECT\tRESPONSIBLE\tCOMMITMENT\tRISK\tSTATUS")
	for _, f := range findings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.ID, f.Code, f.PlanProjectID, orDash(f.ResponsibleID), orDash(f.CommitmentDate),
			levelColor(f.RiskLevel), statusColor(f.Status))
	}
	return tw.Flush()
}

// Show prints one finding in full.
func (a *FindingAdapter) Show(ctx context.Context, findingID string) error {
	f, err := a.service.GetFinding(ctx, findingID)
	if err != nil {
		return fmt.Errorf("failed to get finding: %w", err)
	}

	fmt.Fprintf(a.out, "\nFinding: %s (%s)\n", f.Code, f.ID)
	fmt.Fprintf(a.out, "Status:      %s\n", statusColor(f.Status))
	fmt.Fprintf(a.out, "Risk:        %s (P%d × I%d)\n", levelColor(f.RiskLevel), f.Probability, f.Impact)
	fmt.Fprintf(a.out, "Plan:        %s / %s / %s\n", f.PlanID, f.PlanProjectID, f.PlanSubsectionID)
	if f.Area != "" {
		fmt.Fprintf(a.out, "Area:        %s\n", f.Area)
	}
	fmt.Fprintf(a.out, "Responsible: %s\n", orDash(f.ResponsibleID))
	if f.AssignmentDate != "" {
		fmt.Fprintf(a.out, "Assigned:    %s (commitment %s)\n", f.AssignmentDate, orDash(f.CommitmentDate))
	}
	fmt.Fprintf(a.out, "\nCondition:      %s\n", f.Condition)
	for _, field := range []struct{ label, value string }{
		{"Criterion:     ", f.Criterion},
		{"Cause:         ", f.Cause},
		{"Effect:        ", f.Effect},
		{"Recommendation:", f.Recommendation},
	} {
		if field.value != "" {
			fmt.Fprintf(a.out, "%s %s\n", field.label, field.value)
		}
	}
	if f.Response != "" {
		fmt.Fprintf(a.out, "\nResponse (%s): %s\n", orDash(f.ResponseDate), f.Response)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Counts prints findings grouped by status.
func (a *FindingAdapter) Counts(ctx context.Context, filters primary.FindingFilters) error {
	counts, err := a.service.StatusCounts(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to count findings: %w", err)
	}
	printCounts(a.out, counts)
	return nil
}

// Sweep runs the overdue sweep and reports how many findings changed.
func (a *FindingAdapter) Sweep(ctx context.Context) error {
	n, err := a.service.SweepOverdue(ctx)
	if err != nil {
		return err
	}
	success(a.out, "%d finding(s) marked overdue", n)
	return nil
}

// printCounts prints a status histogram in a stable order.
func printCounts(out io.Writer, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	tw := newTable(out)
	for _, k := range keys {
		fmt.Fprintf(tw, "  %s\t%d\n", k, counts[k])
	}
	_ = tw.Flush()
}
