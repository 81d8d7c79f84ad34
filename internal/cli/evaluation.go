package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/wire"
)

// EvaluationCmd returns the evaluation command
func EvaluationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "evaluation",
		Aliases: []string{"eval"},
		Short:   "Rank universe projects by criticality",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show the criticality ranking",
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return wire.EvaluationAdapter().Ranking(ctx)
		}),
	})

	var req primary.SaveEvaluationRequest
	setCmd := &cobra.Command{
		Use:   "set [project-id]",
		Short: "Store an evaluation",
		Long: `Store the evaluation factors of a universe project. The last audit status
and date are kept; only 'evaluation sync' changes them.

Example:
  auditplus evaluation set UNI-001 --risk 4 --months 18 --findings 6 --resolved 2 --cycle 12`,
		Args: cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			req.ProjectID = args[0]
			return wire.EvaluationAdapter().Save(ctx, req)
		}),
	}
	setCmd.Flags().IntVar(&req.RiskLevel, "risk", 1, "Risk level (1-5)")
	setCmd.Flags().IntVar(&req.MonthsSinceAudit, "months", 0, "Months since the last audit")
	setCmd.Flags().IntVar(&req.FindingsLastAudit, "findings", 0, "Findings in the last audit")
	setCmd.Flags().IntVar(&req.FindingsResolved, "resolved", 0, "Findings resolved since")
	setCmd.Flags().IntVar(&req.RotationCycle, "cycle", 12, "Rotation cycle in months")
	cmd.AddCommand(setCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Derive audit history from each project's latest plan",
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return wire.EvaluationAdapter().Sync(ctx)
		}),
	})
	return cmd
}

// DashboardCmd returns the dashboard command
func DashboardCmd() *cobra.Command {
	var planID string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show summary counts",
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return wire.EvaluationAdapter().Dashboard(ctx, planID)
		}),
	}
	cmd.Flags().StringVar(&planID, "plan", "", "Limit counts to one plan")
	return cmd
}

// SweepCmd returns the sweep command
func SweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Mark findings past their commitment date as overdue",
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return wire.FindingAdapter().Sweep(ctx)
		}),
	}
}
