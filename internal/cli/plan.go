package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/auditplus/internal/core/plan"
	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/wire"
)

// PlanCmd returns the plan command
func PlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage annual audit plans",
		Long:  `Create plans and copy universe projects into them.`,
	}

	cmd.AddCommand(planListCmd())
	cmd.AddCommand(planShowCmd())
	cmd.AddCommand(planCreateCmd())
	cmd.AddCommand(planCopyCmd())
	cmd.AddCommand(planStatusCmd("close", plan.StatusClosed, "Close a plan"))
	cmd.AddCommand(planStatusCmd("reopen", plan.StatusActive, "Reactivate a closed plan"))
	cmd.AddCommand(planDeleteCmd())
	return cmd
}

func planListCmd() *cobra.Command {
	var filters primary.PlanFilters

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plans, newest year first",
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return wire.PlanAdapter().List(ctx, filters)
		}),
	}
	cmd.Flags().IntVar(&filters.Year, "year", 0, "Filter by year")
	cmd.Flags().StringVar(&filters.Status, "status", "", "Filter by status (Activo, Cerrado)")
	return cmd
}

func planShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [plan-id]",
		Short: "Show a plan with its projects",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return wire.PlanAdapter().Show(ctx, args[0])
		}),
	}
}

func planCreateCmd() *cobra.Command {
	var req primary.CreatePlanRequest

	cmd := &cobra.Command{
		Use:   "create [code]",
		Short: "Create an annual plan",
		Long: `Create an active plan.

Examples:
  auditplus plan create PA-2026 --name "Plan Anual 2026" --year 2026`,
		Args: cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			req.Code = args[0]
			return wire.PlanAdapter().Create(ctx, req)
		}),
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "Plan name (required)")
	cmd.Flags().StringVar(&req.Objective, "objective", "", "Plan objective")
	cmd.Flags().IntVar(&req.Year, "year", 0, "Plan year (required)")
	return cmd
}

func planCopyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy [plan-id] [project-id]...",
		Short: "Copy universe projects into a plan",
		Long: `Deep-copy universe projects with their sections and subsections into a plan.
The batch is all-or-nothing. Projects already in the plan are skipped.

Examples:
  auditplus plan copy PLAN-001 UNI-001 UNI-004`,
		Args: cobra.MinimumNArgs(2),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return wire.PlanAdapter().Copy(ctx, args[0], args[1:])
		}),
	}
}

func planStatusCmd(use, status, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [plan-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := wire.Services().Plans.SetPlanStatus(ctx, args[0], status); err != nil {
				return err
			}
			fmt.Printf("✓ Plan %s is now %s\n", args[0], status)
			return nil
		}),
	}
}

func planDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [plan-id]",
		Short: "Delete a plan without findings",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := wire.Services().Plans.DeletePlan(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Deleted plan %s\n", args[0])
			return nil
		}),
	}
}
