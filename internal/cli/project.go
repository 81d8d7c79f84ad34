package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/wire"
)

// ProjectCmd returns the project command, which works on plan-projects.
func ProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Run plan projects through execution",
		Long: `Schedule, start, complete and staff projects copied into a plan.

Lifecycle: Sin Iniciar → En Proceso → Completada (reopen returns to En Proceso).`,
	}

	cmd.AddCommand(projectListCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "show [plan-project-id]",
		Short: "Show a plan project with its tree",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return wire.PlanAdapter().ShowProject(ctx, args[0])
		}),
	})
	cmd.AddCommand(projectScheduleCmd())
	for _, action := range []struct{ use, short string }{
		{"start", "Start fieldwork (requires dates, supervisor and auditor)"},
		{"complete", "Complete a project once every finding is accepted"},
		{"reopen", "Reopen a completed project"},
	} {
		cmd.AddCommand(&cobra.Command{
			Use:   action.use + " [plan-project-id]",
			Short: action.short,
			Args:  cobra.ExactArgs(1),
			RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
				return wire.PlanAdapter().Transition(ctx, cmd.Name(), args[0])
			}),
		})
	}
	cmd.AddCommand(projectAssignCmd())
	cmd.AddCommand(projectAssignmentsCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "unassign [assignment-id]",
		Short: "Revoke a role grant",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := wire.Services().Plans.RemoveAssignment(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Removed assignment %s\n", args[0])
			return nil
		}),
	})
	return cmd
}

func projectListCmd() *cobra.Command {
	var filters primary.PlanProjectFilters

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plan projects",
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return wire.PlanAdapter().ListProjects(ctx, filters)
		}),
	}
	cmd.Flags().StringVar(&filters.PlanID, "plan", "", "Filter by plan")
	cmd.Flags().StringVar(&filters.Status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&filters.SupervisorID, "supervisor", "", "Filter by supervisor user ID")
	cmd.Flags().StringVar(&filters.FieldAuditorID, "auditor", "", "Filter by field auditor user ID")
	return cmd
}

func projectScheduleCmd() *cobra.Command {
	var req primary.UpdateScheduleRequest

	cmd := &cobra.Command{
		Use:   "schedule [plan-project-id]",
		Short: "Set planned dates and staff",
		Long: `Set the planned dates, supervisor and field auditor of a plan project.

Example:
  auditplus project schedule PPRJ-001 --start 2026-02-01 --end 2026-03-15 \
    --supervisor USER-002 --auditor USER-003`,
		Args: cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			req.PlanProjectID = args[0]
			if err := wire.Services().Plans.UpdateSchedule(ctx, req); err != nil {
				return fmt.Errorf("failed to schedule project: %w", err)
			}
			fmt.Printf("✓ Plan project %s scheduled\n", args[0])
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.PlannedStart, "start", "", "Planned start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.PlannedEnd, "end", "", "Planned end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.SupervisorID, "supervisor", "", "Supervisor user ID")
	cmd.Flags().StringVar(&req.FieldAuditorID, "auditor", "", "Field auditor user ID")
	return cmd
}

func projectAssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign [plan-project-id] [user-id] [role]",
		Short: "Grant a user a role on a plan project",
		Args:  cobra.ExactArgs(3),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			a, err := wire.Services().Plans.AssignUser(ctx, primary.AssignUserRequest{
				PlanProjectID: args[0],
				UserID:        args[1],
				Role:          args[2],
			})
			if err != nil {
				return fmt.Errorf("failed to assign user: %w", err)
			}
			fmt.Printf("✓ %s assigned to %s as %s (%s)\n", a.UserID, a.PlanProjectID, a.Role, a.ID)
			return nil
		}),
	}
}

func projectAssignmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assignments [plan-project-id]",
		Short: "List role grants on a plan project",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			list, err := wire.Services().Plans.ListAssignments(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to list assignments: %w", err)
			}
			if len(list) == 0 {
				fmt.Println("No assignments")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSER\tROLE")
			for _, a := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", a.ID, a.UserID, a.Role)
			}
			return tw.Flush()
		}),
	}
}
