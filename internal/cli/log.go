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

// LogCmd returns the log command
func LogCmd() *cobra.Command {
	var filters primary.AuditLogFilters

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the audit trail, newest first",
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			entries, err := wire.AuditLogService().ListEntries(ctx, filters)
			if err != nil {
				return fmt.Errorf("failed to read audit log: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println("No audit log entries")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tUSER\tMODULE\tACTION\tDETAIL")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.CreatedAt, e.Username, e.Module, e.Action, e.Detail)
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().StringVar(&filters.UserID, "user", "", "Filter by user ID")
	cmd.Flags().StringVar(&filters.Module, "module", "", "Filter by module")
	cmd.Flags().IntVarP(&filters.Limit, "limit", "n", 0, "Maximum entries (default 200)")
	return cmd
}
