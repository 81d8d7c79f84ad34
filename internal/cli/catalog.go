package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/wire"
)

// CatalogCmd returns the catalog command
func CatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage catalog values (audit types, processes, areas)",
	}
	cmd.AddCommand(catalogListCmd())
	cmd.AddCommand(catalogAddCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "deactivate [entry-id]",
		Short: "Hide a value from new selections",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := wire.CatalogService().DeactivateEntry(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Catalog entry %s deactivated\n", args[0])
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "activate [entry-id]",
		Short: "Make a value selectable again",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := wire.CatalogService().ActivateEntry(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Catalog entry %s activated\n", args[0])
			return nil
		}),
	})
	return cmd
}

func catalogListCmd() *cobra.Command {
	var typ string
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog values",
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			entries, err := wire.CatalogService().ListEntries(ctx, primary.CatalogFilters{Type: typ, IncludeInactive: all})
			if err != nil {
				return fmt.Errorf("failed to list catalog: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println("No catalog values found")
				return nil
			}
			sort.SliceStable(entries, func(i, j int) bool { return entries[i].Type < entries[j].Type })

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tORDER\tACTIVE\tVALUE")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%v\t%s\n", e.ID, e.Type, e.DisplayOrder, e.IsActive, e.Value)
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().StringVar(&typ, "type", "", "Catalog type: tipo_auditoria, proceso or area")
	cmd.Flags().BoolVar(&all, "all", false, "Include inactive values")
	return cmd
}

func catalogAddCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add [type] [value]",
		Short: "Add a catalog value",
		Args:  cobra.ExactArgs(2),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			entry, err := wire.CatalogService().CreateEntry(ctx, primary.CreateCatalogEntryRequest{
				Type:        args[0],
				Value:       args[1],
				Description: description,
			})
			if err != nil {
				return fmt.Errorf("failed to add catalog value: %w", err)
			}
			fmt.Printf("✓ Added %s %q as %s\n", entry.Type, entry.Value, entry.ID)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	return cmd
}
