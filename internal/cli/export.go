package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/wire"
)

// ExportCmd returns the export command
func ExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export XLSX workbooks and plan reports",
		Long: `Export data as XLSX workbooks, or a plan as a Markdown or PDF report.

Workbooks and PDF reports are binary; without -o they are written to a
file named after the report.

Examples:
  auditplus export universe -o universo.xlsx
  auditplus export workbook
  auditplus export plan PLAN-001 -o plan.xlsx
  auditplus export pdf PLAN-001
  auditplus export document PLAN-001 > informe.md`,
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")

	cmd.AddCommand(&cobra.Command{
		Use:   "universe",
		Short: "Universe projects with their tree",
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return writeReport(orDefault(output, "universo.xlsx"), func(w io.Writer) error {
				return wire.ReportService().ExportUniverse(ctx, w)
			})
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "evaluation",
		Short: "Criticality ranking",
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return writeReport(orDefault(output, "evaluacion.xlsx"), func(w io.Writer) error {
				return wire.ReportService().ExportEvaluation(ctx, w)
			})
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "workbook",
		Short: "All reports in one workbook",
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := sweepBeforeExport(ctx); err != nil {
				return err
			}
			return writeReport(orDefault(output, "auditoria.xlsx"), func(w io.Writer) error {
				return wire.ReportService().ExportWorkbook(ctx, w)
			})
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "plan [plan-id]",
		Short: "Plan projects and their findings",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := sweepBeforeExport(ctx); err != nil {
				return err
			}
			return writeReport(orDefault(output, "plan-"+args[0]+".xlsx"), func(w io.Writer) error {
				return wire.ReportService().ExportPlan(ctx, args[0], w)
			})
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "document [plan-id]",
		Short: "Markdown report of a plan",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := sweepBeforeExport(ctx); err != nil {
				return err
			}
			return writeReport(output, func(w io.Writer) error {
				return wire.ReportService().PlanDocument(ctx, args[0], w)
			})
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "pdf [plan-id]",
		Short: "PDF audit report of a plan",
		Args:  cobra.ExactArgs(1),
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := sweepBeforeExport(ctx); err != nil {
				return err
			}
			return writeReport(orDefault(output, "informe-"+args[0]+".pdf"), func(w io.Writer) error {
				return wire.ReportService().PlanPDF(ctx, args[0], w)
			})
		}),
	})

	var filters primary.FindingFilters
	findings := &cobra.Command{
		Use:   "findings",
		Short: "Findings matching the filters",
		RunE: runAs(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := sweepBeforeExport(ctx); err != nil {
				return err
			}
			return writeReport(orDefault(output, "hallazgos.xlsx"), func(w io.Writer) error {
				return wire.ReportService().ExportFindings(ctx, filters, w)
			})
		}),
	}
	findingFilterFlags(findings, &filters)
	cmd.AddCommand(findings)
	return cmd
}

// sweepBeforeExport brings finding statuses up to date; reports never write.
func sweepBeforeExport(ctx context.Context) error {
	if _, err := wire.Services().Findings.SweepOverdue(ctx); err != nil {
		return fmt.Errorf("failed to sweep overdue findings: %w", err)
	}
	return nil
}

// orDefault keeps binary reports off the terminal when no output is given.
func orDefault(output, name string) string {
	if output == "" {
		return name
	}
	return output
}

func writeReport(path string, render func(w io.Writer) error) error {
	if path == "" {
		return render(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
	return nil
}
