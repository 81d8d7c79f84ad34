package primary

import (
	"context"
	"io"
)

// ReportService defines the primary port for exports.
// Reports are projections of stored data; they never change state.
type ReportService interface {
	// ExportUniverse writes the universe projects with their trees as an XLSX workbook.
	ExportUniverse(ctx context.Context, w io.Writer) error

	// ExportPlan writes a plan's projects and findings as an XLSX workbook.
	ExportPlan(ctx context.Context, planID string, w io.Writer) error

	// ExportEvaluation writes the evaluation ranking as an XLSX workbook.
	ExportEvaluation(ctx context.Context, w io.Writer) error

	// ExportFindings writes findings matching the filters as an XLSX workbook.
	ExportFindings(ctx context.Context, filters FindingFilters, w io.Writer) error

	// ExportWorkbook writes every report as one sheet of a single XLSX workbook.
	ExportWorkbook(ctx context.Context, w io.Writer) error

	// PlanDocument writes a Markdown report mirroring plan, project and finding.
	PlanDocument(ctx context.Context, planID string, w io.Writer) error

	// PlanPDF writes the audit report of a plan as PDF.
	PlanPDF(ctx context.Context, planID string, w io.Writer) error
}
