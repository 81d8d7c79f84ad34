package app

import (
	"context"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/example/auditplus/internal/ports/secondary"
)

var (
	pdfTitleColor   = rgb{0x23, 0x3F, 0x84}
	pdfHeadingColor = rgb{0x0D, 0x68, 0xA5}
	pdfGridColor    = rgb{0xE2, 0xE8, 0xF0}
	pdfStripeColor  = rgb{0xF5, 0xF7, 0xFA}
	pdfTextColor    = rgb{0x1E, 0x29, 0x3B}
)

type rgb struct{ r, g, b int }

// summaryColumns are the findings summary table: header and width in mm.
var summaryColumns = []struct {
	title string
	width float64
}{
	{"Código", 25}, {"Proyecto", 60}, {"Riesgo", 25}, {"Estado", 35}, {"Área", 50},
}

const summaryProjectChars = 25

// PlanPDF writes the audit report of a plan as PDF: a findings summary table
// followed by each plan-project with the full content of its findings.
func (s *ReportServiceImpl) PlanPDF(ctx context.Context, planID string, w io.Writer) error {
	report, err := s.loadPlanReport(ctx, planID)
	if err != nil {
		return err
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	plan := report.plan
	pdf.SetTitle(tr("Informe de Auditoría "+plan.Code), false)
	pdf.SetSubject(plan.Code, false)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		setText(pdf, pdfTextColor)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Página %d", pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	setText(pdf, pdfTitleColor)
	pdf.CellFormat(0, 10, tr("Informe de Auditoría"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	setText(pdf, pdfTextColor)
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("%s: %s", plan.Code, plan.Name)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Año %d, %s", plan.Year, plan.Status)), "", 1, "C", false, 0, "")
	if plan.Objective != "" {
		pdf.Ln(2)
		pdf.MultiCell(0, 5, tr(plan.Objective), "", "L", false)
	}
	pdf.Ln(6)

	projectNames := make(map[string]string, len(report.projects))
	var findings []*secondary.FindingRecord
	for _, p := range report.projects {
		projectNames[p.ID] = p.Name
		findings = append(findings, report.findings[p.ID]...)
	}

	pdfHeading(pdf, tr("Resumen de Hallazgos"))
	if len(findings) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 7, tr("No hay hallazgos registrados en este plan."), "", 1, "L", false, 0, "")
	} else {
		summaryTable(pdf, tr, findings, projectNames)
	}

	for _, p := range report.projects {
		pdf.Ln(6)
		pdfHeading(pdf, tr(fmt.Sprintf("%s: %s", p.Code, p.Name)))
		pdf.SetFont("Helvetica", "", 10)
		pdfField(pdf, tr, "Estado", p.Status)
		pdfField(pdf, tr, "Objetivo", p.Objective)
		pdfField(pdf, tr, "Planificado", dateRange(p.PlannedStart, p.PlannedEnd))
		pdfField(pdf, tr, "Real", dateRange(p.ActualStart, p.ActualEnd))
		pdfField(pdf, tr, "Supervisor", report.names[p.SupervisorID])
		pdfField(pdf, tr, "Auditor de campo", report.names[p.FieldAuditorID])

		for _, f := range report.findings[p.ID] {
			pdf.Ln(3)
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s (%s, %s)", f.Code, f.RiskLevel, f.Status)), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdfField(pdf, tr, "Condición", f.Condition)
			pdfField(pdf, tr, "Criterio", f.Criterion)
			pdfField(pdf, tr, "Causa", f.Cause)
			pdfField(pdf, tr, "Efecto", f.Effect)
			pdfField(pdf, tr, "Recomendación", f.Recommendation)
			pdfField(pdf, tr, "Responsable", report.names[f.ResponsibleID])
			pdfField(pdf, tr, "Fecha compromiso", f.CommitmentDate)
			pdfField(pdf, tr, "Respuesta", f.Response)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write plan report: %w", err)
	}
	return nil
}

func summaryTable(pdf *fpdf.Fpdf, tr func(string) string, findings []*secondary.FindingRecord, projectNames map[string]string) {
	setDraw(pdf, pdfGridColor)

	pdf.SetFont("Helvetica", "B", 9)
	setFill(pdf, pdfTitleColor)
	pdf.SetTextColor(255, 255, 255)
	for _, col := range summaryColumns {
		pdf.CellFormat(col.width, 7, tr(col.title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	setText(pdf, pdfTextColor)
	setFill(pdf, pdfStripeColor)
	for i, f := range findings {
		values := []string{
			f.Code,
			truncateRunes(projectNames[f.PlanProjectID], summaryProjectChars),
			f.RiskLevel,
			f.Status,
			f.Area,
		}
		for j, col := range summaryColumns {
			pdf.CellFormat(col.width, 6, tr(values[j]), "1", 0, "L", i%2 == 1, 0, "")
		}
		pdf.Ln(-1)
	}
}

func pdfHeading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 14)
	setText(pdf, pdfHeadingColor)
	pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
	setText(pdf, pdfTextColor)
}

func pdfField(pdf *fpdf.Fpdf, tr func(string) string, label, value string) {
	if value == "" {
		return
	}
	pdf.MultiCell(0, 5, tr(label+": "+value), "", "L", false)
}

func setText(pdf *fpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
func setFill(pdf *fpdf.Fpdf, c rgb) { pdf.SetFillColor(c.r, c.g, c.b) }
func setDraw(pdf *fpdf.Fpdf, c rgb) { pdf.SetDrawColor(c.r, c.g, c.b) }
