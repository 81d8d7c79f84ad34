package app

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/example/auditplus/internal/core/access"
	"github.com/example/auditplus/internal/ctxutil"
	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/ports/secondary"
)

// ReportServiceImpl implements the ReportService interface.
// Reports read stored data as-is; callers that want fresh overdue statuses
// sweep before exporting.
type ReportServiceImpl struct {
	universeRepo    secondary.UniverseRepository
	planRepo        secondary.PlanRepository
	planProjectRepo secondary.PlanProjectRepository
	findingRepo     secondary.FindingRepository
	userRepo        secondary.UserRepository
	evaluations     primary.EvaluationService
}

// NewReportService creates a new ReportService with injected dependencies.
func NewReportService(
	universeRepo secondary.UniverseRepository,
	planRepo secondary.PlanRepository,
	planProjectRepo secondary.PlanProjectRepository,
	findingRepo secondary.FindingRepository,
	userRepo secondary.UserRepository,
	evaluations primary.EvaluationService,
) *ReportServiceImpl {
	return &ReportServiceImpl{
		universeRepo:    universeRepo,
		planRepo:        planRepo,
		planProjectRepo: planProjectRepo,
		findingRepo:     findingRepo,
		userRepo:        userRepo,
		evaluations:     evaluations,
	}
}

var reportRoles = []access.Role{access.RoleAuditor, access.RoleSupervisor, access.RoleFieldAuditor}

// reportSheet is one tabular report: a worksheet in the exported workbook.
type reportSheet struct {
	name   string
	header []string
	rows   [][]any
}

func (s *reportSheet) add(values ...any) {
	s.rows = append(s.rows, values)
}

// ExportUniverse writes a workbook with one row per subsection; projects
// without sections get a single row with empty tree columns.
func (s *ReportServiceImpl) ExportUniverse(ctx context.Context, w io.Writer) error {
	if err := requireRole(ctxutil.ActorRole(ctx), reportRoles...); err != nil {
		return err
	}
	sheet, err := s.universeSheet(ctx)
	if err != nil {
		return err
	}
	return writeWorkbook(w, sheet)
}

// ExportPlan writes a workbook for one plan: its projects with their
// findings, and the full content of those findings.
func (s *ReportServiceImpl) ExportPlan(ctx context.Context, planID string, w io.Writer) error {
	if err := requireRole(ctxutil.ActorRole(ctx), reportRoles...); err != nil {
		return err
	}

	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return err
	}
	names, err := s.userNames(ctx)
	if err != nil {
		return err
	}
	projects, err := s.planSheet(ctx, plan, names)
	if err != nil {
		return err
	}
	findings, err := s.findingsSheet(ctx, secondary.FindingFilters{PlanID: planID}, names)
	if err != nil {
		return err
	}
	return writeWorkbook(w, projects, findings)
}

// ExportEvaluation writes the criticality ranking.
func (s *ReportServiceImpl) ExportEvaluation(ctx context.Context, w io.Writer) error {
	if err := requireRole(ctxutil.ActorRole(ctx), reportRoles...); err != nil {
		return err
	}
	sheet, err := s.evaluationSheet(ctx)
	if err != nil {
		return err
	}
	return writeWorkbook(w, sheet)
}

// ExportFindings writes findings matching filters with their full content.
func (s *ReportServiceImpl) ExportFindings(ctx context.Context, filters primary.FindingFilters, w io.Writer) error {
	if err := requireRole(ctxutil.ActorRole(ctx), reportRoles...); err != nil {
		return err
	}
	names, err := s.userNames(ctx)
	if err != nil {
		return err
	}
	sheet, err := s.findingsSheet(ctx, toSecondaryFindingFilters(filters), names)
	if err != nil {
		return err
	}
	return writeWorkbook(w, sheet)
}

// ExportWorkbook writes every report into one workbook: universe, evaluation,
// one sheet per plan (newest first) and all findings.
func (s *ReportServiceImpl) ExportWorkbook(ctx context.Context, w io.Writer) error {
	if err := requireRole(ctxutil.ActorRole(ctx), reportRoles...); err != nil {
		return err
	}

	names, err := s.userNames(ctx)
	if err != nil {
		return err
	}
	universe, err := s.universeSheet(ctx)
	if err != nil {
		return err
	}
	evaluation, err := s.evaluationSheet(ctx)
	if err != nil {
		return err
	}
	sheets := []reportSheet{universe, evaluation}

	plans, err := s.planRepo.List(ctx, secondary.PlanFilters{})
	if err != nil {
		return fmt.Errorf("failed to list plans: %w", err)
	}
	for _, plan := range plans {
		sheet, err := s.planSheet(ctx, plan, names)
		if err != nil {
			return err
		}
		sheets = append(sheets, sheet)
	}

	findings, err := s.findingsSheet(ctx, secondary.FindingFilters{}, names)
	if err != nil {
		return err
	}
	return writeWorkbook(w, append(sheets, findings)...)
}

func (s *ReportServiceImpl) universeSheet(ctx context.Context) (reportSheet, error) {
	sheet := reportSheet{
		name: "Universo Auditable",
		header: []string{"Código", "Proyecto", "Objetivo", "Tipo de Auditoría", "Proceso",
			"Inicio Planificado", "Fin Planificado", "Sección", "Nombre Sección", "Subsección", "Nombre Subsección"},
	}

	projects, err := s.universeRepo.ListProjects(ctx, secondary.UniverseFilters{})
	if err != nil {
		return sheet, fmt.Errorf("failed to list projects: %w", err)
	}
	for _, p := range projects {
		sections, err := s.universeRepo.ListSections(ctx, p.ID)
		if err != nil {
			return sheet, fmt.Errorf("failed to list sections of %s: %w", p.Code, err)
		}
		subsections, err := s.universeRepo.ListSubsections(ctx, p.ID)
		if err != nil {
			return sheet, fmt.Errorf("failed to list subsections of %s: %w", p.Code, err)
		}
		bySection := make(map[string][]*secondary.UniverseSubsectionRecord)
		for _, sub := range subsections {
			bySection[sub.SectionID] = append(bySection[sub.SectionID], sub)
		}

		base := []any{p.Code, p.Name, p.Objective, p.AuditType, p.Process, p.PlannedStart, p.PlannedEnd}
		if len(sections) == 0 {
			sheet.add(row(base, "", "", "", "")...)
			continue
		}
		for _, sec := range sections {
			subs := bySection[sec.ID]
			if len(subs) == 0 {
				sheet.add(row(base, sec.Code, sec.Name, "", "")...)
				continue
			}
			for _, sub := range subs {
				sheet.add(row(base, sec.Code, sec.Name, sub.Code, sub.Name)...)
			}
		}
	}
	return sheet, nil
}

// planSheet has one row per finding of a plan, preceded by its plan-project
// columns. Plan-projects without findings get one row.
func (s *ReportServiceImpl) planSheet(ctx context.Context, plan *secondary.PlanRecord, names map[string]string) (reportSheet, error) {
	sheet := reportSheet{
		name: "Plan " + plan.Code,
		header: []string{"Plan", "Año", "Proyecto", "Nombre", "Estado Proyecto", "Inicio Planificado", "Fin Planificado",
			"Inicio Real", "Fin Real", "Supervisor", "Auditor de Campo",
			"Hallazgo", "Condición", "Nivel de Riesgo", "Estado Hallazgo", "Responsable", "Fecha Compromiso"},
	}

	projects, err := s.planProjectRepo.List(ctx, secondary.PlanProjectFilters{PlanID: plan.ID})
	if err != nil {
		return sheet, fmt.Errorf("failed to list plan-projects: %w", err)
	}
	findings, err := s.findingRepo.List(ctx, secondary.FindingFilters{PlanID: plan.ID})
	if err != nil {
		return sheet, fmt.Errorf("failed to list findings: %w", err)
	}
	byProject := make(map[string][]*secondary.FindingRecord)
	for _, f := range findings {
		byProject[f.PlanProjectID] = append(byProject[f.PlanProjectID], f)
	}

	for _, p := range projects {
		base := []any{plan.Code, plan.Year, p.Code, p.Name, p.Status, p.PlannedStart, p.PlannedEnd,
			p.ActualStart, p.ActualEnd, names[p.SupervisorID], names[p.FieldAuditorID]}
		list := byProject[p.ID]
		if len(list) == 0 {
			sheet.add(row(base, "", "", "", "", "", "")...)
			continue
		}
		for _, f := range list {
			sheet.add(row(base, f.Code, f.Condition, f.RiskLevel, f.Status, names[f.ResponsibleID], f.CommitmentDate)...)
		}
	}
	return sheet, nil
}

func (s *ReportServiceImpl) evaluationSheet(ctx context.Context) (reportSheet, error) {
	sheet := reportSheet{
		name: "Evaluación",
		header: []string{"Código", "Proyecto", "Nivel de Riesgo", "Meses desde Auditoría", "Hallazgos Última Auditoría",
			"Hallazgos Resueltos", "Estado Última Auditoría", "Fecha Última Auditoría", "Ciclo de Rotación", "Criticidad", "Nivel"},
	}

	ranking, err := s.evaluations.ListEvaluations(ctx)
	if err != nil {
		return sheet, err
	}
	for _, ev := range ranking {
		sheet.add(ev.ProjectCode, ev.ProjectName, ev.RiskLevel, ev.MonthsSinceAudit, ev.FindingsLastAudit,
			ev.FindingsResolved, ev.LastAuditStatus, ev.LastAuditDate, ev.RotationCycle,
			math.Round(ev.Criticality*100)/100, ev.CriticalityLevel)
	}
	return sheet, nil
}

func (s *ReportServiceImpl) findingsSheet(ctx context.Context, filters secondary.FindingFilters, names map[string]string) (reportSheet, error) {
	sheet := reportSheet{
		name: "Hallazgos",
		header: []string{"Código", "Plan", "Proyecto", "Condición", "Criterio", "Causa", "Efecto", "Recomendación",
			"Probabilidad", "Impacto", "Nivel de Riesgo", "Área", "Estado", "Responsable",
			"Fecha Asignación", "Fecha Compromiso", "Fecha Respuesta", "Respuesta"},
	}

	findings, err := s.findingRepo.List(ctx, filters)
	if err != nil {
		return sheet, fmt.Errorf("failed to list findings: %w", err)
	}
	for _, f := range findings {
		sheet.add(f.Code, f.PlanID, f.PlanProjectID, f.Condition, f.Criterion, f.Cause, f.Effect, f.Recommendation,
			f.Probability, f.Impact, f.RiskLevel, f.Area, f.Status, names[f.ResponsibleID],
			f.AssignmentDate, f.CommitmentDate, f.ResponseDate, f.Response)
	}
	return sheet, nil
}

// planReport is the data shared by the Markdown and PDF renderings of a plan.
type planReport struct {
	plan     *secondary.PlanRecord
	projects []*secondary.PlanProjectRecord
	findings map[string][]*secondary.FindingRecord
	names    map[string]string
}

func (s *ReportServiceImpl) loadPlanReport(ctx context.Context, planID string) (*planReport, error) {
	if err := requireRole(ctxutil.ActorRole(ctx), reportRoles...); err != nil {
		return nil, err
	}

	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	projects, err := s.planProjectRepo.List(ctx, secondary.PlanProjectFilters{PlanID: planID})
	if err != nil {
		return nil, fmt.Errorf("failed to list plan-projects: %w", err)
	}
	findings, err := s.findingRepo.List(ctx, secondary.FindingFilters{PlanID: planID})
	if err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}
	names, err := s.userNames(ctx)
	if err != nil {
		return nil, err
	}

	report := &planReport{plan: plan, projects: projects, findings: make(map[string][]*secondary.FindingRecord), names: names}
	for _, f := range findings {
		report.findings[f.PlanProjectID] = append(report.findings[f.PlanProjectID], f)
	}
	return report, nil
}

// PlanDocument writes a Markdown report: plan, then each plan-project with its
// sections and subsections, with findings under the subsection they were raised on.
func (s *ReportServiceImpl) PlanDocument(ctx context.Context, planID string, w io.Writer) error {
	report, err := s.loadPlanReport(ctx, planID)
	if err != nil {
		return err
	}

	plan := report.plan
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", plan.Code, plan.Name)
	fmt.Fprintf(&b, "- Año: %d\n- Estado: %s\n", plan.Year, plan.Status)
	if plan.Objective != "" {
		fmt.Fprintf(&b, "- Objetivo: %s\n", plan.Objective)
	}

	for _, p := range report.projects {
		if err := s.writeProject(ctx, &b, p, report); err != nil {
			return err
		}
	}

	_, err = io.WriteString(w, b.String())
	return err
}

func (s *ReportServiceImpl) writeProject(ctx context.Context, b *strings.Builder, p *secondary.PlanProjectRecord, report *planReport) error {
	sections, err := s.planProjectRepo.ListSections(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("failed to list sections of %s: %w", p.Code, err)
	}
	subsections, err := s.planProjectRepo.ListSubsections(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("failed to list subsections of %s: %w", p.Code, err)
	}

	bySection := make(map[string][]*secondary.PlanSubsectionRecord)
	for _, sub := range subsections {
		bySection[sub.PlanSectionID] = append(bySection[sub.PlanSectionID], sub)
	}
	bySubsection := make(map[string][]*secondary.FindingRecord)
	for _, f := range report.findings[p.ID] {
		bySubsection[f.PlanSubsectionID] = append(bySubsection[f.PlanSubsectionID], f)
	}

	names := report.names
	fmt.Fprintf(b, "\n## %s: %s\n\n", p.Code, p.Name)
	fmt.Fprintf(b, "- Estado: %s\n", p.Status)
	writeField(b, "Objetivo", p.Objective)
	writeField(b, "Planificado", dateRange(p.PlannedStart, p.PlannedEnd))
	writeField(b, "Real", dateRange(p.ActualStart, p.ActualEnd))
	writeField(b, "Supervisor", names[p.SupervisorID])
	writeField(b, "Auditor de campo", names[p.FieldAuditorID])

	for _, sec := range sections {
		fmt.Fprintf(b, "\n### %s %s\n", sec.Code, sec.Name)
		for _, sub := range bySection[sec.ID] {
			fmt.Fprintf(b, "\n#### %s %s\n", sub.Code, sub.Name)
			for _, f := range bySubsection[sub.ID] {
				fmt.Fprintf(b, "\n##### %s (%s, %s)\n\n", f.Code, f.RiskLevel, f.Status)
				writeField(b, "Condición", f.Condition)
				writeField(b, "Criterio", f.Criterion)
				writeField(b, "Causa", f.Cause)
				writeField(b, "Efecto", f.Effect)
				writeField(b, "Recomendación", f.Recommendation)
				writeField(b, "Responsable", names[f.ResponsibleID])
				writeField(b, "Fecha compromiso", f.CommitmentDate)
				writeField(b, "Respuesta", f.Response)
			}
		}
	}
	return nil
}

// userNames maps user IDs to full names, inactive users included.
func (s *ReportServiceImpl) userNames(ctx context.Context) (map[string]string, error) {
	users, err := s.userRepo.List(ctx, secondary.UserFilters{IncludeInactive: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.FullName
	}
	return names, nil
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, value)
}

func dateRange(start, end string) string {
	if start == "" && end == "" {
		return ""
	}
	return start + " / " + end
}

// row copies base before appending so rows never share a backing array.
func row(base []any, extra ...any) []any {
	out := make([]any, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

// Ensure ReportServiceImpl implements the interface
var _ primary.ReportService = (*ReportServiceImpl)(nil)
