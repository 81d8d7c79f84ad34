package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/example/auditplus/internal/ports/primary"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// Mocks embed the port interface so only the methods under test need bodies;
// anything else panics on the nil embedded value.

type mockUniverseService struct {
	primary.UniverseService
	projects  []*primary.UniverseProject
	detail    *primary.UniverseProjectDetail
	createErr error
	lastReq   primary.CreateProjectRequest
}

func (m *mockUniverseService) CreateProject(ctx context.Context, req primary.CreateProjectRequest) (*primary.UniverseProject, error) {
	m.lastReq = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &primary.UniverseProject{ID: "UNI-001", Code: req.Code, Name: req.Name}, nil
}

func (m *mockUniverseService) ListProjects(ctx context.Context, filters primary.UniverseFilters) ([]*primary.UniverseProject, error) {
	return m.projects, nil
}

func (m *mockUniverseService) GetProject(ctx context.Context, projectID string) (*primary.UniverseProjectDetail, error) {
	if m.detail == nil {
		return nil, errors.New("not found")
	}
	return m.detail, nil
}

func (m *mockUniverseService) ImportProject(ctx context.Context, template []byte) (*primary.UniverseProjectDetail, error) {
	return m.detail, nil
}

func TestUniverseAdapter_Create(t *testing.T) {
	svc := &mockUniverseService{}
	var out bytes.Buffer
	adapter := NewUniverseAdapter(svc, &out)

	err := adapter.Create(context.Background(), primary.CreateProjectRequest{Code: "AUD-01", Name: "Compras"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.lastReq.Code != "AUD-01" {
		t.Errorf("expected request to be forwarded, got %+v", svc.lastReq)
	}
	if !strings.Contains(out.String(), "Created project UNI-001: Compras (AUD-01)") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestUniverseAdapter_CreateError(t *testing.T) {
	svc := &mockUniverseService{createErr: errors.New("code already exists")}
	var out bytes.Buffer
	err := NewUniverseAdapter(svc, &out).Create(context.Background(), primary.CreateProjectRequest{Code: "X"})
	if err == nil {
		t.Fatal("expected error")
	}
	if out.Len() != 0 {
		t.Errorf("expected no output on error, got %q", out.String())
	}
}

func TestUniverseAdapter_ListEmpty(t *testing.T) {
	var out bytes.Buffer
	if err := NewUniverseAdapter(&mockUniverseService{}, &out).List(context.Background(), primary.UniverseFilters{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No projects found") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestUniverseAdapter_ShowTree(t *testing.T) {
	svc := &mockUniverseService{detail: &primary.UniverseProjectDetail{
		Project: &primary.UniverseProject{ID: "UNI-001", Code: "AUD-01", Name: "Compras"},
		Sections: []*primary.UniverseSection{{
			ID: "SEC-001", Code: "S1", Name: "Planificación", Order: 1,
			Subsections: []*primary.UniverseSubsection{{ID: "SUB-001", Code: "S1.1", Name: "Alcance", Order: 1}},
		}},
	}}
	var out bytes.Buffer
	if err := NewUniverseAdapter(svc, &out).Show(context.Background(), "UNI-001"); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"Project: Compras (UNI-001)", "1. S1 Planificación [SEC-001]", "1. S1.1 Alcance [SUB-001]", "Process: -"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestUniverseAdapter_ImportCountsTree(t *testing.T) {
	svc := &mockUniverseService{detail: &primary.UniverseProjectDetail{
		Project: &primary.UniverseProject{ID: "UNI-002", Name: "Ventas"},
		Sections: []*primary.UniverseSection{
			{Subsections: []*primary.UniverseSubsection{{}, {}}},
			{Subsections: []*primary.UniverseSubsection{{}}},
		},
	}}
	var out bytes.Buffer
	if err := NewUniverseAdapter(svc, &out).Import(context.Background(), []byte("code: X")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "(2 sections, 3 subsections)") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

type mockPlanService struct {
	primary.PlanService
	copyResp   *primary.CopyProjectsResponse
	lastCopy   primary.CopyProjectsRequest
	lastAction string
}

func (m *mockPlanService) CopyProjectsToPlan(ctx context.Context, req primary.CopyProjectsRequest) (*primary.CopyProjectsResponse, error) {
	m.lastCopy = req
	return m.copyResp, nil
}

func (m *mockPlanService) StartProject(ctx context.Context, id string) (*primary.PlanProject, error) {
	m.lastAction = "start"
	return &primary.PlanProject{ID: id, Status: "En Proceso"}, nil
}

func (m *mockPlanService) CompleteProject(ctx context.Context, id string) (*primary.PlanProject, error) {
	m.lastAction = "complete"
	return nil, errors.New("2 findings pending")
}

func (m *mockPlanService) GetPlan(ctx context.Context, id string) (*primary.PlanDetail, error) {
	return &primary.PlanDetail{
		Plan:          &primary.Plan{ID: id, Code: "PA-2026", Name: "Plan 2026", Year: 2026, Status: "Activo"},
		Projects:      []*primary.PlanProject{{ID: "PPRJ-001", Code: "AUD-01", Name: "Compras", Status: "Sin Iniciar"}},
		ProjectStatus: map[string]int{"Sin Iniciar": 1},
		FindingCount:  0,
	}, nil
}

func TestPlanAdapter_CopyReportsSkipped(t *testing.T) {
	svc := &mockPlanService{copyResp: &primary.CopyProjectsResponse{
		PlanProjectIDs: []string{"PPRJ-001"},
		Skipped:        []string{"UNI-002"},
		Sections:       2,
		Subsections:    5,
	}}
	var out bytes.Buffer
	err := NewPlanAdapter(svc, &out).Copy(context.Background(), "PLAN-001", []string{"UNI-001", "UNI-002"})
	if err != nil {
		t.Fatal(err)
	}
	if len(svc.lastCopy.ProjectIDs) != 2 || svc.lastCopy.PlanID != "PLAN-001" {
		t.Errorf("unexpected request: %+v", svc.lastCopy)
	}
	got := out.String()
	if !strings.Contains(got, "Copied 1 project(s) into PLAN-001 (2 sections, 5 subsections)") {
		t.Errorf("unexpected output: %q", got)
	}
	if !strings.Contains(got, "skipped UNI-002") {
		t.Errorf("expected skipped project in output: %q", got)
	}
}

func TestPlanAdapter_Transition(t *testing.T) {
	svc := &mockPlanService{}
	var out bytes.Buffer
	adapter := NewPlanAdapter(svc, &out)

	if err := adapter.Transition(context.Background(), "start", "PPRJ-001"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "PPRJ-001 is now En Proceso") {
		t.Errorf("unexpected output: %q", out.String())
	}

	if err := adapter.Transition(context.Background(), "complete", "PPRJ-001"); err == nil {
		t.Error("expected service error to propagate")
	}
	if err := adapter.Transition(context.Background(), "archive", "PPRJ-001"); err == nil {
		t.Error("expected unknown action error")
	}
}

func TestPlanAdapter_Show(t *testing.T) {
	var out bytes.Buffer
	if err := NewPlanAdapter(&mockPlanService{}, &out).Show(context.Background(), "PLAN-001"); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"Plan: Plan 2026 (PLAN-001)", "Projects: Sin Iniciar=1", "PPRJ-001", "Compras"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

type mockFindingService struct {
	primary.FindingService
	findings []*primary.Finding
	counts   map[string]int
	swept    int64
}

func (m *mockFindingService) ListFindings(ctx context.Context, filters primary.FindingFilters) ([]*primary.Finding, error) {
	return m.findings, nil
}

func (m *mockFindingService) StatusCounts(ctx context.Context, filters primary.FindingFilters) (map[string]int, error) {
	return m.counts, nil
}

func (m *mockFindingService) SweepOverdue(ctx context.Context) (int64, error) {
	return m.swept, nil
}

func TestFindingAdapter_List(t *testing.T) {
	svc := &mockFindingService{findings: []*primary.Finding{
		{ID: "FIND-001", Code: "H-01", PlanProjectID: "PPRJ-001", RiskLevel: "Alto", Status: "Sin Asignar"},
		{ID: "FIND-002", Code: "H-02", PlanProjectID: "PPRJ-001", ResponsibleID: "USR-003", CommitmentDate: "2026-03-01", RiskLevel: "Bajo", Status: "Vencida"},
	}}
	var out bytes.Buffer
	if err := NewFindingAdapter(svc, &out).List(context.Background(), primary.FindingFilters{}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[1], "Sin Asignar") || !strings.Contains(lines[1], " - ") {
		t.Errorf("expected unassigned row with dash placeholders, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "USR-003") || !strings.Contains(lines[2], "Vencida") {
		t.Errorf("unexpected row: %q", lines[2])
	}
}

func TestFindingAdapter_CountsSorted(t *testing.T) {
	svc := &mockFindingService{counts: map[string]int{"Vencida": 2, "Aceptada": 1, "Asignado": 3}}
	var out bytes.Buffer
	if err := NewFindingAdapter(svc, &out).Counts(context.Background(), primary.FindingFilters{}); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if strings.Index(got, "Aceptada") > strings.Index(got, "Asignado") || strings.Index(got, "Asignado") > strings.Index(got, "Vencida") {
		t.Errorf("expected alphabetical order:\n%s", got)
	}
}

func TestFindingAdapter_Sweep(t *testing.T) {
	var out bytes.Buffer
	if err := NewFindingAdapter(&mockFindingService{swept: 4}, &out).Sweep(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "4 finding(s) marked overdue") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

type mockEvaluationService struct {
	primary.EvaluationService
	list []*primary.Evaluation
}

func (m *mockEvaluationService) ListEvaluations(ctx context.Context) ([]*primary.Evaluation, error) {
	return m.list, nil
}

type mockDashboardService struct {
	summary *primary.DashboardSummary
}

func (m *mockDashboardService) Summary(ctx context.Context, planID string) (*primary.DashboardSummary, error) {
	return m.summary, nil
}

func TestEvaluationAdapter_RankingMarksDefaults(t *testing.T) {
	evals := &mockEvaluationService{list: []*primary.Evaluation{
		{ProjectCode: "AUD-02", RiskLevel: 5, Criticality: 3.45, CriticalityLevel: "Alto", LastAuditStatus: "Completada", Stored: true},
		{ProjectCode: "AUD-01", RiskLevel: 1, RotationCycle: 12, Criticality: 1.425, CriticalityLevel: "Bajo", LastAuditStatus: "Sin auditoría"},
	}}
	var out bytes.Buffer
	if err := NewEvaluationAdapter(evals, nil, &out).Ranking(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if !strings.Contains(got, "AUD-01*") {
		t.Errorf("expected default marker on unevaluated project:\n%s", got)
	}
	if strings.Contains(got, "AUD-02*") {
		t.Errorf("stored evaluation should not be marked:\n%s", got)
	}
	if !strings.Contains(got, "3.45") {
		t.Errorf("expected two-decimal score:\n%s", got)
	}
}

func TestEvaluationAdapter_Dashboard(t *testing.T) {
	dash := &mockDashboardService{summary: &primary.DashboardSummary{
		PlanID:           "PLAN-001",
		TotalFindings:    3,
		FindingsByStatus: map[string]int{"Asignado": 2, "Vencida": 1},
		OverdueSwept:     1,
		UniverseProjects: 4,
		CriticalProjects: 1,
	}}
	var out bytes.Buffer
	if err := NewEvaluationAdapter(nil, dash, &out).Dashboard(context.Background(), "PLAN-001"); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"Dashboard (PLAN-001)", "Universe projects: 4 (1 critical)", "Newly overdue:     1", "Findings by status:"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Findings by risk") {
		t.Errorf("empty groups should be omitted:\n%s", got)
	}
}
