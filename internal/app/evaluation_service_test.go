package app

import (
	"errors"
	"math"
	"testing"

	"github.com/example/auditplus/internal/core/access"
	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/ports/secondary"
)

type evaluationFixture struct {
	service     *EvaluationServiceImpl
	universe    *mockUniverseRepository
	evaluations *mockEvaluationRepository
	projects    *mockPlanProjectRepository
	findings    *mockFindingRepository
}

func newTestEvaluationService() *evaluationFixture {
	f := &evaluationFixture{
		universe:    newMockUniverseRepository(),
		evaluations: newMockEvaluationRepository(),
		projects:    newMockPlanProjectRepository(),
		findings:    newMockFindingRepository(),
	}
	f.service = NewEvaluationService(f.universe, f.evaluations, newMockWeightRepository(),
		f.projects, f.findings, NewActivity(newMockAuditLogWriter(), nil), fixedClock())
	return f
}

// ============================================================================
// ListEvaluations Tests
// ============================================================================

func TestListEvaluations_DefaultsForUnevaluated(t *testing.T) {
	f := newTestEvaluationService()
	f.universe.addProject("AUD-01", 1)

	list, err := f.service.ListEvaluations(auditorCtx())

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 row, got %d", len(list))
	}
	ev := list[0]
	if ev.Stored {
		t.Error("expected default row to be marked as not stored")
	}
	if ev.RiskLevel != 1 || ev.RotationCycle != 12 || ev.LastAuditStatus != "N/A" {
		t.Errorf("unexpected defaults: %+v", ev)
	}
	// 1*0.30 + 5*0.15 + 2.5*0.15
	if math.Abs(ev.Criticality-1.425) > 1e-9 || ev.CriticalityLevel != "Bajo" {
		t.Errorf("expected 1.425 Bajo, got %v %s", ev.Criticality, ev.CriticalityLevel)
	}
}

func TestListEvaluations_RankedByCriticality(t *testing.T) {
	f := newTestEvaluationService()
	low := f.universe.addProject("AUD-01", 1)
	high := f.universe.addProject("AUD-02", 1)
	f.universe.addProject("AUD-03", 1)
	f.evaluations.evaluations[high.ID] = &secondary.EvaluationRecord{ProjectID: high.ID, RiskLevel: 5, MonthsSinceAudit: 24, FindingsLastAudit: 6, RotationCycle: 24}
	// stale stored criticality is ignored
	f.evaluations.evaluations[low.ID] = &secondary.EvaluationRecord{ProjectID: low.ID, RiskLevel: 1, RotationCycle: 1, FindingsLastAudit: 2, FindingsResolved: 2, Criticality: 99}

	list, err := f.service.ListEvaluations(auditorCtx())

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got := []string{list[0].ProjectCode, list[1].ProjectCode, list[2].ProjectCode}
	want := []string{"AUD-02", "AUD-03", "AUD-01"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
	if list[0].CriticalityLevel != "Muy Alto" {
		t.Errorf("expected Muy Alto, got %s", list[0].CriticalityLevel)
	}
}

// ============================================================================
// SaveEvaluation Tests
// ============================================================================

func TestSaveEvaluation_KeepsAuditHistory(t *testing.T) {
	f := newTestEvaluationService()
	p := f.universe.addProject("AUD-01", 1)
	f.evaluations.evaluations[p.ID] = &secondary.EvaluationRecord{
		ProjectID: p.ID, RiskLevel: 1, RotationCycle: 12, LastAuditStatus: "Completada", LastAuditDate: "2025-11-30",
	}

	ev, err := f.service.SaveEvaluation(auditorCtx(), primary.SaveEvaluationRequest{
		ProjectID: p.ID, RiskLevel: 3, MonthsSinceAudit: 12, FindingsLastAudit: 4, FindingsResolved: 2, RotationCycle: 12,
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if math.Abs(ev.Criticality-3.45) > 1e-9 || ev.CriticalityLevel != "Alto" {
		t.Errorf("expected 3.45 Alto, got %v %s", ev.Criticality, ev.CriticalityLevel)
	}
	stored := f.evaluations.evaluations[p.ID]
	if stored.LastAuditStatus != "Completada" || stored.LastAuditDate != "2025-11-30" {
		t.Errorf("expected audit history kept, got %+v", stored)
	}
	if math.Abs(stored.Criticality-3.45) > 1e-9 {
		t.Errorf("expected stored criticality 3.45, got %v", stored.Criticality)
	}
}

func TestSaveEvaluation_Rejects(t *testing.T) {
	tests := []struct {
		name string
		role access.Role
		req  primary.SaveEvaluationRequest
		want error
	}{
		{"risk out of range", access.RoleAuditor, primary.SaveEvaluationRequest{RiskLevel: 6, RotationCycle: 12}, nil},
		{"negative months", access.RoleAuditor, primary.SaveEvaluationRequest{RiskLevel: 2, MonthsSinceAudit: -1, RotationCycle: 12}, nil},
		{"zero cycle", access.RoleAuditor, primary.SaveEvaluationRequest{RiskLevel: 2}, nil},
		{"supervisor", access.RoleSupervisor, primary.SaveEvaluationRequest{RiskLevel: 2, RotationCycle: 12}, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestEvaluationService()
			p := f.universe.addProject("AUD-01", 1)
			tt.req.ProjectID = p.ID

			_, err := f.service.SaveEvaluation(actorCtx("USR-001", tt.role), tt.req)

			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Fatalf("expected %v, got %v", tt.want, err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(f.evaluations.evaluations) != 0 {
				t.Error("expected nothing stored")
			}
		})
	}
}

// ============================================================================
// SyncFromPlans Tests
// ============================================================================

func TestSyncFromPlans_UsesLatestPlan(t *testing.T) {
	f := newTestEvaluationService()
	p := f.universe.addProject("AUD-01", 1)
	f.universe.addProject("AUD-02", 1) // never planned
	f.evaluations.evaluations[p.ID] = &secondary.EvaluationRecord{ProjectID: p.ID, RiskLevel: 4, RotationCycle: 6}

	old, _ := f.projects.add("PLAN-001", "AUD-01", "Completada")
	old.OriginProjectID = p.ID
	old.ActualEnd = "2024-06-30"
	latest, _ := f.projects.add("PLAN-002", "AUD-01", "Completada")
	latest.OriginProjectID = p.ID
	latest.ActualEnd = "2025-12-15"
	f.projects.planYears["PLAN-001"] = 2024
	f.projects.planYears["PLAN-002"] = 2025

	for _, status := range []string{"Aceptada", "Aceptada", "Vencida", "Asignado"} {
		f.findings.add(&secondary.FindingRecord{PlanProjectID: latest.ID, Status: status})
	}
	f.findings.add(&secondary.FindingRecord{PlanProjectID: old.ID, Status: "Aceptada"})

	n, err := f.service.SyncFromPlans(auditorCtx())

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 project synced, got %d", n)
	}
	ev := f.evaluations.evaluations[p.ID]
	if ev.MonthsSinceAudit != 3 {
		t.Errorf("expected 3 months since 2025-12-15, got %d", ev.MonthsSinceAudit)
	}
	if ev.FindingsLastAudit != 4 || ev.FindingsResolved != 2 {
		t.Errorf("expected 4 findings with 2 resolved, got %d/%d", ev.FindingsLastAudit, ev.FindingsResolved)
	}
	if ev.LastAuditStatus != "Completada" || ev.LastAuditDate != "2025-12-15" {
		t.Errorf("unexpected audit history: %+v", ev)
	}
	if ev.RiskLevel != 4 || ev.RotationCycle != 6 {
		t.Errorf("expected manual fields kept, got risk %d cycle %d", ev.RiskLevel, ev.RotationCycle)
	}
	if ev.Criticality == 0 {
		t.Error("expected criticality to be recomputed")
	}
}

func TestSyncFromPlans_InProgressAudit(t *testing.T) {
	f := newTestEvaluationService()
	p := f.universe.addProject("AUD-01", 1)
	pp, _ := f.projects.add("PLAN-001", "AUD-01", "En Proceso")
	pp.OriginProjectID = p.ID

	if _, err := f.service.SyncFromPlans(auditorCtx()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	ev := f.evaluations.evaluations[p.ID]
	if ev == nil {
		t.Fatal("expected an evaluation to be created")
	}
	if ev.MonthsSinceAudit != 0 || ev.LastAuditStatus != "En Proceso" || ev.RiskLevel != 1 {
		t.Errorf("unexpected evaluation: %+v", ev)
	}
}
