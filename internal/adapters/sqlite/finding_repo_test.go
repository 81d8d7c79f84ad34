package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/example/auditplus/internal/adapters/sqlite"
	"github.com/example/auditplus/internal/ports/secondary"
)

// setupFindingTestDB creates a plan with one in-progress plan-project.
func setupFindingTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	db := setupTestDB(t)
	seedPlan(t, db, "PLAN-001", "PA-2026", 2026)
	_, sub := seedPlanProject(t, db, "PPRJ-001", "PLAN-001", "UPRJ-001", "En Proceso")
	seedUser(t, db, "USER-004", "auditado1", "auditado")
	return db, sub
}

func findingStatus(t *testing.T, repo *sqlite.FindingRepository, id string) string {
	t.Helper()
	f, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID(%s) failed: %v", id, err)
	}
	return f.Status
}

func TestFindingRepository_CreateAndGet(t *testing.T) {
	db, sub := setupFindingTestDB(t)
	repo := sqlite.NewFindingRepository(db)
	ctx := context.Background()

	id, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}

	f := &secondary.FindingRecord{
		ID: id, Code: "H-2026-001", PlanID: "PLAN-001", PlanProjectID: "PPRJ-001", PlanSubsectionID: sub,
		Condition: "Expedientes incompletos", Probability: 4, Impact: 5, RiskLevel: "Muy Alto",
		Area: "Dirección de Crédito", Status: "Sin Asignar",
	}
	if err := repo.Create(ctx, f); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Code != "H-2026-001" || got.RiskLevel != "Muy Alto" || got.Area != "Dirección de Crédito" {
		t.Errorf("unexpected finding: %+v", got)
	}
	if got.ResponsibleID != "" || got.CommitmentDate != "" {
		t.Errorf("expected empty assignment, got %+v", got)
	}

	exists, err := repo.CodeExists(ctx, "H-2026-001")
	if err != nil || !exists {
		t.Errorf("CodeExists = %v, %v", exists, err)
	}
}

func TestFindingRepository_CreateReallocatesTakenID(t *testing.T) {
	db, sub := setupFindingTestDB(t)
	repo := sqlite.NewFindingRepository(db)
	ctx := context.Background()

	// Two writers read the sequence before either inserts.
	first, _ := repo.GetNextID(ctx)
	second, _ := repo.GetNextID(ctx)
	if first != "FIND-001" || second != "FIND-001" {
		t.Fatalf("expected both writers to see FIND-001, got %s and %s", first, second)
	}

	a := &secondary.FindingRecord{
		ID: first, Code: "H-2026-001", PlanID: "PLAN-001", PlanProjectID: "PPRJ-001", PlanSubsectionID: sub,
		Probability: 2, Impact: 2, RiskLevel: "Bajo", Status: "Sin Asignar",
	}
	b := &secondary.FindingRecord{
		ID: second, Code: "H-2026-002", PlanID: "PLAN-001", PlanProjectID: "PPRJ-001", PlanSubsectionID: sub,
		Probability: 3, Impact: 3, RiskLevel: "Medio", Status: "Sin Asignar",
	}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create first failed: %v", err)
	}
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("Create second failed: %v", err)
	}
	if b.ID != "FIND-002" {
		t.Errorf("expected second finding to be stored as FIND-002, got %s", b.ID)
	}

	got, err := repo.GetByID(ctx, b.ID)
	if err != nil || got.Code != "H-2026-002" {
		t.Errorf("GetByID(%s) = %+v, %v", b.ID, got, err)
	}
}

func TestFindingRepository_DuplicateCodeIsNotAnIDClash(t *testing.T) {
	db, sub := setupFindingTestDB(t)
	repo := sqlite.NewFindingRepository(db)
	ctx := context.Background()

	seedFinding(t, db, "FIND-001", "PLAN-001", "PPRJ-001", sub, "Sin Asignar", "")
	existing, err := repo.GetByID(ctx, "FIND-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	dup := &secondary.FindingRecord{
		ID: "FIND-002", Code: existing.Code, PlanID: "PLAN-001", PlanProjectID: "PPRJ-001", PlanSubsectionID: sub,
		Probability: 1, Impact: 1, RiskLevel: "Muy Bajo", Status: "Sin Asignar",
	}
	if err := repo.Create(ctx, dup); !errors.Is(err, secondary.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for a repeated code, got %v", err)
	}
}

func TestFindingRepository_MarkOverdue(t *testing.T) {
	db, sub := setupFindingTestDB(t)
	repo := sqlite.NewFindingRepository(db)
	ctx := context.Background()
	today := "2026-10-15"

	seedFinding(t, db, "FIND-001", "PLAN-001", "PPRJ-001", sub, "Asignado", "2026-10-14")
	seedFinding(t, db, "FIND-002", "PLAN-001", "PPRJ-001", sub, "Sin Asignar", "2026-01-01")
	seedFinding(t, db, "FIND-003", "PLAN-001", "PPRJ-001", sub, "Asignado", "2026-10-15")
	seedFinding(t, db, "FIND-004", "PLAN-001", "PPRJ-001", sub, "Asignado", "")
	seedFinding(t, db, "FIND-005", "PLAN-001", "PPRJ-001", sub, "Respuesta Recibida", "2026-01-01")
	seedFinding(t, db, "FIND-006", "PLAN-001", "PPRJ-001", sub, "Aceptada", "2026-01-01")

	n, err := repo.MarkOverdue(ctx, today)
	if err != nil {
		t.Fatalf("MarkOverdue failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 findings marked overdue, got %d", n)
	}

	want := map[string]string{
		"FIND-001": "Vencida",
		"FIND-002": "Vencida",
		"FIND-003": "Asignado",
		"FIND-004": "Asignado",
		"FIND-005": "Respuesta Recibida",
		"FIND-006": "Aceptada",
	}
	for id, status := range want {
		if got := findingStatus(t, repo, id); got != status {
			t.Errorf("%s status = %q, want %q", id, got, status)
		}
	}

	// idempotent: a second sweep changes nothing
	n, err = repo.MarkOverdue(ctx, today)
	if err != nil {
		t.Fatalf("second MarkOverdue failed: %v", err)
	}
	if n != 0 {
		t.Errorf("second sweep affected %d rows, want 0", n)
	}
}

func TestFindingRepository_UpdateAssignment(t *testing.T) {
	db, sub := setupFindingTestDB(t)
	repo := sqlite.NewFindingRepository(db)
	ctx := context.Background()

	seedFinding(t, db, "FIND-001", "PLAN-001", "PPRJ-001", sub, "Sin Asignar", "")

	err := repo.UpdateAssignment(ctx, "FIND-001", secondary.AssignmentUpdate{
		ResponsibleID: "USER-004", CommitmentDate: "2026-11-30", AssignmentDate: "2026-10-15", Status: "Asignado",
	})
	if err != nil {
		t.Fatalf("UpdateAssignment failed: %v", err)
	}

	// reassign without touching the assignment date
	err = repo.UpdateAssignment(ctx, "FIND-001", secondary.AssignmentUpdate{
		ResponsibleID: "USER-004", CommitmentDate: "2026-12-15", Status: "Asignado",
	})
	if err != nil {
		t.Fatalf("UpdateAssignment failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, "FIND-001")
	if got.AssignmentDate != "2026-10-15" || got.CommitmentDate != "2026-12-15" || got.ResponsibleID != "USER-004" {
		t.Errorf("unexpected assignment: %+v", got)
	}

	if err := repo.UpdateAssignment(ctx, "FIND-999", secondary.AssignmentUpdate{Status: "Asignado"}); err == nil {
		t.Error("expected not found for unknown finding")
	}
}

func TestFindingRepository_Counts(t *testing.T) {
	db, sub := setupFindingTestDB(t)
	repo := sqlite.NewFindingRepository(db)
	ctx := context.Background()

	seedFinding(t, db, "FIND-001", "PLAN-001", "PPRJ-001", sub, "Aceptada", "")
	seedFinding(t, db, "FIND-002", "PLAN-001", "PPRJ-001", sub, "Aceptada", "")
	seedFinding(t, db, "FIND-003", "PLAN-001", "PPRJ-001", sub, "Asignado", "2026-12-01")

	total, accepted, err := repo.CountForPlanProject(ctx, "PPRJ-001")
	if err != nil {
		t.Fatalf("CountForPlanProject failed: %v", err)
	}
	if total != 3 || accepted != 2 {
		t.Errorf("counts = %d/%d, want 3/2", total, accepted)
	}

	byStatus, err := repo.CountBy(ctx, "status", secondary.FindingFilters{PlanID: "PLAN-001"})
	if err != nil {
		t.Fatalf("CountBy failed: %v", err)
	}
	if byStatus["Aceptada"] != 2 || byStatus["Asignado"] != 1 {
		t.Errorf("byStatus = %v", byStatus)
	}

	if _, err := repo.CountBy(ctx, "condition; DROP TABLE findings", secondary.FindingFilters{}); err == nil {
		t.Error("expected error for non-groupable column")
	}

	list, err := repo.List(ctx, secondary.FindingFilters{Statuses: []string{"Asignado", "Vencida"}})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != "FIND-003" {
		t.Errorf("status-set filter returned %d findings", len(list))
	}

	n, err := repo.CountForPlan(ctx, "PLAN-001")
	if err != nil || n != 3 {
		t.Errorf("CountForPlan = %d, %v", n, err)
	}
}

func TestFindingRepository_DeleteCascadesAttachments(t *testing.T) {
	db, sub := setupFindingTestDB(t)
	repo := sqlite.NewFindingRepository(db)
	attRepo := sqlite.NewAttachmentRepository(db)
	ctx := context.Background()

	seedFinding(t, db, "FIND-001", "PLAN-001", "PPRJ-001", sub, "Asignado", "")
	if err := attRepo.Create(ctx, &secondary.AttachmentRecord{
		ID: "ATT-001", Kind: secondary.AttachmentKindResponse, ParentID: "FIND-001",
		Filename: "respuesta.pdf", Data: []byte("%PDF"),
	}); err != nil {
		t.Fatalf("Create attachment failed: %v", err)
	}

	if err := repo.Delete(ctx, "FIND-001"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := attRepo.Get(ctx, "ATT-001"); err == nil {
		t.Error("expected attachment to be deleted with its finding")
	}
}
