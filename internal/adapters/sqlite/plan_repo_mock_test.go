package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/example/auditplus/internal/adapters/sqlite"
	"github.com/example/auditplus/internal/ports/secondary"
)

func TestPlanRepository_InsertProjectTrees_RollbackOnSubsectionFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer mockDB.Close()

	mock.ExpectBegin()
	for i := 0; i < 3; i++ {
		mock.ExpectQuery("SELECT COALESCE\\(MAX").WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(0))
	}
	mock.ExpectExec("INSERT INTO plan_projects").
		WithArgs("PPRJ-001", "PLAN-001", "UPRJ-001", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), "Sin Iniciar", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO plan_sections").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO plan_subsections").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	repo := sqlite.NewPlanRepository(mockDB)
	tree := secondary.PlanProjectTree{
		Project: secondary.PlanProjectRecord{PlanID: "PLAN-001", OriginProjectID: "UPRJ-001", Code: "AUD-1", Name: "Crédito"},
		Sections: []secondary.PlanSectionTree{{
			Section:     secondary.PlanSectionRecord{OriginSectionID: "SEC-001", Code: "S1", Name: "Otorgamiento"},
			Subsections: []secondary.PlanSubsectionRecord{{OriginSubsectionID: "SUB-001", Code: "S1.1", Name: "Solicitud"}},
		}},
	}

	if _, err := repo.InsertProjectTrees(context.Background(), []secondary.PlanProjectTree{tree}); err == nil {
		t.Fatal("expected error from failed subsection insert")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestFindingRepository_MarkOverdue_SingleStatement(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer mockDB.Close()

	mock.ExpectExec("UPDATE findings SET status = 'Vencida'").
		WithArgs("2026-10-15").
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := sqlite.NewFindingRepository(mockDB)
	n, err := repo.MarkOverdue(context.Background(), "2026-10-15")
	if err != nil {
		t.Fatalf("MarkOverdue failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 rows affected, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
