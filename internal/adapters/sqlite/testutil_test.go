// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB() and
// the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/auditplus/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// One connection only: every SQLite memory connection is its own database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("seed failed (%s): %v", query, err)
	}
}

// seedUser inserts an active user with the given role.
func seedUser(t *testing.T, db *sql.DB, id, username, role string) string {
	t.Helper()
	mustExec(t, db,
		"INSERT INTO users (id, username, password_hash, full_name, role) VALUES (?, ?, 'x', ?, ?)",
		id, username, "Full "+username, role)
	return id
}

// seedUniverseProject inserts a universe project.
func seedUniverseProject(t *testing.T, db *sql.DB, id, code string) string {
	t.Helper()
	mustExec(t, db,
		"INSERT INTO universe_projects (id, code, name, audit_type, process) VALUES (?, ?, ?, 'Auditoría Operativa', 'Crédito')",
		id, code, "Project "+code)
	return id
}

// seedSection inserts a universe section.
func seedSection(t *testing.T, db *sql.DB, id, projectID, code string, order int) string {
	t.Helper()
	mustExec(t, db,
		"INSERT INTO universe_sections (id, project_id, code, name, sort_order) VALUES (?, ?, ?, ?, ?)",
		id, projectID, code, "Section "+code, order)
	return id
}

// seedSubsection inserts a universe subsection.
func seedSubsection(t *testing.T, db *sql.DB, id, sectionID, code string, order int) string {
	t.Helper()
	mustExec(t, db,
		"INSERT INTO universe_subsections (id, section_id, code, name, sort_order) VALUES (?, ?, ?, ?, ?)",
		id, sectionID, code, "Subsection "+code, order)
	return id
}

// seedPlan inserts an active plan.
func seedPlan(t *testing.T, db *sql.DB, id, code string, year int) string {
	t.Helper()
	mustExec(t, db, "INSERT INTO plans (id, code, name, year) VALUES (?, ?, ?, ?)", id, code, "Plan "+code, year)
	return id
}

// seedPlanProject inserts a plan-project with one section (PSEC-xxx) and one
// subsection (PSUB-xxx) numbered after the plan-project.
func seedPlanProject(t *testing.T, db *sql.DB, id, planID, originID, status string) (sectionID, subsectionID string) {
	t.Helper()
	mustExec(t, db,
		"INSERT INTO plan_projects (id, plan_id, origin_project_id, code, name, status) VALUES (?, ?, ?, ?, ?, ?)",
		id, planID, originID, "C-"+id, "Name "+id, status)
	suffix := id[len("PPRJ-"):]
	sectionID = "PSEC-" + suffix
	subsectionID = "PSUB-" + suffix
	mustExec(t, db,
		"INSERT INTO plan_sections (id, plan_project_id, code, name, sort_order) VALUES (?, ?, 'S1', 'Sección', 1)",
		sectionID, id)
	mustExec(t, db,
		"INSERT INTO plan_subsections (id, plan_section_id, code, name, sort_order) VALUES (?, ?, 'S1.1', 'Subsección', 1)",
		subsectionID, sectionID)
	return sectionID, subsectionID
}

// seedFinding inserts a finding with the given status and commitment date.
func seedFinding(t *testing.T, db *sql.DB, id, planID, planProjectID, subsectionID, status, commitment string) string {
	t.Helper()
	var c any
	if commitment != "" {
		c = commitment
	}
	mustExec(t, db,
		`INSERT INTO findings (id, code, plan_id, plan_project_id, plan_subsection_id, condition, probability, impact,
			risk_level, status, commitment_date)
		VALUES (?, ?, ?, ?, ?, 'Condición', 3, 3, 'Medio', ?, ?)`,
		id, "H-"+id, planID, planProjectID, subsectionID, status, c)
	return id
}
