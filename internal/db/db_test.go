package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func countRows(t *testing.T, database *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := database.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestOpenMemory_AppliesSchema(t *testing.T) {
	database, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer database.Close()

	version, err := CurrentVersion(database)
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("version = %d, want %d", version, len(migrations))
	}

	var fk int
	if err := database.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("PRAGMA failed: %v", err)
	}
	if fk != 1 {
		t.Error("foreign keys should be enabled")
	}
}

func TestOpen_CreatesFileAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "auditplus.db")

	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := SeedDefaults(database, false); err != nil {
		t.Fatalf("SeedDefaults failed: %v", err)
	}
	database.Close()

	// reopening an existing file runs migrations instead of the fresh schema
	database, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer database.Close()

	if n := countRows(t, database, "users"); n != 1 {
		t.Errorf("expected seeded admin to survive reopen, got %d users", n)
	}
}

func TestSeedDefaults_Idempotent(t *testing.T) {
	database, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer database.Close()

	for i := 0; i < 2; i++ {
		if err := SeedDefaults(database, true); err != nil {
			t.Fatalf("SeedDefaults run %d failed: %v", i+1, err)
		}
	}

	if n := countRows(t, database, "users"); n != 4 {
		t.Errorf("users = %d, want 4", n)
	}
	if n := countRows(t, database, "catalog_entries"); n != len(seedCatalog) {
		t.Errorf("catalog entries = %d, want %d", n, len(seedCatalog))
	}
	if n := countRows(t, database, "evaluation_weights"); n != 5 {
		t.Errorf("weights = %d, want 5", n)
	}

	var sum float64
	if err := database.QueryRow("SELECT SUM(weight) FROM evaluation_weights").Scan(&sum); err != nil {
		t.Fatalf("sum weights: %v", err)
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("default weights sum to %v, want 1", sum)
	}

	var hash string
	if err := database.QueryRow("SELECT password_hash FROM users WHERE username = 'admin'").Scan(&hash); err != nil {
		t.Fatalf("load admin: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(DefaultAdminPassword)); err != nil {
		t.Errorf("admin hash does not match default password: %v", err)
	}
}

func TestSeedDefaults_KeepsExistingUsers(t *testing.T) {
	database, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer database.Close()

	if _, err := database.Exec(
		"INSERT INTO users (id, username, password_hash, full_name, role) VALUES ('USER-001', 'jefa', 'x', 'Jefa', 'auditor')",
	); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if err := SeedDefaults(database, true); err != nil {
		t.Fatalf("SeedDefaults failed: %v", err)
	}
	if n := countRows(t, database, "users"); n != 1 {
		t.Errorf("seeding should not touch a populated users table, got %d users", n)
	}
}

func TestExpandPath(t *testing.T) {
	got, err := ExpandPath("/tmp/x.db")
	if err != nil || got != "/tmp/x.db" {
		t.Errorf("absolute path changed: %q, %v", got, err)
	}

	got, err = ExpandPath("~/data/x.db")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if !filepath.IsAbs(got) || filepath.Base(got) != "x.db" {
		t.Errorf("tilde not expanded: %q", got)
	}

	def, err := ExpandPath("")
	if err != nil {
		t.Fatalf("ExpandPath(\"\") failed: %v", err)
	}
	if filepath.Base(def) != "auditplus.db" {
		t.Errorf("default path = %q", def)
	}
}
