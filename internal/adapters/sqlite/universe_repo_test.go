package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/auditplus/internal/adapters/sqlite"
	"github.com/example/auditplus/internal/ports/secondary"
)

func TestUniverseRepository_CreateProjectTree(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewUniverseRepository(db)
	ctx := context.Background()

	seedUniverseProject(t, db, "UPRJ-001", "AUD-EXIST")
	seedSection(t, db, "SEC-001", "UPRJ-001", "S1", 1)

	tree := &secondary.UniverseTreeRecord{
		Project: secondary.UniverseProjectRecord{Code: "AUD-CRED", Name: "Crédito", AuditType: "Auditoría Operativa"},
		Sections: []secondary.UniverseSectionTree{
			{
				Section: secondary.UniverseSectionRecord{Code: "S1", Name: "Otorgamiento", Order: 1},
				Subsections: []secondary.UniverseSubsectionRecord{
					{Code: "S1.1", Name: "Solicitud", Order: 1},
					{Code: "S1.2", Name: "Análisis", Order: 2},
				},
			},
		},
	}
	if err := repo.CreateProjectTree(ctx, tree); err != nil {
		t.Fatalf("CreateProjectTree failed: %v", err)
	}

	if tree.Project.ID != "UPRJ-002" {
		t.Errorf("project ID = %s, want UPRJ-002", tree.Project.ID)
	}
	if tree.Sections[0].Section.ID != "SEC-002" {
		t.Errorf("section ID = %s, want SEC-002", tree.Sections[0].Section.ID)
	}
	if got := tree.Sections[0].Subsections[1].ID; got != "SUB-002" {
		t.Errorf("subsection ID = %s, want SUB-002", got)
	}

	subs, err := repo.ListSubsections(ctx, "UPRJ-002")
	if err != nil {
		t.Fatalf("ListSubsections failed: %v", err)
	}
	if len(subs) != 2 || subs[0].SectionID != "SEC-002" {
		t.Errorf("unexpected subsections: %+v", subs)
	}

	dupTree := &secondary.UniverseTreeRecord{
		Project:  secondary.UniverseProjectRecord{Code: "AUD-CRED", Name: "Otra"},
		Sections: []secondary.UniverseSectionTree{{Section: secondary.UniverseSectionRecord{Code: "S1", Name: "X"}}},
	}
	if err := repo.CreateProjectTree(ctx, dupTree); !errors.Is(err, secondary.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
	var sections int
	if err := db.QueryRow("SELECT COUNT(*) FROM universe_sections").Scan(&sections); err != nil {
		t.Fatalf("count sections: %v", err)
	}
	if sections != 2 {
		t.Errorf("failed tree left sections behind: %d rows, want 2", sections)
	}
}

func TestUniverseRepository_DeleteProjectCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewUniverseRepository(db)
	attRepo := sqlite.NewAttachmentRepository(db)
	ctx := context.Background()

	seedUniverseProject(t, db, "UPRJ-001", "AUD-001")
	seedSection(t, db, "SEC-001", "UPRJ-001", "S1", 1)
	seedSubsection(t, db, "SUB-001", "SEC-001", "S1.1", 1)
	if err := attRepo.Create(ctx, &secondary.AttachmentRecord{
		ID: "ATT-001", Kind: secondary.AttachmentKindProject, ParentID: "UPRJ-001", Filename: "alcance.docx", Data: []byte("x"),
	}); err != nil {
		t.Fatalf("Create attachment failed: %v", err)
	}

	if err := repo.DeleteProject(ctx, "UPRJ-001"); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}
	for _, table := range []string{"universe_sections", "universe_subsections", "project_attachments"} {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s not cascaded: %d rows", table, n)
		}
	}
}

func TestUniverseRepository_ListProjectsFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewUniverseRepository(db)
	ctx := context.Background()

	seedUniverseProject(t, db, "UPRJ-001", "AUD-CRED")
	seedUniverseProject(t, db, "UPRJ-002", "AUD-TES")

	got, err := repo.ListProjects(ctx, secondary.UniverseFilters{Search: "CRED"})
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "UPRJ-001" {
		t.Errorf("search returned %+v", got)
	}

	got, _ = repo.ListProjects(ctx, secondary.UniverseFilters{Process: "Crédito"})
	if len(got) != 2 {
		t.Errorf("process filter returned %d projects", len(got))
	}
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	id, err := repo.GetNextID(ctx)
	if err != nil || id != "USER-001" {
		t.Fatalf("GetNextID = %s, %v", id, err)
	}
	u := &secondary.UserRecord{ID: id, Username: "ana", PasswordHash: "h", FullName: "Ana Pérez", Role: "supervisor", IsActive: true}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dup := &secondary.UserRecord{ID: "USER-002", Username: "ana", PasswordHash: "h", FullName: "Otra", Role: "auditado", IsActive: true}
	if err := repo.Create(ctx, dup); !errors.Is(err, secondary.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	if err := repo.SetActive(ctx, id, false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	active, _ := repo.List(ctx, secondary.UserFilters{})
	if len(active) != 0 {
		t.Errorf("inactive user listed: %+v", active)
	}
	all, _ := repo.List(ctx, secondary.UserFilters{IncludeInactive: true})
	if len(all) != 1 || all[0].IsActive {
		t.Errorf("expected one inactive user, got %+v", all)
	}

	got, err := repo.GetByUsername(ctx, "ana")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if got.Role != "supervisor" {
		t.Errorf("role = %s", got.Role)
	}

	if err := repo.UpdateRole(ctx, id, "root"); err == nil {
		t.Error("expected role CHECK constraint failure")
	}
	if _, err := repo.GetByUsername(ctx, "nadie"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalogRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCatalogRepository(db)
	ctx := context.Background()

	order, err := repo.NextDisplayOrder(ctx, "area")
	if err != nil || order != 1 {
		t.Fatalf("NextDisplayOrder = %d, %v", order, err)
	}

	for i, v := range []string{"Tesorería", "Crédito"} {
		id, _ := repo.GetNextID(ctx)
		if err := repo.Create(ctx, &secondary.CatalogRecord{ID: id, Type: "area", Value: v, IsActive: true, DisplayOrder: i + 1}); err != nil {
			t.Fatalf("Create %s failed: %v", v, err)
		}
	}

	dup := &secondary.CatalogRecord{ID: "CAT-099", Type: "area", Value: "Crédito", IsActive: true}
	if err := repo.Create(ctx, dup); !errors.Is(err, secondary.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	if err := repo.SetActive(ctx, "CAT-001", false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	entries, _ := repo.List(ctx, secondary.CatalogFilters{Type: "area"})
	if len(entries) != 1 || entries[0].Value != "Crédito" {
		t.Errorf("active entries = %+v", entries)
	}

	exists, _ := repo.ValueExists(ctx, "area", "Tesorería")
	if !exists {
		t.Error("inactive value should still exist")
	}
	order, _ = repo.NextDisplayOrder(ctx, "area")
	if order != 3 {
		t.Errorf("NextDisplayOrder = %d, want 3", order)
	}
}
