package universe

import (
	"reflect"
	"testing"
)

func sampleProject() ProjectSnapshot {
	return ProjectSnapshot{
		ID:        "UPRJ-001",
		Code:      "AUD-CRED",
		Name:      "Auditoría de Crédito",
		Objective: "Evaluar el otorgamiento",
		AuditType: "Auditoría Operativa",
		Process:   "Crédito",
		Sections: []SectionSnapshot{
			{
				ID: "SEC-002", Code: "S2", Name: "Cobranza", Order: 2,
				Subsections: []SubsectionSnapshot{
					{ID: "SUB-004", Code: "S2.1", Name: "Mora", Order: 1},
				},
			},
			{
				ID: "SEC-001", Code: "S1", Name: "Otorgamiento", Order: 1,
				Subsections: []SubsectionSnapshot{
					{ID: "SUB-003", Code: "S1.3", Name: "Garantías", Order: 3},
					{ID: "SUB-001", Code: "S1.1", Name: "Solicitud", Order: 1},
					{ID: "SUB-002", Code: "S1.2", Name: "Análisis", Order: 2},
				},
			},
		},
	}
}

func TestGenerateCopyBatch_DeepCopy(t *testing.T) {
	batch := GenerateCopyBatch(CopyInput{
		PlanID:   "PLAN-001",
		Projects: []ProjectSnapshot{sampleProject()},
	})

	if len(batch.Drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(batch.Drafts))
	}
	if batch.SectionCount() != 2 {
		t.Errorf("expected 2 sections, got %d", batch.SectionCount())
	}
	if batch.SubsectionCount() != 4 {
		t.Errorf("expected 4 subsections, got %d", batch.SubsectionCount())
	}

	d := batch.Drafts[0]
	if d.OriginID != "UPRJ-001" || d.PlanID != "PLAN-001" || d.Code != "AUD-CRED" || d.Process != "Crédito" {
		t.Errorf("unexpected draft header: %+v", d)
	}

	// sections and subsections come out ordered, with origin ids preserved
	if d.Sections[0].OriginID != "SEC-001" || d.Sections[1].OriginID != "SEC-002" {
		t.Errorf("sections not ordered: %s, %s", d.Sections[0].OriginID, d.Sections[1].OriginID)
	}
	var subOrigins []string
	for _, sub := range d.Sections[0].Subsections {
		subOrigins = append(subOrigins, sub.OriginID)
	}
	if want := []string{"SUB-001", "SUB-002", "SUB-003"}; !reflect.DeepEqual(subOrigins, want) {
		t.Errorf("subsection origins = %v, want %v", subOrigins, want)
	}
}

func TestGenerateCopyBatch_DoesNotAliasInput(t *testing.T) {
	p := sampleProject()
	GenerateCopyBatch(CopyInput{PlanID: "PLAN-001", Projects: []ProjectSnapshot{p}})

	if p.Sections[0].ID != "SEC-002" {
		t.Error("input sections were reordered in place")
	}
}

func TestGenerateCopyBatch_SkipsExistingAndRepeated(t *testing.T) {
	other := ProjectSnapshot{ID: "UPRJ-002", Code: "AUD-TI", Name: "TI"}

	batch := GenerateCopyBatch(CopyInput{
		PlanID:            "PLAN-001",
		Projects:          []ProjectSnapshot{sampleProject(), other, other},
		ExistingOriginIDs: []string{"UPRJ-001"},
	})

	if len(batch.Drafts) != 1 || batch.Drafts[0].OriginID != "UPRJ-002" {
		t.Fatalf("unexpected drafts: %+v", batch.Drafts)
	}
	if want := []string{"UPRJ-001", "UPRJ-002"}; !reflect.DeepEqual(batch.Skipped, want) {
		t.Errorf("Skipped = %v, want %v", batch.Skipped, want)
	}
}

func TestGenerateCopyBatch_AllPresentIsNoOp(t *testing.T) {
	batch := GenerateCopyBatch(CopyInput{
		PlanID:            "PLAN-001",
		Projects:          []ProjectSnapshot{sampleProject()},
		ExistingOriginIDs: []string{"UPRJ-001"},
	})
	if len(batch.Drafts) != 0 {
		t.Errorf("expected no drafts, got %d", len(batch.Drafts))
	}
}

func TestValidateAttachmentName(t *testing.T) {
	tests := []struct {
		filename    string
		wantAllowed bool
	}{
		{"informe.pdf", true},
		{"papeles.XLSX", true},
		{"foto.jpeg", true},
		{"script.exe", false},
		{"sin_extension", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := ValidateAttachmentName(tt.filename).Allowed; got != tt.wantAllowed {
				t.Errorf("ValidateAttachmentName(%q) = %v, want %v", tt.filename, got, tt.wantAllowed)
			}
		})
	}
}

func TestCanCreateProject(t *testing.T) {
	if !CanCreateProject(CreateProjectContext{ActorRole: "auditor", Code: "AUD-1", Name: "X"}).Allowed {
		t.Error("expected allowed")
	}
	if res := CanCreateProject(CreateProjectContext{ActorRole: "auditor", Code: "AUD-1", Name: "X", CodeExists: true}); res.Reason != "project code AUD-1 already exists" {
		t.Errorf("Reason = %q", res.Reason)
	}
	if res := CanAddNode(NodeContext{ActorRole: "auditor", ParentID: "SEC-009"}); res.Reason != "SEC-009 not found" {
		t.Errorf("Reason = %q", res.Reason)
	}
}
