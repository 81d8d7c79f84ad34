// Package universe contains the pure business logic for the auditable universe
// and for copying universe projects into an annual plan.
package universe

import "sort"

// SubsectionSnapshot is a universe subsection as read before a copy.
type SubsectionSnapshot struct {
	ID          string
	Code        string
	Name        string
	Description string
	Order       int
}

// SectionSnapshot is a universe section with its subsections.
type SectionSnapshot struct {
	ID          string
	Code        string
	Name        string
	Description string
	Order       int
	Subsections []SubsectionSnapshot
}

// ProjectSnapshot is a universe project with its full section tree.
type ProjectSnapshot struct {
	ID           string
	Code         string
	Name         string
	Objective    string
	AuditType    string
	Process      string
	PlannedStart string
	PlannedEnd   string
	Sections     []SectionSnapshot
}

// CopyInput contains pre-fetched data for copying projects into a plan.
type CopyInput struct {
	PlanID string
	// Projects are the selected universe projects in selection order.
	Projects []ProjectSnapshot
	// ExistingOriginIDs are universe project IDs already copied into the plan.
	ExistingOriginIDs []string
}

// PlanSubsectionDraft is a plan subsection to insert.
type PlanSubsectionDraft struct {
	OriginID    string
	Code        string
	Name        string
	Description string
	Order       int
}

// PlanSectionDraft is a plan section to insert with its subsections.
type PlanSectionDraft struct {
	OriginID    string
	Code        string
	Name        string
	Description string
	Order       int
	Subsections []PlanSubsectionDraft
}

// PlanProjectDraft is a plan-project to insert with its section tree.
// Status, assignees and actual dates are not part of the copy.
type PlanProjectDraft struct {
	PlanID       string
	OriginID     string
	Code         string
	Name         string
	Objective    string
	AuditType    string
	Process      string
	PlannedStart string
	PlannedEnd   string
	Sections     []PlanSectionDraft
}

// CopyBatch is the planned outcome of a copy request.
type CopyBatch struct {
	PlanID  string
	Drafts  []PlanProjectDraft
	Skipped []string // universe project IDs already present or repeated in the selection
}

// SectionCount returns the number of plan sections the batch will create.
func (b CopyBatch) SectionCount() int {
	n := 0
	for _, d := range b.Drafts {
		n += len(d.Sections)
	}
	return n
}

// SubsectionCount returns the number of plan subsections the batch will create.
func (b CopyBatch) SubsectionCount() int {
	n := 0
	for _, d := range b.Drafts {
		for _, s := range d.Sections {
			n += len(s.Subsections)
		}
	}
	return n
}

// GenerateCopyBatch builds the deep copy of the selected projects.
// This is a pure function - all input data must be pre-fetched.
// Projects whose ID is already in the plan, or that appear twice in the
// selection, are skipped. Sections and subsections are ordered by Order.
func GenerateCopyBatch(input CopyInput) CopyBatch {
	batch := CopyBatch{PlanID: input.PlanID}

	seen := make(map[string]bool, len(input.ExistingOriginIDs)+len(input.Projects))
	for _, id := range input.ExistingOriginIDs {
		seen[id] = true
	}

	for _, p := range input.Projects {
		if seen[p.ID] {
			batch.Skipped = append(batch.Skipped, p.ID)
			continue
		}
		seen[p.ID] = true
		batch.Drafts = append(batch.Drafts, draftProject(input.PlanID, p))
	}

	return batch
}

func draftProject(planID string, p ProjectSnapshot) PlanProjectDraft {
	draft := PlanProjectDraft{
		PlanID:       planID,
		OriginID:     p.ID,
		Code:         p.Code,
		Name:         p.Name,
		Objective:    p.Objective,
		AuditType:    p.AuditType,
		Process:      p.Process,
		PlannedStart: p.PlannedStart,
		PlannedEnd:   p.PlannedEnd,
	}

	sections := append([]SectionSnapshot(nil), p.Sections...)
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Order < sections[j].Order })

	for _, sec := range sections {
		sd := PlanSectionDraft{
			OriginID:    sec.ID,
			Code:        sec.Code,
			Name:        sec.Name,
			Description: sec.Description,
			Order:       sec.Order,
		}

		subs := append([]SubsectionSnapshot(nil), sec.Subsections...)
		sort.SliceStable(subs, func(i, j int) bool { return subs[i].Order < subs[j].Order })
		for _, sub := range subs {
			sd.Subsections = append(sd.Subsections, PlanSubsectionDraft{
				OriginID:    sub.ID,
				Code:        sub.Code,
				Name:        sub.Name,
				Description: sub.Description,
				Order:       sub.Order,
			})
		}

		draft.Sections = append(draft.Sections, sd)
	}

	return draft
}
