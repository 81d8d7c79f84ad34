// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting and delegate
// business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/auditplus/internal/ports/primary"
)

// UniverseAdapter translates universe commands into UniverseService calls.
type UniverseAdapter struct {
	service primary.UniverseService
	out     io.Writer
}

// NewUniverseAdapter creates a new UniverseAdapter with the given service.
func NewUniverseAdapter(service primary.UniverseService, out io.Writer) *UniverseAdapter {
	return &UniverseAdapter{service: service, out: out}
}

// Create creates a universe project.
func (a *UniverseAdapter) Create(ctx context.Context, req primary.CreateProjectRequest) error {
	project, err := a.service.CreateProject(ctx, req)
	if err != nil {
		return err
	}
	success(a.out, "Created project %s: %s (%s)", project.ID, project.Name, project.Code)
	return nil
}

// Import creates a project with its full tree from a YAML template.
func (a *UniverseAdapter) Import(ctx context.Context, template []byte) error {
	detail, err := a.service.ImportProject(ctx, template)
	if err != nil {
		return err
	}
	subsections := 0
	for _, s := range detail.Sections {
		subsections += len(s.Subsections)
	}
	success(a.out, "Imported project %s: %s (%d sections, %d subsections)",
		detail.Project.ID, detail.Project.Name, len(detail.Sections), subsections)
	return nil
}

// List lists universe projects.
func (a *UniverseAdapter) List(ctx context.Context, filters primary.UniverseFilters) error {
	projects, err := a.service.ListProjects(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	if len(projects) == 0 {
		fmt.Fprintln(a.out, "No projects found")
		return nil
	}

	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tCODE\tTYPE\tPROCESS\tNAME")
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Code, orDash(p.AuditType), orDash(p.Process), p.Name)
	}
	return tw.Flush()
}

// Show prints a project with its section tree and attachments.
func (a *UniverseAdapter) Show(ctx context.Context, projectID string) error {
	detail, err := a.service.GetProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}

	p := detail.Project
	fmt.Fprintf(a.out, "\nProject: %s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(a.out, "Code:    %s\n", p.Code)
	if p.Objective != "" {
		fmt.Fprintf(a.out, "Objective: %s\n", p.Objective)
	}
	fmt.Fprintf(a.out, "Type:    %s\n", orDash(p.AuditType))
	fmt.Fprintf(a.out, "Process: %s\n", orDash(p.Process))
	if p.PlannedStart != "" || p.PlannedEnd != "" {
		fmt.Fprintf(a.out, "Planned: %s → %s\n", orDash(p.PlannedStart), orDash(p.PlannedEnd))
	}

	if len(detail.Sections) == 0 {
		fmt.Fprintln(a.out, "\nNo sections")
	} else {
		fmt.Fprintln(a.out, "\nSections:")
		for _, s := range detail.Sections {
			fmt.Fprintf(a.out, "  %d. %s %s [%s]\n", s.Order, s.Code, s.Name, s.ID)
			for _, sub := range s.Subsections {
				fmt.Fprintf(a.out, "     %d. %s %s [%s]\n", sub.Order, sub.Code, sub.Name, sub.ID)
			}
		}
	}

	if len(detail.Attachments) > 0 {
		fmt.Fprintln(a.out, "\nAttachments:")
		for _, att := range detail.Attachments {
			fmt.Fprintf(a.out, "  - %s %s (%d bytes)\n", att.ID, att.Filename, att.Size)
		}
	}
	fmt.Fprintln(a.out)
	return nil
}

// AddSection adds a section to a project.
func (a *UniverseAdapter) AddSection(ctx context.Context, req primary.AddNodeRequest) error {
	section, err := a.service.AddSection(ctx, req)
	if err != nil {
		return err
	}
	success(a.out, "Added section %s: %s %s", section.ID, section.Code, section.Name)
	return nil
}

// AddSubsection adds a subsection to a section.
func (a *UniverseAdapter) AddSubsection(ctx context.Context, req primary.AddNodeRequest) error {
	sub, err := a.service.AddSubsection(ctx, req)
	if err != nil {
		return err
	}
	success(a.out, "Added subsection %s: %s %s", sub.ID, sub.Code, sub.Name)
	return nil
}

// Attach uploads a file to a project.
func (a *UniverseAdapter) Attach(ctx context.Context, req primary.AddAttachmentRequest) error {
	att, err := a.service.AddAttachment(ctx, req)
	if err != nil {
		return err
	}
	success(a.out, "Attached %s to %s as %s (%s)", att.Filename, req.ParentID, att.ID, att.ContentType)
	return nil
}

// Delete deletes a project and everything under it.
func (a *UniverseAdapter) Delete(ctx context.Context, projectID string) error {
	if err := a.service.DeleteProject(ctx, projectID); err != nil {
		return err
	}
	success(a.out, "Deleted project %s", projectID)
	return nil
}
