package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/auditplus/internal/ports/secondary"
)

// UniverseRepository implements secondary.UniverseRepository with SQLite.
type UniverseRepository struct {
	db *sql.DB
}

// NewUniverseRepository creates a new SQLite universe repository.
func NewUniverseRepository(db *sql.DB) *UniverseRepository {
	return &UniverseRepository{db: db}
}

const universeProjectColumns = `id, code, name, objective, audit_type, process, planned_start, planned_end,
	created_by, created_at, updated_at`

func scanUniverseProject(scan func(dest ...any) error) (*secondary.UniverseProjectRecord, error) {
	var (
		objective, auditType, process sql.NullString
		plannedStart, plannedEnd      sql.NullString
		createdBy                     sql.NullString
		createdAt, updatedAt          time.Time
	)
	record := &secondary.UniverseProjectRecord{}
	if err := scan(&record.ID, &record.Code, &record.Name, &objective, &auditType, &process,
		&plannedStart, &plannedEnd, &createdBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	record.Objective = objective.String
	record.AuditType = auditType.String
	record.Process = process.String
	record.PlannedStart = plannedStart.String
	record.PlannedEnd = plannedEnd.String
	record.CreatedBy = createdBy.String
	record.CreatedAt = formatTime(createdAt)
	record.UpdatedAt = formatTime(updatedAt)
	return record, nil
}

func insertUniverseProject(ctx context.Context, e execer, p *secondary.UniverseProjectRecord) error {
	_, err := e.ExecContext(ctx,
		`INSERT INTO universe_projects (id, code, name, objective, audit_type, process, planned_start, planned_end, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Code, p.Name, nullString(p.Objective), nullString(p.AuditType), nullString(p.Process),
		nullString(p.PlannedStart), nullString(p.PlannedEnd), nullString(p.CreatedBy),
	)
	if err != nil {
		return wrapWriteErr("create universe project", "project code "+p.Code, err)
	}
	return nil
}

func insertUniverseSection(ctx context.Context, e execer, s *secondary.UniverseSectionRecord) error {
	_, err := e.ExecContext(ctx,
		"INSERT INTO universe_sections (id, project_id, code, name, description, sort_order) VALUES (?, ?, ?, ?, ?, ?)",
		s.ID, s.ProjectID, s.Code, s.Name, nullString(s.Description), s.Order,
	)
	if err != nil {
		return fmt.Errorf("failed to create section: %w", err)
	}
	return nil
}

func insertUniverseSubsection(ctx context.Context, e execer, s *secondary.UniverseSubsectionRecord) error {
	_, err := e.ExecContext(ctx,
		"INSERT INTO universe_subsections (id, section_id, code, name, description, sort_order) VALUES (?, ?, ?, ?, ?, ?)",
		s.ID, s.SectionID, s.Code, s.Name, nullString(s.Description), s.Order,
	)
	if err != nil {
		return fmt.Errorf("failed to create subsection: %w", err)
	}
	return nil
}

var (
	projectSequence    = tableSequence("universe_projects", "UPRJ-")
	sectionSequence    = tableSequence("universe_sections", "SEC-")
	subsectionSequence = tableSequence("universe_subsections", "SUB-")
)

// CreateProject persists a new universe project.
func (r *UniverseRepository) CreateProject(ctx context.Context, project *secondary.UniverseProjectRecord) error {
	return insertSequenced(ctx, r.db, &project.ID, projectSequence, func(ctx context.Context, e execer, id string) error {
		row := *project
		row.ID = id
		return insertUniverseProject(ctx, e, &row)
	})
}

// CreateProjectTree persists a project with its sections and subsections in one transaction.
// The assigned IDs are written back into tree.
func (r *UniverseRepository) CreateProjectTree(ctx context.Context, tree *secondary.UniverseTreeRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	projectSeq, err := maxSequence(ctx, tx, "universe_projects", "UPRJ-")
	if err != nil {
		return fmt.Errorf("failed to allocate project ID: %w", err)
	}
	sectionSeq, err := maxSequence(ctx, tx, "universe_sections", "SEC-")
	if err != nil {
		return fmt.Errorf("failed to allocate section ID: %w", err)
	}
	subSeq, err := maxSequence(ctx, tx, "universe_subsections", "SUB-")
	if err != nil {
		return fmt.Errorf("failed to allocate subsection ID: %w", err)
	}

	tree.Project.ID = formatID("UPRJ-", projectSeq+1)
	if err := insertUniverseProject(ctx, tx, &tree.Project); err != nil {
		return err
	}

	for i := range tree.Sections {
		sec := &tree.Sections[i]
		sectionSeq++
		sec.Section.ID = formatID("SEC-", sectionSeq)
		sec.Section.ProjectID = tree.Project.ID
		if err := insertUniverseSection(ctx, tx, &sec.Section); err != nil {
			return err
		}
		for j := range sec.Subsections {
			sub := &sec.Subsections[j]
			subSeq++
			sub.ID = formatID("SUB-", subSeq)
			sub.SectionID = sec.Section.ID
			if err := insertUniverseSubsection(ctx, tx, sub); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit project tree: %w", err)
	}
	return nil
}

// GetProject retrieves a project by its ID.
func (r *UniverseRepository) GetProject(ctx context.Context, id string) (*secondary.UniverseProjectRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+universeProjectColumns+" FROM universe_projects WHERE id = ?", id)
	record, err := scanUniverseProject(row.Scan)
	if err == sql.ErrNoRows {
		return nil, notFound("universe project", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get universe project: %w", err)
	}
	return record, nil
}

// ListProjects retrieves projects matching the given filters.
func (r *UniverseRepository) ListProjects(ctx context.Context, filters secondary.UniverseFilters) ([]*secondary.UniverseProjectRecord, error) {
	query := "SELECT " + universeProjectColumns + " FROM universe_projects WHERE 1=1"
	args := []any{}

	if filters.AuditType != "" {
		query += " AND audit_type = ?"
		args = append(args, filters.AuditType)
	}
	if filters.Process != "" {
		query += " AND process = ?"
		args = append(args, filters.Process)
	}
	if filters.Search != "" {
		query += " AND (code LIKE ? OR name LIKE ?)"
		like := "%" + filters.Search + "%"
		args = append(args, like, like)
	}
	query += " ORDER BY code"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list universe projects: %w", err)
	}
	defer rows.Close()

	var projects []*secondary.UniverseProjectRecord
	for rows.Next() {
		record, err := scanUniverseProject(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan universe project: %w", err)
		}
		projects = append(projects, record)
	}
	return projects, rows.Err()
}

// UpdateProject overwrites the editable fields of a project.
func (r *UniverseRepository) UpdateProject(ctx context.Context, p *secondary.UniverseProjectRecord) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE universe_projects SET code = ?, name = ?, objective = ?, audit_type = ?, process = ?,
			planned_start = ?, planned_end = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		p.Code, p.Name, nullString(p.Objective), nullString(p.AuditType), nullString(p.Process),
		nullString(p.PlannedStart), nullString(p.PlannedEnd), p.ID,
	)
	if err != nil {
		return wrapWriteErr("update universe project", "project code "+p.Code, err)
	}
	return checkAffected(result, "universe project", p.ID)
}

// DeleteProject removes a project and everything that cascades from it.
func (r *UniverseRepository) DeleteProject(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM universe_projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete universe project: %w", err)
	}
	return checkAffected(result, "universe project", id)
}

// CodeExists reports whether a project code is taken.
func (r *UniverseRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM universe_projects WHERE code = ?", code).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check project code: %w", err)
	}
	return count > 0, nil
}

// CreateSection persists a new section.
func (r *UniverseRepository) CreateSection(ctx context.Context, section *secondary.UniverseSectionRecord) error {
	return insertSequenced(ctx, r.db, &section.ID, sectionSequence, func(ctx context.Context, e execer, id string) error {
		row := *section
		row.ID = id
		return insertUniverseSection(ctx, e, &row)
	})
}

// GetSection retrieves a section by its ID.
func (r *UniverseRepository) GetSection(ctx context.Context, id string) (*secondary.UniverseSectionRecord, error) {
	var desc sql.NullString
	record := &secondary.UniverseSectionRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, project_id, code, name, description, sort_order FROM universe_sections WHERE id = ?", id,
	).Scan(&record.ID, &record.ProjectID, &record.Code, &record.Name, &desc, &record.Order)
	if err == sql.ErrNoRows {
		return nil, notFound("section", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get section: %w", err)
	}
	record.Description = desc.String
	return record, nil
}

// ListSections returns the sections of a project.
func (r *UniverseRepository) ListSections(ctx context.Context, projectID string) ([]*secondary.UniverseSectionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, project_id, code, name, description, sort_order FROM universe_sections WHERE project_id = ? ORDER BY sort_order, code",
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer rows.Close()

	var sections []*secondary.UniverseSectionRecord
	for rows.Next() {
		var desc sql.NullString
		record := &secondary.UniverseSectionRecord{}
		if err := rows.Scan(&record.ID, &record.ProjectID, &record.Code, &record.Name, &desc, &record.Order); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		record.Description = desc.String
		sections = append(sections, record)
	}
	return sections, rows.Err()
}

// DeleteSection removes a section and its subsections.
func (r *UniverseRepository) DeleteSection(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM universe_sections WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete section: %w", err)
	}
	return checkAffected(result, "section", id)
}

// CreateSubsection persists a new subsection.
func (r *UniverseRepository) CreateSubsection(ctx context.Context, subsection *secondary.UniverseSubsectionRecord) error {
	return insertSequenced(ctx, r.db, &subsection.ID, subsectionSequence, func(ctx context.Context, e execer, id string) error {
		row := *subsection
		row.ID = id
		return insertUniverseSubsection(ctx, e, &row)
	})
}

// ListSubsections returns every subsection of a project.
func (r *UniverseRepository) ListSubsections(ctx context.Context, projectID string) ([]*secondary.UniverseSubsectionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT sub.id, sub.section_id, sub.code, sub.name, sub.description, sub.sort_order
		FROM universe_subsections sub
		JOIN universe_sections sec ON sec.id = sub.section_id
		WHERE sec.project_id = ?
		ORDER BY sec.sort_order, sub.sort_order, sub.code`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list subsections: %w", err)
	}
	defer rows.Close()

	var subsections []*secondary.UniverseSubsectionRecord
	for rows.Next() {
		var desc sql.NullString
		record := &secondary.UniverseSubsectionRecord{}
		if err := rows.Scan(&record.ID, &record.SectionID, &record.Code, &record.Name, &desc, &record.Order); err != nil {
			return nil, fmt.Errorf("failed to scan subsection: %w", err)
		}
		record.Description = desc.String
		subsections = append(subsections, record)
	}
	return subsections, rows.Err()
}

// DeleteSubsection removes a subsection.
func (r *UniverseRepository) DeleteSubsection(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM universe_subsections WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete subsection: %w", err)
	}
	return checkAffected(result, "subsection", id)
}

// GetNextProjectID returns the next available project ID.
func (r *UniverseRepository) GetNextProjectID(ctx context.Context) (string, error) {
	return projectSequence(ctx, r.db)
}

// GetNextSectionID returns the next available section ID.
func (r *UniverseRepository) GetNextSectionID(ctx context.Context) (string, error) {
	return sectionSequence(ctx, r.db)
}

// GetNextSubsectionID returns the next available subsection ID.
func (r *UniverseRepository) GetNextSubsectionID(ctx context.Context) (string, error) {
	return subsectionSequence(ctx, r.db)
}

var _ secondary.UniverseRepository = (*UniverseRepository)(nil)
