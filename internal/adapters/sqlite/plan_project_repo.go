package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/auditplus/internal/ports/secondary"
)

// PlanProjectRepository implements secondary.PlanProjectRepository with SQLite.
type PlanProjectRepository struct {
	db *sql.DB
}

// NewPlanProjectRepository creates a new SQLite plan-project repository.
func NewPlanProjectRepository(db *sql.DB) *PlanProjectRepository {
	return &PlanProjectRepository{db: db}
}

const planProjectColumns = `pp.id, pp.plan_id, pp.origin_project_id, pp.code, pp.name, pp.objective, pp.audit_type,
	pp.process, pp.status, pp.planned_start, pp.planned_end, pp.actual_start, pp.actual_end,
	pp.supervisor_id, pp.field_auditor_id, pp.created_at, pp.updated_at`

func scanPlanProject(scan func(dest ...any) error) (*secondary.PlanProjectRecord, error) {
	var (
		objective, auditType, process sql.NullString
		plannedStart, plannedEnd      sql.NullString
		actualStart, actualEnd        sql.NullString
		supervisorID, fieldAuditorID  sql.NullString
		createdAt, updatedAt          time.Time
	)
	record := &secondary.PlanProjectRecord{}
	if err := scan(&record.ID, &record.PlanID, &record.OriginProjectID, &record.Code, &record.Name,
		&objective, &auditType, &process, &record.Status, &plannedStart, &plannedEnd, &actualStart, &actualEnd,
		&supervisorID, &fieldAuditorID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	record.Objective = objective.String
	record.AuditType = auditType.String
	record.Process = process.String
	record.PlannedStart = plannedStart.String
	record.PlannedEnd = plannedEnd.String
	record.ActualStart = actualStart.String
	record.ActualEnd = actualEnd.String
	record.SupervisorID = supervisorID.String
	record.FieldAuditorID = fieldAuditorID.String
	record.CreatedAt = formatTime(createdAt)
	record.UpdatedAt = formatTime(updatedAt)
	return record, nil
}

// GetByID retrieves a plan-project by its ID.
func (r *PlanProjectRepository) GetByID(ctx context.Context, id string) (*secondary.PlanProjectRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+planProjectColumns+" FROM plan_projects pp WHERE pp.id = ?", id)
	record, err := scanPlanProject(row.Scan)
	if err == sql.ErrNoRows {
		return nil, notFound("plan-project", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan-project: %w", err)
	}
	return record, nil
}

// List retrieves plan-projects matching the given filters.
func (r *PlanProjectRepository) List(ctx context.Context, filters secondary.PlanProjectFilters) ([]*secondary.PlanProjectRecord, error) {
	query := "SELECT " + planProjectColumns + " FROM plan_projects pp WHERE 1=1"
	args := []any{}

	if filters.PlanID != "" {
		query += " AND pp.plan_id = ?"
		args = append(args, filters.PlanID)
	}
	if filters.Status != "" {
		query += " AND pp.status = ?"
		args = append(args, filters.Status)
	}
	if filters.SupervisorID != "" {
		query += " AND pp.supervisor_id = ?"
		args = append(args, filters.SupervisorID)
	}
	if filters.FieldAuditorID != "" {
		query += " AND pp.field_auditor_id = ?"
		args = append(args, filters.FieldAuditorID)
	}
	query += " ORDER BY pp.code"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan-projects: %w", err)
	}
	defer rows.Close()

	var projects []*secondary.PlanProjectRecord
	for rows.Next() {
		record, err := scanPlanProject(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan-project: %w", err)
		}
		projects = append(projects, record)
	}
	return projects, rows.Err()
}

// UpdateSchedule overwrites planned dates and assignees.
func (r *PlanProjectRepository) UpdateSchedule(ctx context.Context, id string, s secondary.ScheduleUpdate) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE plan_projects SET planned_start = ?, planned_end = ?, supervisor_id = ?, field_auditor_id = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		nullString(s.PlannedStart), nullString(s.PlannedEnd), nullString(s.SupervisorID), nullString(s.FieldAuditorID), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update plan-project schedule: %w", err)
	}
	return checkAffected(result, "plan-project", id)
}

// ApplyTransition stores a status change with its actual date effects.
func (r *PlanProjectRepository) ApplyTransition(ctx context.Context, id string, t secondary.StatusTransition) error {
	query := "UPDATE plan_projects SET status = ?, updated_at = CURRENT_TIMESTAMP"
	args := []any{t.Status}

	if t.ActualStart != "" {
		query += ", actual_start = ?"
		args = append(args, t.ActualStart)
	}
	if t.ClearActualEnd {
		query += ", actual_end = NULL"
	} else if t.ActualEnd != "" {
		query += ", actual_end = ?"
		args = append(args, t.ActualEnd)
	}

	query += " WHERE id = ?"
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update plan-project status: %w", err)
	}
	return checkAffected(result, "plan-project", id)
}

// ListSections returns the sections of a plan-project.
func (r *PlanProjectRepository) ListSections(ctx context.Context, planProjectID string) ([]*secondary.PlanSectionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, plan_project_id, origin_section_id, code, name, description, sort_order
		FROM plan_sections WHERE plan_project_id = ? ORDER BY sort_order, code`,
		planProjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan sections: %w", err)
	}
	defer rows.Close()

	var sections []*secondary.PlanSectionRecord
	for rows.Next() {
		var origin, desc sql.NullString
		record := &secondary.PlanSectionRecord{}
		if err := rows.Scan(&record.ID, &record.PlanProjectID, &origin, &record.Code, &record.Name, &desc, &record.Order); err != nil {
			return nil, fmt.Errorf("failed to scan plan section: %w", err)
		}
		record.OriginSectionID = origin.String
		record.Description = desc.String
		sections = append(sections, record)
	}
	return sections, rows.Err()
}

const planSubsectionSelect = `SELECT sub.id, sub.plan_section_id, sec.plan_project_id, sub.origin_subsection_id,
	sub.code, sub.name, sub.description, sub.sort_order
	FROM plan_subsections sub
	JOIN plan_sections sec ON sec.id = sub.plan_section_id`

func scanPlanSubsection(scan func(dest ...any) error) (*secondary.PlanSubsectionRecord, error) {
	var origin, desc sql.NullString
	record := &secondary.PlanSubsectionRecord{}
	if err := scan(&record.ID, &record.PlanSectionID, &record.PlanProjectID, &origin,
		&record.Code, &record.Name, &desc, &record.Order); err != nil {
		return nil, err
	}
	record.OriginSubsectionID = origin.String
	record.Description = desc.String
	return record, nil
}

// ListSubsections returns every subsection of a plan-project.
func (r *PlanProjectRepository) ListSubsections(ctx context.Context, planProjectID string) ([]*secondary.PlanSubsectionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		planSubsectionSelect+" WHERE sec.plan_project_id = ? ORDER BY sec.sort_order, sub.sort_order, sub.code",
		planProjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan subsections: %w", err)
	}
	defer rows.Close()

	var subsections []*secondary.PlanSubsectionRecord
	for rows.Next() {
		record, err := scanPlanSubsection(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan subsection: %w", err)
		}
		subsections = append(subsections, record)
	}
	return subsections, rows.Err()
}

// GetSubsection retrieves a plan subsection with its owning plan-project ID.
func (r *PlanProjectRepository) GetSubsection(ctx context.Context, id string) (*secondary.PlanSubsectionRecord, error) {
	record, err := scanPlanSubsection(r.db.QueryRowContext(ctx, planSubsectionSelect+" WHERE sub.id = ?", id).Scan)
	if err == sql.ErrNoRows {
		return nil, notFound("plan subsection", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan subsection: %w", err)
	}
	return record, nil
}

// LatestForOrigin returns the plan-project copied from a universe project in
// the most recent plan year, or nil if it was never planned.
func (r *PlanProjectRepository) LatestForOrigin(ctx context.Context, originProjectID string) (*secondary.PlanProjectRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+planProjectColumns+`
		FROM plan_projects pp
		JOIN plans p ON p.id = pp.plan_id
		WHERE pp.origin_project_id = ?
		ORDER BY p.year DESC, pp.id DESC
		LIMIT 1`,
		originProjectID,
	)
	record, err := scanPlanProject(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest plan-project: %w", err)
	}
	return record, nil
}

var _ secondary.PlanProjectRepository = (*PlanProjectRepository)(nil)
