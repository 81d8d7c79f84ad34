package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/auditplus/internal/ports/secondary"
)

// PlanRepository implements secondary.PlanRepository with SQLite.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new SQLite plan repository.
func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

const planSelect = `SELECT p.id, p.code, p.name, p.objective, p.year, p.status, p.created_by, p.created_at,
	(SELECT COUNT(*) FROM plan_projects pp WHERE pp.plan_id = p.id)
	FROM plans p`

func scanPlan(scan func(dest ...any) error) (*secondary.PlanRecord, error) {
	var (
		objective, createdBy sql.NullString
		createdAt            time.Time
	)
	record := &secondary.PlanRecord{}
	if err := scan(&record.ID, &record.Code, &record.Name, &objective, &record.Year, &record.Status,
		&createdBy, &createdAt, &record.ProjectCount); err != nil {
		return nil, err
	}
	record.Objective = objective.String
	record.CreatedBy = createdBy.String
	record.CreatedAt = formatTime(createdAt)
	return record, nil
}

var planSequence = tableSequence("plans", "PLAN-")

// Create persists a new plan.
func (r *PlanRepository) Create(ctx context.Context, plan *secondary.PlanRecord) error {
	status := plan.Status
	if status == "" {
		status = "Activo"
	}
	err := insertSequenced(ctx, r.db, &plan.ID, planSequence, func(ctx context.Context, e execer, id string) error {
		_, err := e.ExecContext(ctx,
			"INSERT INTO plans (id, code, name, objective, year, status, created_by) VALUES (?, ?, ?, ?, ?, ?, ?)",
			id, plan.Code, plan.Name, nullString(plan.Objective), plan.Year, status, nullString(plan.CreatedBy),
		)
		return err
	})
	if err != nil {
		return wrapWriteErr("create plan", "plan code "+plan.Code, err)
	}
	return nil
}

// GetByID retrieves a plan by its ID.
func (r *PlanRepository) GetByID(ctx context.Context, id string) (*secondary.PlanRecord, error) {
	record, err := scanPlan(r.db.QueryRowContext(ctx, planSelect+" WHERE p.id = ?", id).Scan)
	if err == sql.ErrNoRows {
		return nil, notFound("plan", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return record, nil
}

// List retrieves plans matching the given filters.
func (r *PlanRepository) List(ctx context.Context, filters secondary.PlanFilters) ([]*secondary.PlanRecord, error) {
	query := planSelect + " WHERE 1=1"
	args := []any{}

	if filters.Year != 0 {
		query += " AND p.year = ?"
		args = append(args, filters.Year)
	}
	if filters.Status != "" {
		query += " AND p.status = ?"
		args = append(args, filters.Status)
	}
	query += " ORDER BY p.year DESC, p.code"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []*secondary.PlanRecord
	for rows.Next() {
		record, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, record)
	}
	return plans, rows.Err()
}

// UpdateStatus changes a plan's status.
func (r *PlanRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx, "UPDATE plans SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("failed to update plan status: %w", err)
	}
	return checkAffected(result, "plan", id)
}

// Delete removes a plan; plan-projects and their trees cascade.
func (r *PlanRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM plans WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	return checkAffected(result, "plan", id)
}

// CodeExists reports whether a plan code is taken.
func (r *PlanRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM plans WHERE code = ?", code).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check plan code: %w", err)
	}
	return count > 0, nil
}

// GetNextID returns the next available plan ID.
func (r *PlanRepository) GetNextID(ctx context.Context) (string, error) {
	return planSequence(ctx, r.db)
}

// ListOriginIDs returns the universe project IDs already copied into a plan.
func (r *PlanRepository) ListOriginIDs(ctx context.Context, planID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT origin_project_id FROM plan_projects WHERE plan_id = ? ORDER BY origin_project_id", planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan origins: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan plan origin: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// InsertProjectTrees inserts every plan-project tree in one transaction.
// Nothing is written unless every row of every tree is written.
func (r *PlanRepository) InsertProjectTrees(ctx context.Context, trees []secondary.PlanProjectTree) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	projectSeq, err := maxSequence(ctx, tx, "plan_projects", "PPRJ-")
	if err != nil {
		return nil, fmt.Errorf("failed to allocate plan-project ID: %w", err)
	}
	sectionSeq, err := maxSequence(ctx, tx, "plan_sections", "PSEC-")
	if err != nil {
		return nil, fmt.Errorf("failed to allocate plan section ID: %w", err)
	}
	subSeq, err := maxSequence(ctx, tx, "plan_subsections", "PSUB-")
	if err != nil {
		return nil, fmt.Errorf("failed to allocate plan subsection ID: %w", err)
	}

	ids := make([]string, 0, len(trees))
	for _, tree := range trees {
		p := tree.Project
		projectSeq++
		p.ID = formatID("PPRJ-", projectSeq)
		status := p.Status
		if status == "" {
			status = "Sin Iniciar"
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO plan_projects (id, plan_id, origin_project_id, code, name, objective, audit_type, process,
				status, planned_start, planned_end)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.PlanID, p.OriginProjectID, p.Code, p.Name, nullString(p.Objective), nullString(p.AuditType),
			nullString(p.Process), status, nullString(p.PlannedStart), nullString(p.PlannedEnd),
		); err != nil {
			return nil, wrapWriteErr("copy project "+p.OriginProjectID, "project "+p.OriginProjectID+" in plan "+p.PlanID, err)
		}

		for _, sec := range tree.Sections {
			s := sec.Section
			sectionSeq++
			s.ID = formatID("PSEC-", sectionSeq)
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO plan_sections (id, plan_project_id, origin_section_id, code, name, description, sort_order)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				s.ID, p.ID, nullString(s.OriginSectionID), s.Code, s.Name, nullString(s.Description), s.Order,
			); err != nil {
				return nil, fmt.Errorf("failed to copy section %s: %w", s.OriginSectionID, err)
			}

			for _, sub := range sec.Subsections {
				subSeq++
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO plan_subsections (id, plan_section_id, origin_subsection_id, code, name, description, sort_order)
					VALUES (?, ?, ?, ?, ?, ?, ?)`,
					formatID("PSUB-", subSeq), s.ID, nullString(sub.OriginSubsectionID), sub.Code, sub.Name,
					nullString(sub.Description), sub.Order,
				); err != nil {
					return nil, fmt.Errorf("failed to copy subsection %s: %w", sub.OriginSubsectionID, err)
				}
			}
		}
		ids = append(ids, p.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit plan copy: %w", err)
	}
	return ids, nil
}

var _ secondary.PlanRepository = (*PlanRepository)(nil)
