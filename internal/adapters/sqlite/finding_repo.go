package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/auditplus/internal/ports/secondary"
)

// FindingRepository implements secondary.FindingRepository with SQLite.
type FindingRepository struct {
	db *sql.DB
}

// NewFindingRepository creates a new SQLite finding repository.
func NewFindingRepository(db *sql.DB) *FindingRepository {
	return &FindingRepository{db: db}
}

const findingColumns = `id, code, plan_id, plan_project_id, plan_subsection_id, condition, criterion, cause, effect,
	recommendation, probability, impact, risk_level, area, responsible_id, status, assignment_date,
	commitment_date, response_date, response, created_by, created_at, updated_at`

func scanFinding(scan func(dest ...any) error) (*secondary.FindingRecord, error) {
	var (
		condition, criterion, cause, effect, recommendation sql.NullString
		area, responsibleID                                 sql.NullString
		assignmentDate, commitmentDate, responseDate        sql.NullString
		response, createdBy                                 sql.NullString
		createdAt, updatedAt                                time.Time
	)
	record := &secondary.FindingRecord{}
	if err := scan(&record.ID, &record.Code, &record.PlanID, &record.PlanProjectID, &record.PlanSubsectionID,
		&condition, &criterion, &cause, &effect, &recommendation, &record.Probability, &record.Impact,
		&record.RiskLevel, &area, &responsibleID, &record.Status, &assignmentDate, &commitmentDate,
		&responseDate, &response, &createdBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	record.Condition = condition.String
	record.Criterion = criterion.String
	record.Cause = cause.String
	record.Effect = effect.String
	record.Recommendation = recommendation.String
	record.Area = area.String
	record.ResponsibleID = responsibleID.String
	record.AssignmentDate = assignmentDate.String
	record.CommitmentDate = commitmentDate.String
	record.ResponseDate = responseDate.String
	record.Response = response.String
	record.CreatedBy = createdBy.String
	record.CreatedAt = formatTime(createdAt)
	record.UpdatedAt = formatTime(updatedAt)
	return record, nil
}

var findingSequence = tableSequence("findings", "FIND-")

// Create persists a new finding.
func (r *FindingRepository) Create(ctx context.Context, f *secondary.FindingRecord) error {
	err := insertSequenced(ctx, r.db, &f.ID, findingSequence, func(ctx context.Context, e execer, id string) error {
		_, err := e.ExecContext(ctx,
			`INSERT INTO findings (id, code, plan_id, plan_project_id, plan_subsection_id, condition, criterion, cause,
				effect, recommendation, probability, impact, risk_level, area, responsible_id, status,
				assignment_date, commitment_date, created_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, f.Code, f.PlanID, f.PlanProjectID, f.PlanSubsectionID, nullString(f.Condition), nullString(f.Criterion),
		nullString(f.Cause), nullString(f.Effect), nullString(f.Recommendation), f.Probability, f.Impact, f.RiskLevel,
		nullString(f.Area), nullString(f.ResponsibleID), f.Status, nullString(f.AssignmentDate),
			nullString(f.CommitmentDate), nullString(f.CreatedBy),
		)
		return err
	})
	if err != nil {
		return wrapWriteErr("create finding", "finding code "+f.Code, err)
	}
	return nil
}

// GetByID retrieves a finding by its ID.
func (r *FindingRepository) GetByID(ctx context.Context, id string) (*secondary.FindingRecord, error) {
	record, err := scanFinding(r.db.QueryRowContext(ctx, "SELECT "+findingColumns+" FROM findings WHERE id = ?", id).Scan)
	if err == sql.ErrNoRows {
		return nil, notFound("finding", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get finding: %w", err)
	}
	return record, nil
}

// findingWhere builds the WHERE clause shared by List and CountBy.
func findingWhere(filters secondary.FindingFilters) (string, []any) {
	where := " WHERE 1=1"
	args := []any{}

	if filters.PlanID != "" {
		where += " AND plan_id = ?"
		args = append(args, filters.PlanID)
	}
	if filters.PlanProjectID != "" {
		where += " AND plan_project_id = ?"
		args = append(args, filters.PlanProjectID)
	}
	if filters.Status != "" {
		where += " AND status = ?"
		args = append(args, filters.Status)
	}
	if len(filters.Statuses) > 0 {
		where += " AND status IN (?" + strings.Repeat(", ?", len(filters.Statuses)-1) + ")"
		for _, s := range filters.Statuses {
			args = append(args, s)
		}
	}
	if filters.RiskLevel != "" {
		where += " AND risk_level = ?"
		args = append(args, filters.RiskLevel)
	}
	if filters.ResponsibleID != "" {
		where += " AND responsible_id = ?"
		args = append(args, filters.ResponsibleID)
	}
	if filters.Search != "" {
		where += " AND (code LIKE ? OR condition LIKE ?)"
		like := "%" + filters.Search + "%"
		args = append(args, like, like)
	}
	return where, args
}

// List retrieves findings matching the given filters.
func (r *FindingRepository) List(ctx context.Context, filters secondary.FindingFilters) ([]*secondary.FindingRecord, error) {
	where, args := findingWhere(filters)
	rows, err := r.db.QueryContext(ctx, "SELECT "+findingColumns+" FROM findings"+where+" ORDER BY code", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}
	defer rows.Close()

	var findings []*secondary.FindingRecord
	for rows.Next() {
		record, err := scanFinding(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		findings = append(findings, record)
	}
	return findings, rows.Err()
}

// UpdateContent overwrites the descriptive and scoring fields of a finding.
func (r *FindingRepository) UpdateContent(ctx context.Context, f *secondary.FindingRecord) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE findings SET condition = ?, criterion = ?, cause = ?, effect = ?, recommendation = ?,
			probability = ?, impact = ?, risk_level = ?, area = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		nullString(f.Condition), nullString(f.Criterion), nullString(f.Cause), nullString(f.Effect),
		nullString(f.Recommendation), f.Probability, f.Impact, f.RiskLevel, nullString(f.Area), f.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update finding: %w", err)
	}
	return checkAffected(result, "finding", f.ID)
}

// UpdateAssignment stores responsible user, dates and status.
func (r *FindingRepository) UpdateAssignment(ctx context.Context, id string, u secondary.AssignmentUpdate) error {
	query := "UPDATE findings SET responsible_id = ?, commitment_date = ?, status = ?, updated_at = CURRENT_TIMESTAMP"
	args := []any{u.ResponsibleID, u.CommitmentDate, u.Status}
	if u.AssignmentDate != "" {
		query += ", assignment_date = ?"
		args = append(args, u.AssignmentDate)
	}
	query += " WHERE id = ?"
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update finding assignment: %w", err)
	}
	return checkAffected(result, "finding", id)
}

// UpdateResponse stores the auditee response and its date with the new status.
func (r *FindingRepository) UpdateResponse(ctx context.Context, id, response, responseDate, status string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE findings SET response = ?, response_date = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		response, responseDate, status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to store finding response: %w", err)
	}
	return checkAffected(result, "finding", id)
}

// UpdateStatus changes only the status of a finding.
func (r *FindingRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE findings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("failed to update finding status: %w", err)
	}
	return checkAffected(result, "finding", id)
}

// Delete removes a finding; its attachments cascade.
func (r *FindingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM findings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete finding: %w", err)
	}
	return checkAffected(result, "finding", id)
}

// CodeExists reports whether a finding code is taken.
func (r *FindingRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM findings WHERE code = ?", code).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check finding code: %w", err)
	}
	return count > 0, nil
}

// GetNextID returns the next available finding ID.
func (r *FindingRepository) GetNextID(ctx context.Context) (string, error) {
	return findingSequence(ctx, r.db)
}

// MarkOverdue moves stale Assigned and Unassigned findings to Overdue.
// Dates are ISO strings, so lexical comparison is calendar comparison.
func (r *FindingRepository) MarkOverdue(ctx context.Context, today string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE findings SET status = 'Vencida', updated_at = CURRENT_TIMESTAMP
		WHERE status IN ('Asignado', 'Sin Asignar')
			AND commitment_date IS NOT NULL AND commitment_date != ''
			AND commitment_date < ?`,
		today,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue findings: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n, nil
}

// CountForPlanProject returns total and accepted finding counts.
func (r *FindingRepository) CountForPlanProject(ctx context.Context, planProjectID string) (int, int, error) {
	var total, accepted int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = 'Aceptada' THEN 1 ELSE 0 END), 0)
		FROM findings WHERE plan_project_id = ?`,
		planProjectID,
	).Scan(&total, &accepted)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count findings: %w", err)
	}
	return total, accepted, nil
}

// CountForPlan returns the number of findings in a plan.
func (r *FindingRepository) CountForPlan(ctx context.Context, planID string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM findings WHERE plan_id = ?", planID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count findings: %w", err)
	}
	return count, nil
}

var countableFindingColumns = map[string]bool{"status": true, "risk_level": true, "area": true}

// CountBy groups finding counts by status, risk_level or area.
// Findings with no value for the column are counted under "".
func (r *FindingRepository) CountBy(ctx context.Context, column string, filters secondary.FindingFilters) (map[string]int, error) {
	if !countableFindingColumns[column] {
		return nil, fmt.Errorf("cannot group findings by %q", column)
	}
	where, args := findingWhere(filters)
	rows, err := r.db.QueryContext(ctx,
		"SELECT COALESCE("+column+", ''), COUNT(*) FROM findings"+where+" GROUP BY 1", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count findings by %s: %w", column, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan finding count: %w", err)
		}
		counts[key] = count
	}
	return counts, rows.Err()
}

var _ secondary.FindingRepository = (*FindingRepository)(nil)
