package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/auditplus/internal/ports/secondary"
)

// EvaluationRepository implements secondary.EvaluationRepository with SQLite.
type EvaluationRepository struct {
	db *sql.DB
}

// NewEvaluationRepository creates a new SQLite evaluation repository.
func NewEvaluationRepository(db *sql.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

const evaluationColumns = `project_id, risk_level, months_since_audit, findings_last_audit, findings_resolved,
	last_audit_status, last_audit_date, rotation_cycle, criticality, evaluated_at`

func scanEvaluation(scan func(dest ...any) error) (*secondary.EvaluationRecord, error) {
	var (
		status, date sql.NullString
		evaluatedAt  time.Time
	)
	record := &secondary.EvaluationRecord{}
	if err := scan(&record.ProjectID, &record.RiskLevel, &record.MonthsSinceAudit, &record.FindingsLastAudit,
		&record.FindingsResolved, &status, &date, &record.RotationCycle, &record.Criticality, &evaluatedAt); err != nil {
		return nil, err
	}
	record.LastAuditStatus = status.String
	record.LastAuditDate = date.String
	record.EvaluatedAt = formatTime(evaluatedAt)
	return record, nil
}

// Get retrieves the evaluation of a universe project, or nil if none is stored.
func (r *EvaluationRepository) Get(ctx context.Context, projectID string) (*secondary.EvaluationRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+evaluationColumns+" FROM universe_evaluations WHERE project_id = ?", projectID)
	record, err := scanEvaluation(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	return record, nil
}

// List returns every stored evaluation.
func (r *EvaluationRepository) List(ctx context.Context) ([]*secondary.EvaluationRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+evaluationColumns+" FROM universe_evaluations ORDER BY criticality DESC, project_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	var evaluations []*secondary.EvaluationRecord
	for rows.Next() {
		record, err := scanEvaluation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		evaluations = append(evaluations, record)
	}
	return evaluations, rows.Err()
}

// Upsert inserts or replaces the evaluation of a project.
func (r *EvaluationRepository) Upsert(ctx context.Context, e *secondary.EvaluationRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO universe_evaluations (project_id, risk_level, months_since_audit, findings_last_audit,
			findings_resolved, last_audit_status, last_audit_date, rotation_cycle, criticality, evaluated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(project_id) DO UPDATE SET
			risk_level = excluded.risk_level,
			months_since_audit = excluded.months_since_audit,
			findings_last_audit = excluded.findings_last_audit,
			findings_resolved = excluded.findings_resolved,
			last_audit_status = excluded.last_audit_status,
			last_audit_date = excluded.last_audit_date,
			rotation_cycle = excluded.rotation_cycle,
			criticality = excluded.criticality,
			evaluated_at = CURRENT_TIMESTAMP`,
		e.ProjectID, e.RiskLevel, e.MonthsSinceAudit, e.FindingsLastAudit, e.FindingsResolved,
		nullString(e.LastAuditStatus), nullString(e.LastAuditDate), e.RotationCycle, e.Criticality,
	)
	if err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}
	return nil
}

// UpdateCriticality stores a recomputed criticality score.
func (r *EvaluationRepository) UpdateCriticality(ctx context.Context, projectID string, criticality float64) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE universe_evaluations SET criticality = ? WHERE project_id = ?", criticality, projectID)
	if err != nil {
		return fmt.Errorf("failed to update criticality: %w", err)
	}
	return checkAffected(result, "evaluation", projectID)
}

var _ secondary.EvaluationRepository = (*EvaluationRepository)(nil)
