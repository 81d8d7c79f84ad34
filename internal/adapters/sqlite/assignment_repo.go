package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/auditplus/internal/ports/secondary"
)

// AssignmentRepository implements secondary.AssignmentRepository with SQLite.
type AssignmentRepository struct {
	db *sql.DB
}

// NewAssignmentRepository creates a new SQLite assignment repository.
func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

var assignmentSequence = tableSequence("project_assignments", "ASGN-")

// Create persists a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, a *secondary.AssignmentRecord) error {
	err := insertSequenced(ctx, r.db, &a.ID, assignmentSequence, func(ctx context.Context, e execer, id string) error {
		_, err := e.ExecContext(ctx,
			"INSERT INTO project_assignments (id, plan_project_id, user_id, role) VALUES (?, ?, ?, ?)",
			id, a.PlanProjectID, a.UserID, a.Role,
		)
		return err
	})
	if err != nil {
		return wrapWriteErr("create assignment", "assignment of "+a.UserID+" as "+a.Role, err)
	}
	return nil
}

// List returns the assignments of a plan-project.
func (r *AssignmentRepository) List(ctx context.Context, planProjectID string) ([]*secondary.AssignmentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, plan_project_id, user_id, role, created_at FROM project_assignments WHERE plan_project_id = ? ORDER BY id",
		planProjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*secondary.AssignmentRecord
	for rows.Next() {
		var createdAt time.Time
		record := &secondary.AssignmentRecord{}
		if err := rows.Scan(&record.ID, &record.PlanProjectID, &record.UserID, &record.Role, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		record.CreatedAt = formatTime(createdAt)
		assignments = append(assignments, record)
	}
	return assignments, rows.Err()
}

// Exists reports whether the user already holds the role on the plan-project.
func (r *AssignmentRepository) Exists(ctx context.Context, planProjectID, userID, role string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM project_assignments WHERE plan_project_id = ? AND user_id = ? AND role = ?",
		planProjectID, userID, role,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return count > 0, nil
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM project_assignments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	return checkAffected(result, "assignment", id)
}

// GetNextID returns the next available assignment ID.
func (r *AssignmentRepository) GetNextID(ctx context.Context) (string, error) {
	return assignmentSequence(ctx, r.db)
}

var _ secondary.AssignmentRepository = (*AssignmentRepository)(nil)
