package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/auditplus/internal/ports/secondary"
)

// AuditLogRepository implements secondary.AuditLogRepository with SQLite.
// Entries are append-only: there is no update or delete.
type AuditLogRepository struct {
	db *sql.DB
}

// NewAuditLogRepository creates a new SQLite audit log repository.
func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

var auditLogSequence = tableSequence("audit_log", "LOG-")

// Create appends an entry.
func (r *AuditLogRepository) Create(ctx context.Context, e *secondary.AuditLogRecord) error {
	err := insertSequenced(ctx, r.db, &e.ID, auditLogSequence, func(ctx context.Context, x execer, id string) error {
		_, err := x.ExecContext(ctx,
			"INSERT INTO audit_log (id, user_id, username, action, module, detail) VALUES (?, ?, ?, ?, ?, ?)",
			id, nullString(e.UserID), nullString(e.Username), e.Action, e.Module, nullString(e.Detail),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create audit log entry: %w", err)
	}
	return nil
}

// List retrieves entries matching the given filters, newest first.
func (r *AuditLogRepository) List(ctx context.Context, filters secondary.AuditLogFilters) ([]*secondary.AuditLogRecord, error) {
	query := "SELECT id, user_id, username, action, module, detail, created_at FROM audit_log WHERE 1=1"
	args := []any{}

	if filters.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filters.UserID)
	}
	if filters.Module != "" {
		query += " AND module = ?"
		args = append(args, filters.Module)
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.AuditLogRecord
	for rows.Next() {
		var (
			userID, username, detail sql.NullString
			createdAt                time.Time
		)
		record := &secondary.AuditLogRecord{}
		if err := rows.Scan(&record.ID, &userID, &username, &record.Action, &record.Module, &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log entry: %w", err)
		}
		record.UserID = userID.String
		record.Username = username.String
		record.Detail = detail.String
		record.CreatedAt = formatTime(createdAt)
		entries = append(entries, record)
	}
	return entries, rows.Err()
}

// GetNextID returns the next available entry ID.
func (r *AuditLogRepository) GetNextID(ctx context.Context) (string, error) {
	return auditLogSequence(ctx, r.db)
}

var _ secondary.AuditLogRepository = (*AuditLogRepository)(nil)
