package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/auditplus/internal/ports/secondary"
)

// AttachmentRepository implements secondary.AttachmentRepository with SQLite.
// Project attachments live in project_attachments; finding and response
// evidence live in finding_attachments. IDs share one ATT- sequence.
type AttachmentRepository struct {
	db *sql.DB
}

// NewAttachmentRepository creates a new SQLite attachment repository.
func NewAttachmentRepository(db *sql.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create persists a new attachment.
func (r *AttachmentRepository) Create(ctx context.Context, a *secondary.AttachmentRecord) error {
	var insert string
	var args []any
	switch a.Kind {
	case secondary.AttachmentKindProject:
		insert = `INSERT INTO project_attachments (id, project_id, filename, content_type, size, data, uploaded_by)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
		args = []any{a.ParentID, a.Filename, nullString(a.ContentType), len(a.Data), a.Data, nullString(a.UploadedBy)}
	case secondary.AttachmentKindFinding, secondary.AttachmentKindResponse:
		insert = `INSERT INTO finding_attachments (id, finding_id, kind, filename, content_type, size, data, uploaded_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		args = []any{a.ParentID, a.Kind, a.Filename, nullString(a.ContentType), len(a.Data), a.Data, nullString(a.UploadedBy)}
	default:
		return fmt.Errorf("unknown attachment kind %q", a.Kind)
	}

	// Both tables share one sequence, so a primary key collision cannot
	// detect a clash; the id is always allocated inside the insert transaction.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := nextAttachmentID(ctx, tx)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, insert, append([]any{id}, args...)...); err != nil {
		return fmt.Errorf("failed to create attachment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit attachment: %w", err)
	}
	a.ID = id
	a.Size = int64(len(a.Data))
	return nil
}

const attachmentUnion = `
	SELECT id, 'project' AS kind, project_id AS parent_id, filename, content_type, size, data, uploaded_by, uploaded_at
	FROM project_attachments
	UNION ALL
	SELECT id, kind, finding_id AS parent_id, filename, content_type, size, data, uploaded_by, uploaded_at
	FROM finding_attachments`

// Get retrieves an attachment including its data.
func (r *AttachmentRepository) Get(ctx context.Context, id string) (*secondary.AttachmentRecord, error) {
	// Column types are lost through UNION, so the timestamp is read as text.
	var contentType, uploadedBy, uploadedAt sql.NullString
	record := &secondary.AttachmentRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, kind, parent_id, filename, content_type, size, data, uploaded_by, uploaded_at FROM ("+attachmentUnion+") WHERE id = ?",
		id,
	).Scan(&record.ID, &record.Kind, &record.ParentID, &record.Filename, &contentType, &record.Size, &record.Data, &uploadedBy, &uploadedAt)
	if err == sql.ErrNoRows {
		return nil, notFound("attachment", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}
	record.ContentType = contentType.String
	record.UploadedBy = uploadedBy.String
	record.UploadedAt = uploadedAt.String
	return record, nil
}

// List returns attachment metadata for a parent. For findings, an empty kind
// lists both finding and response evidence.
func (r *AttachmentRepository) List(ctx context.Context, kind, parentID string) ([]*secondary.AttachmentRecord, error) {
	var (
		query string
		args  []any
	)
	switch kind {
	case secondary.AttachmentKindProject:
		query = `SELECT id, 'project', project_id, filename, content_type, size, uploaded_by, uploaded_at
			FROM project_attachments WHERE project_id = ? ORDER BY uploaded_at, id`
		args = []any{parentID}
	case secondary.AttachmentKindFinding, secondary.AttachmentKindResponse:
		query = `SELECT id, kind, finding_id, filename, content_type, size, uploaded_by, uploaded_at
			FROM finding_attachments WHERE finding_id = ? AND kind = ? ORDER BY uploaded_at, id`
		args = []any{parentID, kind}
	case "":
		query = `SELECT id, kind, finding_id, filename, content_type, size, uploaded_by, uploaded_at
			FROM finding_attachments WHERE finding_id = ? ORDER BY uploaded_at, id`
		args = []any{parentID}
	default:
		return nil, fmt.Errorf("unknown attachment kind %q", kind)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []*secondary.AttachmentRecord
	for rows.Next() {
		var (
			contentType, uploadedBy sql.NullString
			uploadedAt              time.Time
		)
		record := &secondary.AttachmentRecord{}
		if err := rows.Scan(&record.ID, &record.Kind, &record.ParentID, &record.Filename, &contentType,
			&record.Size, &uploadedBy, &uploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		record.ContentType = contentType.String
		record.UploadedBy = uploadedBy.String
		record.UploadedAt = formatTime(uploadedAt)
		attachments = append(attachments, record)
	}
	return attachments, rows.Err()
}

// Delete removes an attachment from whichever table holds it.
func (r *AttachmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM project_attachments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		return nil
	}
	result, err = r.db.ExecContext(ctx, "DELETE FROM finding_attachments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return checkAffected(result, "attachment", id)
}

// GetNextID returns the next available attachment ID across both tables.
func (r *AttachmentRepository) GetNextID(ctx context.Context) (string, error) {
	return nextAttachmentID(ctx, r.db)
}

func nextAttachmentID(ctx context.Context, q rowQuerier) (string, error) {
	var maxID int
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(n), 0) FROM (
			SELECT CAST(SUBSTR(id, 5) AS INTEGER) AS n FROM project_attachments
			UNION ALL
			SELECT CAST(SUBSTR(id, 5) AS INTEGER) AS n FROM finding_attachments
		)`,
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next attachment ID: %w", err)
	}
	return formatID("ATT-", maxID+1), nil
}

var _ secondary.AttachmentRepository = (*AttachmentRepository)(nil)
