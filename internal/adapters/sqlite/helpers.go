// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/example/auditplus/internal/ports/secondary"
)

// rowQuerier is satisfied by both *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// sequence allocates the next id of a table from inside a query scope.
type sequence func(ctx context.Context, q rowQuerier) (string, error)

func tableSequence(table, prefix string) sequence {
	return func(ctx context.Context, q rowQuerier) (string, error) {
		return nextID(ctx, q, table, prefix)
	}
}

// insertSequenced inserts a row under *id. Ids come from GetNextID ahead of
// the insert, so a concurrent writer may have taken the same one. On a primary
// key collision the id is reallocated and the insert retried inside a single
// transaction, and *id is updated to the id actually stored.
func insertSequenced(ctx context.Context, db *sql.DB, id *string, next sequence, insert func(ctx context.Context, e execer, id string) error) error {
	err := insert(ctx, db, *id)
	if !isPrimaryKeyViolation(err) {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	fresh, err := next(ctx, tx)
	if err != nil {
		return err
	}
	if err := insert(ctx, tx, fresh); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	*id = fresh
	return nil
}

// maxSequence returns the highest numeric suffix of ids in table that start with prefix.
func maxSequence(ctx context.Context, q rowQuerier, table, prefix string) (int, error) {
	var maxID int
	err := q.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM %s WHERE id LIKE ?", len(prefix)+1, table),
		prefix+"%",
	).Scan(&maxID)
	return maxID, err
}

// nextID formats the next sequential id for table.
func nextID(ctx context.Context, q rowQuerier, table, prefix string) (string, error) {
	maxID, err := maxSequence(ctx, q, table, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to get next %s ID: %w", table, err)
	}
	return formatID(prefix, maxID+1), nil
}

func formatID(prefix string, n int) string {
	return fmt.Sprintf("%s%03d", prefix, n)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation reports whether err is a SQLite UNIQUE failure on a business key.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// isPrimaryKeyViolation reports whether err is a SQLite PRIMARY KEY failure.
func isPrimaryKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// wrapWriteErr turns unique violations into secondary.ErrDuplicate.
func wrapWriteErr(op, what string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s %w", what, secondary.ErrDuplicate)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func notFound(entity, id string) error {
	return fmt.Errorf("%s %s %w", entity, id, secondary.ErrNotFound)
}

// checkAffected returns a not-found error when a write touched no rows.
func checkAffected(result sql.Result, entity, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound(entity, id)
	}
	return nil
}
