package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/auditplus/internal/ports/secondary"
)

// UserRepository implements secondary.UserRepository with SQLite.
// There is deliberately no Delete: users are only deactivated.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, username, password_hash, full_name, email, role, is_active, created_at"

func scanUser(scan func(dest ...any) error) (*secondary.UserRecord, error) {
	var (
		email     sql.NullString
		createdAt time.Time
	)
	record := &secondary.UserRecord{}
	if err := scan(&record.ID, &record.Username, &record.PasswordHash, &record.FullName, &email,
		&record.Role, &record.IsActive, &createdAt); err != nil {
		return nil, err
	}
	record.Email = email.String
	record.CreatedAt = formatTime(createdAt)
	return record, nil
}

var userSequence = tableSequence("users", "USER-")

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, user *secondary.UserRecord) error {
	err := insertSequenced(ctx, r.db, &user.ID, userSequence, func(ctx context.Context, e execer, id string) error {
		_, err := e.ExecContext(ctx,
			"INSERT INTO users (id, username, password_hash, full_name, email, role, is_active) VALUES (?, ?, ?, ?, ?, ?, ?)",
			id, user.Username, user.PasswordHash, user.FullName, nullString(user.Email), user.Role, boolToInt(user.IsActive),
		)
		return err
	})
	if err != nil {
		return wrapWriteErr("create user", "username "+user.Username, err)
	}
	return nil
}

// GetByID retrieves a user by its ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*secondary.UserRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	record, err := scanUser(row.Scan)
	if err == sql.ErrNoRows {
		return nil, notFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return record, nil
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*secondary.UserRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
	record, err := scanUser(row.Scan)
	if err == sql.ErrNoRows {
		return nil, notFound("user", username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return record, nil
}

// List retrieves users matching the given filters.
func (r *UserRepository) List(ctx context.Context, filters secondary.UserFilters) ([]*secondary.UserRecord, error) {
	query := "SELECT " + userColumns + " FROM users WHERE 1=1"
	args := []any{}

	if filters.Role != "" {
		query += " AND role = ?"
		args = append(args, filters.Role)
	}
	if !filters.IncludeInactive {
		query += " AND is_active = 1"
	}
	query += " ORDER BY full_name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*secondary.UserRecord
	for rows.Next() {
		record, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, record)
	}
	return users, rows.Err()
}

// UpdateRole changes a user's global role.
func (r *UserRepository) UpdateRole(ctx context.Context, id, role string) error {
	result, err := r.db.ExecContext(ctx, "UPDATE users SET role = ? WHERE id = ?", role, id)
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	return checkAffected(result, "user", id)
}

// UpdateProfile changes a user's full name and email.
func (r *UserRepository) UpdateProfile(ctx context.Context, id, fullName, email string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE users SET full_name = ?, email = ? WHERE id = ?", fullName, nullString(email), id)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return checkAffected(result, "user", id)
}

// UpdatePassword stores a new password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result, err := r.db.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return checkAffected(result, "user", id)
}

// SetActive activates or deactivates a user.
func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.db.ExecContext(ctx, "UPDATE users SET is_active = ? WHERE id = ?", boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return checkAffected(result, "user", id)
}

// UsernameExists reports whether a username is taken.
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE username = ?", username).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

// GetNextID returns the next available user ID.
func (r *UserRepository) GetNextID(ctx context.Context) (string, error) {
	return userSequence(ctx, r.db)
}

var _ secondary.UserRepository = (*UserRepository)(nil)
