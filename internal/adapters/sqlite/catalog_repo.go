package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/auditplus/internal/ports/secondary"
)

// CatalogRepository implements secondary.CatalogRepository with SQLite.
// Entries are deactivated, never deleted.
type CatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new SQLite catalog repository.
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const catalogColumns = "id, type, value, description, is_active, display_order"

func scanCatalog(scan func(dest ...any) error) (*secondary.CatalogRecord, error) {
	var desc sql.NullString
	record := &secondary.CatalogRecord{}
	if err := scan(&record.ID, &record.Type, &record.Value, &desc, &record.IsActive, &record.DisplayOrder); err != nil {
		return nil, err
	}
	record.Description = desc.String
	return record, nil
}

var catalogSequence = tableSequence("catalog_entries", "CAT-")

// Create persists a new catalog entry.
func (r *CatalogRepository) Create(ctx context.Context, entry *secondary.CatalogRecord) error {
	err := insertSequenced(ctx, r.db, &entry.ID, catalogSequence, func(ctx context.Context, e execer, id string) error {
		_, err := e.ExecContext(ctx,
			"INSERT INTO catalog_entries (id, type, value, description, is_active, display_order) VALUES (?, ?, ?, ?, ?, ?)",
			id, entry.Type, entry.Value, nullString(entry.Description), boolToInt(entry.IsActive), entry.DisplayOrder,
		)
		return err
	})
	if err != nil {
		return wrapWriteErr("create catalog entry", fmt.Sprintf("%s %q", entry.Type, entry.Value), err)
	}
	return nil
}

// GetByID retrieves a catalog entry by its ID.
func (r *CatalogRepository) GetByID(ctx context.Context, id string) (*secondary.CatalogRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+catalogColumns+" FROM catalog_entries WHERE id = ?", id)
	record, err := scanCatalog(row.Scan)
	if err == sql.ErrNoRows {
		return nil, notFound("catalog entry", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog entry: %w", err)
	}
	return record, nil
}

// List retrieves entries matching the given filters.
func (r *CatalogRepository) List(ctx context.Context, filters secondary.CatalogFilters) ([]*secondary.CatalogRecord, error) {
	query := "SELECT " + catalogColumns + " FROM catalog_entries WHERE 1=1"
	args := []any{}

	if filters.Type != "" {
		query += " AND type = ?"
		args = append(args, filters.Type)
	}
	if !filters.IncludeInactive {
		query += " AND is_active = 1"
	}
	query += " ORDER BY type, display_order, value"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog entries: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.CatalogRecord
	for rows.Next() {
		record, err := scanCatalog(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		entries = append(entries, record)
	}
	return entries, rows.Err()
}

// SetActive activates or deactivates an entry.
func (r *CatalogRepository) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.db.ExecContext(ctx, "UPDATE catalog_entries SET is_active = ? WHERE id = ?", boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("failed to update catalog entry: %w", err)
	}
	return checkAffected(result, "catalog entry", id)
}

// ValueExists reports whether a value already exists for a type.
func (r *CatalogRepository) ValueExists(ctx context.Context, catalogType, value string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM catalog_entries WHERE type = ? AND value = ?", catalogType, value,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check catalog value: %w", err)
	}
	return count > 0, nil
}

// NextDisplayOrder returns one past the highest display order of a type.
func (r *CatalogRepository) NextDisplayOrder(ctx context.Context, catalogType string) (int, error) {
	var maxOrder int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(display_order), 0) FROM catalog_entries WHERE type = ?", catalogType,
	).Scan(&maxOrder)
	if err != nil {
		return 0, fmt.Errorf("failed to get display order: %w", err)
	}
	return maxOrder + 1, nil
}

// GetNextID returns the next available catalog entry ID.
func (r *CatalogRepository) GetNextID(ctx context.Context) (string, error) {
	return catalogSequence(ctx, r.db)
}

var _ secondary.CatalogRepository = (*CatalogRepository)(nil)
