package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/auditplus/internal/ports/secondary"
)

// WeightRepository implements secondary.WeightRepository with SQLite.
type WeightRepository struct {
	db *sql.DB
}

// NewWeightRepository creates a new SQLite weight repository.
func NewWeightRepository(db *sql.DB) *WeightRepository {
	return &WeightRepository{db: db}
}

// List returns all weights.
func (r *WeightRepository) List(ctx context.Context) ([]*secondary.WeightRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT factor, label, weight, description, updated_at FROM evaluation_weights ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list weights: %w", err)
	}
	defer rows.Close()

	var weights []*secondary.WeightRecord
	for rows.Next() {
		var (
			desc      sql.NullString
			updatedAt time.Time
		)
		record := &secondary.WeightRecord{}
		if err := rows.Scan(&record.Factor, &record.Label, &record.Weight, &desc, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan weight: %w", err)
		}
		record.Description = desc.String
		record.UpdatedAt = formatTime(updatedAt)
		weights = append(weights, record)
	}
	return weights, rows.Err()
}

// UpdateAll replaces the weight of every given factor in one transaction.
// An unknown factor aborts the whole update.
func (r *WeightRepository) UpdateAll(ctx context.Context, weights map[string]float64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for factor, weight := range weights {
		result, err := tx.ExecContext(ctx,
			"UPDATE evaluation_weights SET weight = ?, updated_at = CURRENT_TIMESTAMP WHERE factor = ?",
			weight, factor,
		)
		if err != nil {
			return fmt.Errorf("failed to update weight %s: %w", factor, err)
		}
		if err := checkAffected(result, "weight", factor); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit weights: %w", err)
	}
	return nil
}

var _ secondary.WeightRepository = (*WeightRepository)(nil)
