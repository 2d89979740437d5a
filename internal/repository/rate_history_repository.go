package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-manager-api/internal/models"
)

// RateHistoryRepository persists per-period price tables.
type RateHistoryRepository struct {
	db sqlx.ExtContext
}

// NewRateHistoryRepository constructs the repository.
func NewRateHistoryRepository(db sqlx.ExtContext) *RateHistoryRepository {
	return &RateHistoryRepository{db: db}
}

// List returns the overrides in calendar order.
func (r *RateHistoryRepository) List(ctx context.Context) ([]models.TieredRateHistory, error) {
	const query = `SELECT month, year, rates FROM tiered_rate_history ORDER BY year ASC, month ASC`
	var rows []rateHistoryRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, fmt.Errorf("list rate history: %w", err)
	}
	out := make([]models.TieredRateHistory, 0, len(rows))
	for _, row := range rows {
		entry, err := row.model()
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// Upsert stores the table of one period.
func (r *RateHistoryRepository) Upsert(ctx context.Context, entry models.TieredRateHistory) error {
	const query = `INSERT INTO tiered_rate_history (month, year, rates, updated_at)
VALUES (:month, :year, :rates, NOW())
ON CONFLICT (year, month) DO UPDATE SET rates = EXCLUDED.rates, updated_at = EXCLUDED.updated_at`
	row, err := newRateHistoryRow(entry)
	if err != nil {
		return err
	}
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, row); err != nil {
		return fmt.Errorf("upsert rate history %d-%d: %w", entry.Month, entry.Year, err)
	}
	return nil
}

// Delete removes the table of one period.
func (r *RateHistoryRepository) Delete(ctx context.Context, month, year int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tiered_rate_history WHERE month = $1 AND year = $2`, month, year); err != nil {
		return fmt.Errorf("delete rate history %d-%d: %w", month, year, err)
	}
	return nil
}
