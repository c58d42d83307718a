package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/repcoach/internal/models"
)

// InsertWeightSample records a body-weight measurement. A second sample on
// the same day replaces the first.
func (db *DB) InsertWeightSample(ctx context.Context, s models.WeightSampleRow) error {
	source := s.Source
	if source == "" {
		source = "manual"
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO weight_history (user_id, date, weight_kg, source)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, date) DO UPDATE SET weight_kg = EXCLUDED.weight_kg, source = EXCLUDED.source`,
		s.UserID, s.Date, s.WeightKg, source)
	if err != nil {
		return fmt.Errorf("inserting weight sample: %w", err)
	}
	return nil
}

// WeightHistory returns samples since the given time in chronological order.
func (db *DB) WeightHistory(ctx context.Context, userID int, since time.Time) ([]models.WeightSampleRow, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT user_id, date, weight_kg, source
		FROM weight_history
		WHERE user_id = $1 AND date >= $2
		ORDER BY date ASC`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("querying weight history: %w", err)
	}
	defer rows.Close()

	var result []models.WeightSampleRow
	for rows.Next() {
		var s models.WeightSampleRow
		if err := rows.Scan(&s.UserID, &s.Date, &s.WeightKg, &s.Source); err != nil {
			return nil, fmt.Errorf("scanning weight sample: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
