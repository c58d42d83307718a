package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/repcoach/internal/models"
)

// GetExerciseHistory aggregates working sets per session for exercises
// matching the partial name. RIR value -1 is treated as untracked and left
// out of the averages.
func (db *DB) GetExerciseHistory(ctx context.Context, start, end time.Time, userID int, exercise string) (*models.ExerciseHistory, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT session_date,
		        COALESCE(MAX(weight_kg), 0),
		        COALESCE(SUM(weight_kg * reps), 0),
		        COUNT(*)::int,
		        COUNT(*) FILTER (WHERE reps < target_reps)::int,
		        COUNT(*) FILTER (WHERE rir <> -1)::int,
		        AVG(NULLIF(rir, -1))
		 FROM set_logs
		 WHERE session_date >= $1 AND session_date < $2
		   AND user_id = $3
		   AND exercise_name ILIKE '%' || $4 || '%'
		   AND NOT is_warmup
		 GROUP BY session_date
		 ORDER BY session_date ASC`,
		start, end, userID, exercise)
	if err != nil {
		return nil, fmt.Errorf("querying exercise history: %w", err)
	}
	defer rows.Close()

	result := &models.ExerciseHistory{Exercise: exercise, Sessions: []models.SessionSummary{}}
	for rows.Next() {
		var s models.SessionSummary
		var d time.Time
		var tracked int
		if err := rows.Scan(&d, &s.MaxWeight, &s.TonnageKg, &s.Sets, &s.MissedSets, &tracked, &s.AvgRIR); err != nil {
			return nil, fmt.Errorf("scanning exercise history: %w", err)
		}
		s.Date = d.Format("2006-01-02")
		result.TotalSets += s.Sets
		result.TrackedSets += tracked
		result.Sessions = append(result.Sessions, s)
	}
	return result, rows.Err()
}
