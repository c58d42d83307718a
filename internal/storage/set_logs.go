package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/jackc/pgx/v5"
)

const setLogColumns = `user_id, session_name, session_date, exercise_number, exercise_name,
	equipment, target_reps, is_warmup, set_number, weight_kg, is_bodyweight_plus, reps, rir`

// setLogParams is the number of bind parameters per set_logs row.
const setLogParams = 13

// maxSetLogRowsPerInsert keeps a single INSERT well under Postgres's limit
// of 65535 bind parameters.
const maxSetLogRowsPerInsert = 1000

// InsertSetLogs batch-inserts logged sets in one transaction. Returns count
// inserted.
func (db *DB) InsertSetLogs(ctx context.Context, rows []models.SetLogRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	var inserted int64
	err := db.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		inserted, err = insertSetLogs(ctx, tx, rows)
		return err
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ReplaceSessions deletes every set of the sessions that started at dates
// and inserts rows in their place. Both happen in one transaction, so a
// failed insert leaves the previously stored sessions untouched.
func (db *DB) ReplaceSessions(ctx context.Context, userID int, dates []time.Time, rows []models.SetLogRow) (int64, error) {
	var inserted int64
	err := db.withTx(ctx, func(tx pgx.Tx) error {
		for _, d := range dates {
			if _, err := tx.Exec(ctx,
				`DELETE FROM set_logs WHERE user_id = $1 AND session_date = $2`, userID, d); err != nil {
				return fmt.Errorf("deleting session sets: %w", err)
			}
		}
		var err error
		inserted, err = insertSetLogs(ctx, tx, rows)
		return err
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// insertSetLogs writes rows in multi-row INSERTs of at most
// maxSetLogRowsPerInsert rows each.
func insertSetLogs(ctx context.Context, tx pgx.Tx, rows []models.SetLogRow) (int64, error) {
	var inserted int64
	for _, chunk := range chunkSetLogs(rows, maxSetLogRowsPerInsert) {
		query, args := buildSetLogInsert(chunk)
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("inserting set logs: %w", err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// chunkSetLogs splits rows into consecutive slices of at most size rows.
func chunkSetLogs(rows []models.SetLogRow, size int) [][]models.SetLogRow {
	var chunks [][]models.SetLogRow
	for len(rows) > size {
		chunks = append(chunks, rows[:size:size])
		rows = rows[size:]
	}
	if len(rows) > 0 {
		chunks = append(chunks, rows)
	}
	return chunks
}

func buildSetLogInsert(rows []models.SetLogRow) (string, []any) {
	args := make([]any, 0, len(rows)*setLogParams)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * setLogParams
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			base+8, base+9, base+10, base+11, base+12, base+13,
		))
		args = append(args, r.UserID, r.SessionName, r.SessionDate, r.ExerciseNumber,
			r.ExerciseName, r.Equipment, r.TargetReps, r.IsWarmup, r.SetNumber,
			r.WeightKg, r.IsBodyweightPlus, r.Reps, r.RIR)
	}

	query := `INSERT INTO set_logs (` + setLogColumns + `) VALUES ` +
		strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"
	return query, args
}

// LatestSessionSets returns the working sets of the most recent session that
// contains the exercise (case-insensitive name match), in set order.
func (db *DB) LatestSessionSets(ctx context.Context, userID int, exercise string) ([]models.SetLogRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+setLogColumns+`
		 FROM set_logs
		 WHERE user_id = $1 AND lower(exercise_name) = lower($2) AND NOT is_warmup
		   AND session_date = (
			SELECT MAX(session_date) FROM set_logs
			WHERE user_id = $1 AND lower(exercise_name) = lower($2) AND NOT is_warmup)
		 ORDER BY set_number ASC`,
		userID, exercise)
	if err != nil {
		return nil, fmt.Errorf("querying latest session sets: %w", err)
	}
	return collectSetLogs(rows)
}

// QuerySetLogs retrieves logged sets in a date range, optionally filtered by
// a partial exercise name.
func (db *DB) QuerySetLogs(ctx context.Context, start, end time.Time, userID int, exerciseFilter string) ([]models.SetLogRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+setLogColumns+`
		 FROM set_logs
		 WHERE session_date >= $1 AND session_date < $2 AND user_id = $3
		   AND ($4 = '' OR exercise_name ILIKE '%' || $4 || '%')
		 ORDER BY session_date DESC, exercise_number ASC, is_warmup DESC, set_number ASC`,
		start, end, userID, exerciseFilter)
	if err != nil {
		return nil, fmt.Errorf("querying set logs: %w", err)
	}
	return collectSetLogs(rows)
}

func collectSetLogs(rows pgx.Rows) ([]models.SetLogRow, error) {
	defer rows.Close()

	var result []models.SetLogRow
	for rows.Next() {
		var r models.SetLogRow
		if err := rows.Scan(&r.UserID, &r.SessionName, &r.SessionDate, &r.ExerciseNumber,
			&r.ExerciseName, &r.Equipment, &r.TargetReps, &r.IsWarmup, &r.SetNumber,
			&r.WeightKg, &r.IsBodyweightPlus, &r.Reps, &r.RIR); err != nil {
			return nil, fmt.Errorf("scanning set log: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
