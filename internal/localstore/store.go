// Package localstore is an offline SQLite journal used by the CLI when no
// server is reachable. It mirrors the subset of storage.DB that imports,
// weight logging and exercise reviews need.
package localstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/repcoach/internal/models"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS set_logs (
	user_id            INTEGER NOT NULL,
	session_name       TEXT NOT NULL,
	session_date       TIMESTAMP NOT NULL,
	exercise_number    INTEGER NOT NULL,
	exercise_name      TEXT NOT NULL,
	equipment          TEXT NOT NULL DEFAULT '',
	target_reps        INTEGER NOT NULL DEFAULT 0,
	is_warmup          BOOLEAN NOT NULL DEFAULT 0,
	set_number         INTEGER NOT NULL,
	weight_kg          REAL NOT NULL DEFAULT 0,
	is_bodyweight_plus BOOLEAN NOT NULL DEFAULT 0,
	reps               INTEGER NOT NULL DEFAULT 0,
	rir                REAL NOT NULL DEFAULT -1,
	PRIMARY KEY (user_id, session_date, exercise_number, is_warmup, set_number)
);
CREATE TABLE IF NOT EXISTS weight_history (
	user_id   INTEGER NOT NULL,
	date      TIMESTAMP NOT NULL,
	weight_kg REAL NOT NULL,
	source    TEXT NOT NULL DEFAULT 'manual',
	PRIMARY KEY (user_id, date)
);
CREATE TABLE IF NOT EXISTS imported_files (
	path        TEXT PRIMARY KEY,
	hash        TEXT NOT NULL,
	imported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

const setLogColumns = `user_id, session_name, session_date, exercise_number, exercise_name,
	equipment, target_reps, is_warmup, set_number, weight_kg, is_bodyweight_plus, reps, rir`

// Store is a SQLite-backed journal.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the journal at path. Use ":memory:" in tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating journal dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	// One connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the journal.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertSetLogs inserts sets in a single transaction, ignoring duplicates.
func (s *Store) InsertSetLogs(ctx context.Context, rows []models.SetLogRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	return s.ReplaceSessions(ctx, 0, nil, rows)
}

// ReplaceSessions deletes the sessions that started at dates and inserts
// rows in one transaction. Nothing is deleted unless every insert succeeds.
func (s *Store) ReplaceSessions(ctx context.Context, userID int, dates []time.Time, rows []models.SetLogRow) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	for _, d := range dates {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM set_logs WHERE user_id = ? AND session_date = ?`, userID, d.UTC()); err != nil {
			return 0, fmt.Errorf("deleting session sets: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO set_logs (`+setLogColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, r := range rows {
		res, err := stmt.ExecContext(ctx, r.UserID, r.SessionName, r.SessionDate.UTC(), r.ExerciseNumber,
			r.ExerciseName, r.Equipment, r.TargetReps, r.IsWarmup, r.SetNumber,
			r.WeightKg, r.IsBodyweightPlus, r.Reps, r.RIR)
		if err != nil {
			return 0, fmt.Errorf("inserting set log: %w", err)
		}
		n, _ := res.RowsAffected()
		inserted += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing set logs: %w", err)
	}
	return inserted, nil
}

// LatestSessionSets returns the working sets of the most recent session
// containing the exercise, in set order.
func (s *Store) LatestSessionSets(ctx context.Context, userID int, exercise string) ([]models.SetLogRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+setLogColumns+`
		 FROM set_logs
		 WHERE user_id = ?1 AND lower(exercise_name) = lower(?2) AND NOT is_warmup
		   AND session_date = (
			SELECT MAX(session_date) FROM set_logs
			WHERE user_id = ?1 AND lower(exercise_name) = lower(?2) AND NOT is_warmup)
		 ORDER BY set_number ASC`,
		userID, exercise)
	if err != nil {
		return nil, fmt.Errorf("querying latest session sets: %w", err)
	}
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

// InsertWeightSample records a measurement, replacing any sample on the
// same day.
func (s *Store) InsertWeightSample(ctx context.Context, w models.WeightSampleRow) error {
	source := w.Source
	if source == "" {
		source = "manual"
	}
	day := w.Date.UTC().Truncate(24 * time.Hour)
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO weight_history (user_id, date, weight_kg, source) VALUES (?, ?, ?, ?)`,
		w.UserID, day, w.WeightKg, source)
	if err != nil {
		return fmt.Errorf("inserting weight sample: %w", err)
	}
	return nil
}

// WeightHistory returns samples since the given time in chronological order.
func (s *Store) WeightHistory(ctx context.Context, userID int, since time.Time) ([]models.WeightSampleRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, date, weight_kg, source FROM weight_history
		 WHERE user_id = ? AND date >= ? ORDER BY date ASC`,
		userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("querying weight history: %w", err)
	}
	defer rows.Close()

	var result []models.WeightSampleRow
	for rows.Next() {
		var w models.WeightSampleRow
		if err := rows.Scan(&w.UserID, &w.Date, &w.WeightKg, &w.Source); err != nil {
			return nil, fmt.Errorf("scanning weight sample: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// IsImported reports whether the file at path was already imported with the
// same content hash.
func (s *Store) IsImported(ctx context.Context, path, hash string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM imported_files WHERE path = ? AND hash = ?`, path, hash).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking imported file: %w", err)
	}
	return count > 0, nil
}

// MarkImported records a successfully imported file.
func (s *Store) MarkImported(ctx context.Context, path, hash string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO imported_files (path, hash) VALUES (?, ?)`, path, hash)
	if err != nil {
		return fmt.Errorf("marking imported file: %w", err)
	}
	return nil
}
