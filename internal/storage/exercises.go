package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/models"
	"github.com/jackc/pgx/v5"
)

// Compile-time check: *DB can back the routine generator.
var _ coach.Catalog = (*DB)(nil)

const exerciseColumns = `id, slug, title, body_part, pattern, equipment, is_compound, met, media_url`

// Find queries the exercises table. Filters compare case-insensitively.
func (db *DB) Find(ctx context.Context, q coach.ExerciseQuery) ([]coach.Exercise, error) {
	var (
		where []string
		args  []any
	)
	if len(q.BodyParts) > 0 {
		args = append(args, lowerAll(q.BodyParts))
		where = append(where, fmt.Sprintf("lower(body_part) = ANY($%d)", len(args)))
	}
	if len(q.Equipment) > 0 {
		args = append(args, lowerAll(q.Equipment))
		where = append(where, fmt.Sprintf("lower(equipment) = ANY($%d)", len(args)))
	}
	if q.Pattern != "" {
		args = append(args, strings.ToLower(q.Pattern))
		where = append(where, fmt.Sprintf("lower(pattern) = $%d", len(args)))
	}

	query := `SELECT ` + exerciseColumns + ` FROM exercises`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY is_compound DESC, title ASC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []coach.Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// GetExerciseByName looks an exercise up by slug or case-insensitive title.
func (db *DB) GetExerciseByName(ctx context.Context, name string) (*coach.Exercise, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercises
		 WHERE slug = $1 OR lower(title) = lower($1)
		 LIMIT 1`, strings.TrimSpace(name))
	e, err := scanExercise(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("exercise %q: %w", name, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpsertExercises batch-inserts catalog entries keyed by slug. Returns count written.
func (db *DB) UpsertExercises(ctx context.Context, exs []coach.Exercise) (int64, error) {
	if len(exs) == 0 {
		return 0, nil
	}

	query := `INSERT INTO exercises (slug, title, body_part, pattern, equipment, is_compound, met, media_url) VALUES `
	args := make([]any, 0, len(exs)*8)
	valueStrings := make([]string, 0, len(exs))

	for i, e := range exs {
		base := i * 8
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
		))
		args = append(args, e.Slug, e.Title, e.BodyPart, e.Pattern, e.Equipment, e.Compound, e.MET, e.MediaURL)
	}

	query += strings.Join(valueStrings, ",") + ` ON CONFLICT (slug) DO UPDATE SET
		title = EXCLUDED.title, body_part = EXCLUDED.body_part, pattern = EXCLUDED.pattern,
		equipment = EXCLUDED.equipment, is_compound = EXCLUDED.is_compound,
		met = EXCLUDED.met, media_url = EXCLUDED.media_url`

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upserting exercises: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanExercise(row pgx.Row) (coach.Exercise, error) {
	var e coach.Exercise
	err := row.Scan(&e.ID, &e.Slug, &e.Title, &e.BodyPart, &e.Pattern, &e.Equipment, &e.Compound, &e.MET, &e.MediaURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scanning exercise: %w", err)
	}
	return e, nil
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
