package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/repcoach/internal/models"
	"github.com/jackc/pgx/v5"
)

// SavePlan stores a plan and makes it the user's only active plan.
func (db *DB) SavePlan(ctx context.Context, p models.PlanRow) error {
	equipment := p.Equipment
	if equipment == nil {
		equipment = []string{}
	}
	return db.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE plans SET active = FALSE WHERE user_id = $1 AND active`, p.UserID); err != nil {
			return fmt.Errorf("deactivating plans: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO plans (id, user_id, active, goal, level, split, equipment, routine)
			VALUES ($1, $2, TRUE, $3, $4, $5, $6, $7)`,
			p.ID, p.UserID, p.Goal, p.Level, p.Split, equipment, p.Routine); err != nil {
			return fmt.Errorf("inserting plan: %w", err)
		}
		return nil
	})
}

// GetActivePlan returns the user's active plan or models.ErrNotFound.
func (db *DB) GetActivePlan(ctx context.Context, userID int) (*models.PlanRow, error) {
	var p models.PlanRow
	err := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, created_at, active, goal, level, split, equipment, routine
		FROM plans WHERE user_id = $1 AND active`, userID).Scan(
		&p.ID, &p.UserID, &p.CreatedAt, &p.Active, &p.Goal, &p.Level, &p.Split, &p.Equipment, &p.Routine)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("active plan for user %d: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying active plan: %w", err)
	}
	return &p, nil
}

// InsertAdaptationReview stores a review and returns its ID.
func (db *DB) InsertAdaptationReview(ctx context.Context, r models.AdaptationReviewRow) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO adaptation_reviews (user_id, priority, summary, triggers)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		r.UserID, r.Priority, r.Summary, r.Triggers).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting adaptation review: %w", err)
	}
	return id, nil
}

// ListAdaptationReviews returns the most recent reviews for a user.
func (db *DB) ListAdaptationReviews(ctx context.Context, userID, limit int) ([]models.AdaptationReviewRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, created_at, priority, summary, triggers
		FROM adaptation_reviews
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying adaptation reviews: %w", err)
	}
	defer rows.Close()

	var result []models.AdaptationReviewRow
	for rows.Next() {
		var r models.AdaptationReviewRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.CreatedAt, &r.Priority, &r.Summary, &r.Triggers); err != nil {
			return nil, fmt.Errorf("scanning adaptation review: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
