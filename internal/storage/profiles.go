package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/repcoach/internal/models"
	"github.com/jackc/pgx/v5"
)

// UpsertProfile creates or replaces a user's profile.
func (db *DB) UpsertProfile(ctx context.Context, p models.ProfileRow) error {
	equipment := p.Equipment
	if equipment == nil {
		equipment = []string{}
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO profiles (user_id, goal, level, nutrition, days_available,
			weight_kg, height_cm, target_weight_kg, equipment, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			goal = EXCLUDED.goal, level = EXCLUDED.level, nutrition = EXCLUDED.nutrition,
			days_available = EXCLUDED.days_available, weight_kg = EXCLUDED.weight_kg,
			height_cm = EXCLUDED.height_cm, target_weight_kg = EXCLUDED.target_weight_kg,
			equipment = EXCLUDED.equipment, updated_at = NOW()`,
		p.UserID, p.Goal, p.Level, p.Nutrition, p.DaysAvailable,
		p.WeightKg, p.HeightCm, p.TargetWeightKg, equipment)
	if err != nil {
		return fmt.Errorf("upserting profile for user %d: %w", p.UserID, err)
	}
	return nil
}

// GetProfile returns a user's profile or models.ErrNotFound.
func (db *DB) GetProfile(ctx context.Context, userID int) (*models.ProfileRow, error) {
	var p models.ProfileRow
	err := db.Pool.QueryRow(ctx, `
		SELECT user_id, goal, level, nutrition, days_available,
			weight_kg, height_cm, target_weight_kg, equipment, updated_at
		FROM profiles WHERE user_id = $1`, userID).Scan(
		&p.UserID, &p.Goal, &p.Level, &p.Nutrition, &p.DaysAvailable,
		&p.WeightKg, &p.HeightCm, &p.TargetWeightKg, &p.Equipment, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("profile for user %d: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return &p, nil
}

// GetEquipment returns the equipment tags on a user's profile.
// A user without a profile has no equipment.
func (db *DB) GetEquipment(ctx context.Context, userID int) ([]string, error) {
	var equipment []string
	err := db.Pool.QueryRow(ctx,
		`SELECT equipment FROM profiles WHERE user_id = $1`, userID).Scan(&equipment)
	if errors.Is(err, pgx.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying equipment: %w", err)
	}
	return equipment, nil
}
