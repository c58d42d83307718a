package service

import (
	"context"
	"fmt"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/models"
)

// SaveProfile validates and stores a user's profile. Enum fields are
// normalized before they are written.
func (s *Service) SaveProfile(ctx context.Context, p models.ProfileRow) (*models.ProfileRow, error) {
	goal, err := coach.ParseGoal(p.Goal)
	if err != nil {
		return nil, err
	}
	level, err := coach.ParseLevel(p.Level)
	if err != nil {
		return nil, err
	}
	nutrition, err := coach.ParseNutrition(p.Nutrition)
	if err != nil {
		return nil, err
	}
	if p.DaysAvailable < coach.MinTrainingDays {
		return nil, coach.ErrTooFewDays
	}
	if p.WeightKg <= 0 || p.HeightCm <= 0 || p.TargetWeightKg <= 0 {
		return nil, fmt.Errorf("%w: weight, height and target weight must be positive", coach.ErrInvalidInput)
	}

	p.Goal, p.Level, p.Nutrition = string(goal), string(level), string(nutrition)
	if err := s.store.UpsertProfile(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("profile saved", "user_id", p.UserID, "goal", p.Goal, "level", p.Level, "days", p.DaysAvailable)
	return &p, nil
}

// GetProfile returns a user's stored profile.
func (s *Service) GetProfile(ctx context.Context, userID int) (*models.ProfileRow, error) {
	return s.store.GetProfile(ctx, userID)
}

// AnalyzeUser runs the profile analyzer on the stored profile.
func (s *Service) AnalyzeUser(ctx context.Context, userID int) (*coach.ProfileAnalysis, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	a := coach.AnalyzeProfile(coach.ProfileInput{
		WeightKg:       p.WeightKg,
		HeightCm:       p.HeightCm,
		TargetWeightKg: p.TargetWeightKg,
		Equipment:      p.Equipment,
	}, s.thresholds)
	return &a, nil
}
