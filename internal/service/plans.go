package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PlanRequest overrides stored profile fields for one generation. Zero
// values fall back to the profile; a nil Equipment uses the profile's.
type PlanRequest struct {
	Goal          string   `json:"goal,omitempty"`
	Level         string   `json:"level,omitempty"`
	Nutrition     string   `json:"nutrition,omitempty"`
	DaysAvailable int      `json:"days_available,omitempty"`
	Equipment     []string `json:"equipment,omitempty"`
}

// Plan is a stored routine with its metadata.
type Plan struct {
	ID        uuid.UUID               `json:"id"`
	UserID    int                     `json:"user_id"`
	CreatedAt time.Time               `json:"created_at"`
	Active    bool                    `json:"active"`
	Equipment []string                `json:"equipment"`
	Routine   *coach.GeneratedRoutine `json:"routine"`
}

// GenerateForUser builds a routine from the stored profile and request
// overrides, stores it and makes it the active plan.
func (s *Service) GenerateForUser(ctx context.Context, userID int, req PlanRequest) (*Plan, error) {
	var (
		profile   *models.ProfileRow
		equipment []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.store.GetProfile(gctx, userID)
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		profile = p
		return err
	})
	g.Go(func() error {
		eq, err := s.store.GetEquipment(gctx, userID)
		equipment = eq
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading user data: %w", err)
	}

	rr, err := mergeRequest(profile, equipment, req)
	if err != nil {
		return nil, err
	}
	if rr.DaysAvailable > coach.MaxTrainingDays {
		s.log.Warn("training days capped", "user_id", userID, "requested", rr.DaysAvailable, "max", coach.MaxTrainingDays)
	}

	routine, err := s.generator.Generate(ctx, rr)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(routine)
	if err != nil {
		return nil, fmt.Errorf("encoding routine: %w", err)
	}
	plan := &Plan{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: s.now(),
		Active:    true,
		Equipment: rr.Equipment,
		Routine:   routine,
	}
	err = s.store.SavePlan(ctx, models.PlanRow{
		ID:        plan.ID,
		UserID:    userID,
		Active:    true,
		Goal:      string(rr.Goal),
		Level:     string(rr.Level),
		Split:     string(routine.Split),
		Equipment: rr.Equipment,
		Routine:   encoded,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("plan generated",
		"user_id", userID,
		"plan_id", plan.ID,
		"split", routine.Split,
		"days", len(routine.Days),
	)
	return plan, nil
}

// mergeRequest resolves a routine request from overrides and the profile.
func mergeRequest(profile *models.ProfileRow, equipment []string, req PlanRequest) (coach.RoutineRequest, error) {
	if profile == nil {
		profile = &models.ProfileRow{}
	}
	pick := func(override, stored string) string {
		if override != "" {
			return override
		}
		return stored
	}

	goal, err := coach.ParseGoal(pick(req.Goal, profile.Goal))
	if err != nil {
		return coach.RoutineRequest{}, err
	}
	level, err := coach.ParseLevel(pick(req.Level, profile.Level))
	if err != nil {
		return coach.RoutineRequest{}, err
	}
	nutrition, err := coach.ParseNutrition(pick(req.Nutrition, profile.Nutrition))
	if err != nil {
		return coach.RoutineRequest{}, err
	}
	days := req.DaysAvailable
	if days == 0 {
		days = profile.DaysAvailable
	}
	if req.Equipment != nil {
		equipment = req.Equipment
	}
	if equipment == nil {
		equipment = []string{}
	}

	return coach.RoutineRequest{
		Goal:          goal,
		Level:         level,
		DaysAvailable: days,
		Equipment:     equipment,
		Nutrition:     nutrition,
	}, nil
}

// ActivePlan returns the user's current plan.
func (s *Service) ActivePlan(ctx context.Context, userID int) (*Plan, error) {
	row, err := s.store.GetActivePlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	var routine coach.GeneratedRoutine
	if err := json.Unmarshal(row.Routine, &routine); err != nil {
		return nil, fmt.Errorf("decoding plan %s: %w", row.ID, err)
	}
	return &Plan{
		ID:        row.ID,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt,
		Active:    row.Active,
		Equipment: row.Equipment,
		Routine:   &routine,
	}, nil
}
